package ps2

import (
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache sizing tracks how volatile each collection is: character records
// change constantly (online status, battle rank), static game data only
// changes on game patches.
const (
	characterCacheSize = 256
	characterCacheTTL  = 30 * time.Second

	staticCacheSize = 100
	staticCacheTTL  = time.Hour
)

// purgeable lets ClearCaches reset every package cache without knowing
// element types.
type purgeable interface {
	Purge()
}

var (
	cachesMu sync.Mutex
	caches   []purgeable
)

// resourceCache is an expiring LRU over one resource type, keyed by ID
// with a secondary key space for locale-qualified name lookups.
type resourceCache[T any] struct {
	lru *expirable.LRU[string, *T]
}

func newResourceCache[T any](size int, ttl time.Duration) *resourceCache[T] {
	c := &resourceCache[T]{
		lru: expirable.NewLRU[string, *T](size, nil, ttl),
	}
	cachesMu.Lock()
	caches = append(caches, c)
	cachesMu.Unlock()
	return c
}

func (c *resourceCache[T]) getID(id int64) (*T, bool) {
	return c.lru.Get(idKey(id))
}

func (c *resourceCache[T]) setID(id int64, v *T) {
	c.lru.Add(idKey(id), v)
}

func (c *resourceCache[T]) getName(locale, name string) (*T, bool) {
	return c.lru.Get(nameKey(locale, name))
}

func (c *resourceCache[T]) setName(locale, name string, v *T) {
	c.lru.Add(nameKey(locale, name), v)
}

func (c *resourceCache[T]) Purge() {
	c.lru.Purge()
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// nameKey qualifies the name with its locale so "Hydra" in one language
// cannot shadow a different record in another.
func nameKey(locale, name string) string {
	return locale + ":" + lowerName(name)
}

// ClearCaches drops every cached resource. Intended for tests and for
// long-lived processes that want to force fresh data.
func ClearCaches() {
	cachesMu.Lock()
	defer cachesMu.Unlock()
	for _, c := range caches {
		c.Purge()
	}
}
