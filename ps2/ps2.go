// Package ps2 is a typed object model over the census REST collections.
//
// Each resource is a plain struct decoded from its collection, fetched
// through package functions that take the shared REST client. Hot lookups
// (characters, static game data) are served from expiring in-memory
// caches; ClearCaches resets them.
package ps2

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/census"
)

// DefaultLocale is the locale used for name lookups and cache keys when
// the caller does not pick one.
const DefaultLocale = "en"

const imageBaseURL = "https://census.daybreakgames.com/files/ps2/images/static"

// ImageURL returns the static asset URL for an image ID.
func ImageURL(imageID int64) string {
	return fmt.Sprintf("%s/%d.png", imageBaseURL, imageID)
}

// decode unmarshals one collection record into T. Decode failures surface
// as PayloadError so callers can tell vendor schema drift from transport
// errors.
func decode[T any](collection string, raw json.RawMessage) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, &auraxis.PayloadError{
			Key:     collection,
			Message: err.Error(),
		}
	}
	return out, nil
}

// getByID fetches the record whose idField equals id.
func getByID[T any](ctx context.Context, c *auraxis.Client, collection, idField string, id int64) (*T, error) {
	q := c.NewQuery(collection).Where(idField, id)
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collection)
	if err != nil {
		return nil, err
	}
	return decode[T](collection, raw)
}

// getByName fetches the record whose localized name matches, ignoring
// case.
func getByName[T any](ctx context.Context, c *auraxis.Client, collection, locale, name string) (*T, error) {
	q := c.NewQuery(collection).
		Where("name."+locale, name).
		Case(false).
		Limit(1)
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collection)
	if err != nil {
		return nil, err
	}
	return decode[T](collection, raw)
}

// find runs the query and decodes every returned record.
func find[T any](ctx context.Context, c *auraxis.Client, q *census.Query) ([]*T, error) {
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractPayload(p, q.Collection())
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(raw))
	for _, r := range raw {
		v, err := decode[T](q.Collection(), r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// count runs a count query for the collection with the given terms.
func count(ctx context.Context, c *auraxis.Client, collection string, terms ...census.Term) (int64, error) {
	return c.Count(ctx, c.NewQuery(collection, terms...))
}

func lowerName(name string) string { return strings.ToLower(name) }
