package ps2

import (
	"context"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/census"
)

const (
	collectionWorld = "world"
	collectionZone  = "zone"
	fieldWorldID    = "world_id"
	fieldZoneID     = "zone_id"
)

var (
	worldCache = newResourceCache[World](staticCacheSize, staticCacheTTL)
	zoneCache  = newResourceCache[Zone](staticCacheSize, staticCacheTTL)
)

// World is a game server.
type World struct {
	ID    auraxis.CensusInt  `json:"world_id"`
	Name  auraxis.LocaleData `json:"name"`
	State string             `json:"state"`
}

// WorldByID fetches a world by ID.
func WorldByID(ctx context.Context, c *auraxis.Client, id int64) (*World, error) {
	if w, ok := worldCache.getID(id); ok {
		return w, nil
	}
	w, err := getByID[World](ctx, c, collectionWorld, fieldWorldID, id)
	if err != nil {
		return nil, err
	}
	worldCache.setID(id, w)
	return w, nil
}

// WorldByName fetches a world by name, ignoring case.
func WorldByName(ctx context.Context, c *auraxis.Client, name string) (*World, error) {
	if w, ok := worldCache.getName(DefaultLocale, name); ok {
		return w, nil
	}
	w, err := getByName[World](ctx, c, collectionWorld, DefaultLocale, name)
	if err != nil {
		return nil, err
	}
	worldCache.setID(w.ID.Int64(), w)
	worldCache.setName(DefaultLocale, name, w)
	return w, nil
}

// FindWorlds lists worlds matching the terms; with none it lists all.
func FindWorlds(ctx context.Context, c *auraxis.Client, terms ...census.Term) ([]*World, error) {
	q := c.NewQuery(collectionWorld, terms...).Limit(100)
	return find[World](ctx, c, q)
}

// Zone is a continent or other playable area.
//
// Dynamic zones (e.g. the tutorial island) share zone IDs across
// instances; the low word identifies the zone template.
type Zone struct {
	ID          auraxis.CensusInt  `json:"zone_id"`
	Code        string             `json:"code"`
	HexSize     auraxis.CensusInt  `json:"hex_size"`
	Name        auraxis.LocaleData `json:"name"`
	Description auraxis.LocaleData `json:"description"`
}

// ZoneByID fetches a zone by ID.
func ZoneByID(ctx context.Context, c *auraxis.Client, id int64) (*Zone, error) {
	if z, ok := zoneCache.getID(id); ok {
		return z, nil
	}
	z, err := getByID[Zone](ctx, c, collectionZone, fieldZoneID, id)
	if err != nil {
		return nil, err
	}
	zoneCache.setID(id, z)
	return z, nil
}

// ZoneByName fetches a zone by name, ignoring case.
func ZoneByName(ctx context.Context, c *auraxis.Client, name string) (*Zone, error) {
	if z, ok := zoneCache.getName(DefaultLocale, name); ok {
		return z, nil
	}
	z, err := getByName[Zone](ctx, c, collectionZone, DefaultLocale, name)
	if err != nil {
		return nil, err
	}
	zoneCache.setID(z.ID.Int64(), z)
	zoneCache.setName(DefaultLocale, name, z)
	return z, nil
}
