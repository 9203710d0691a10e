package ps2

import (
	"context"

	"github.com/auraxtools/auraxis"
)

const (
	collectionFaction = "faction"
	fieldFactionID    = "faction_id"
)

// Empire IDs as used across every collection and event payload.
const (
	FactionNone = iota
	FactionVS
	FactionNC
	FactionTR
	FactionNSO
)

var factionCache = newResourceCache[Faction](staticCacheSize, staticCacheTTL)

// ImageData is the image reference block shared by image-bearing
// collections.
type ImageData struct {
	ImageSetID auraxis.CensusInt `json:"image_set_id"`
	ImageID    auraxis.CensusInt `json:"image_id"`
	ImagePath  string            `json:"image_path"`
}

// URL returns the static asset URL for the record's default image.
func (d ImageData) URL() string {
	return ImageURL(d.ImageID.Int64())
}

// Faction is one of the game's empires.
type Faction struct {
	ID             auraxis.CensusInt  `json:"faction_id"`
	Name           auraxis.LocaleData `json:"name"`
	CodeTag        string             `json:"code_tag"`
	UserSelectable auraxis.CensusBool `json:"user_selectable"`
	ImageData
}

// Tag returns the canonical faction tag, e.g. "TR".
func (f *Faction) Tag() string { return f.CodeTag }

// FactionByID fetches a faction by ID.
func FactionByID(ctx context.Context, c *auraxis.Client, id int64) (*Faction, error) {
	if f, ok := factionCache.getID(id); ok {
		return f, nil
	}
	f, err := getByID[Faction](ctx, c, collectionFaction, fieldFactionID, id)
	if err != nil {
		return nil, err
	}
	factionCache.setID(id, f)
	return f, nil
}

// FactionByName fetches a faction by localized name, ignoring case.
func FactionByName(ctx context.Context, c *auraxis.Client, name string) (*Faction, error) {
	if f, ok := factionCache.getName(DefaultLocale, name); ok {
		return f, nil
	}
	f, err := getByName[Faction](ctx, c, collectionFaction, DefaultLocale, name)
	if err != nil {
		return nil, err
	}
	factionCache.setID(f.ID.Int64(), f)
	factionCache.setName(DefaultLocale, name, f)
	return f, nil
}
