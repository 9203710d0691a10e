package ps2

import (
	"context"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/census"
)

const (
	collectionItem = "item"
	fieldItemID    = "item_id"
)

var itemCache = newResourceCache[Item](staticCacheSize, staticCacheTTL)

// Item is a purchasable or equippable object: weapons, attachments,
// cosmetics, consumables.
type Item struct {
	ID                  auraxis.CensusInt  `json:"item_id"`
	ItemTypeID          auraxis.CensusInt  `json:"item_type_id"`
	ItemCategoryID      auraxis.CensusInt  `json:"item_category_id"`
	IsVehicleWeapon     auraxis.CensusBool `json:"is_vehicle_weapon"`
	Name                auraxis.LocaleData `json:"name"`
	Description         auraxis.LocaleData `json:"description"`
	FactionID           auraxis.CensusInt  `json:"faction_id"`
	MaxStackSize        auraxis.CensusInt  `json:"max_stack_size"`
	IsDefaultAttachment auraxis.CensusBool `json:"is_default_attachment"`
	ImageData
}

// ItemByID fetches an item by ID.
func ItemByID(ctx context.Context, c *auraxis.Client, id int64) (*Item, error) {
	if it, ok := itemCache.getID(id); ok {
		return it, nil
	}
	it, err := getByID[Item](ctx, c, collectionItem, fieldItemID, id)
	if err != nil {
		return nil, err
	}
	itemCache.setID(id, it)
	return it, nil
}

// ItemByName fetches an item by localized name, ignoring case. Item names
// are not unique; the first match wins.
func ItemByName(ctx context.Context, c *auraxis.Client, name string) (*Item, error) {
	if it, ok := itemCache.getName(DefaultLocale, name); ok {
		return it, nil
	}
	it, err := getByName[Item](ctx, c, collectionItem, DefaultLocale, name)
	if err != nil {
		return nil, err
	}
	itemCache.setID(it.ID.Int64(), it)
	itemCache.setName(DefaultLocale, name, it)
	return it, nil
}

// FindItems runs an arbitrary item query.
func FindItems(ctx context.Context, c *auraxis.Client, terms ...census.Term) ([]*Item, error) {
	return find[Item](ctx, c, c.NewQuery(collectionItem, terms...))
}

// CountItems counts items matching the terms.
func CountItems(ctx context.Context, c *auraxis.Client, terms ...census.Term) (int64, error) {
	return count(ctx, c, collectionItem, terms...)
}

// Faction fetches the faction an item is restricted to. Common-pool items
// return ErrNotFound.
func (it *Item) Faction(ctx context.Context, c *auraxis.Client) (*Faction, error) {
	if it.FactionID == 0 {
		return nil, auraxis.ErrNotFound
	}
	return FactionByID(ctx, c, it.FactionID.Int64())
}
