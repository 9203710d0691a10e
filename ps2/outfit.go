package ps2

import (
	"context"

	"github.com/auraxtools/auraxis"
)

const (
	collectionOutfit       = "outfit"
	collectionOutfitMember = "outfit_member"
	collectionOutfitRank   = "outfit_rank"
	fieldOutfitID          = "outfit_id"
)

var outfitCache = newResourceCache[Outfit](staticCacheSize, staticCacheTTL)

// Outfit is a player-run group, analogous to clans or guilds.
type Outfit struct {
	ID                auraxis.CensusInt  `json:"outfit_id"`
	Name              string             `json:"name"`
	NameLower         string             `json:"name_lower"`
	Alias             string             `json:"alias"`
	AliasLower        string             `json:"alias_lower"`
	TimeCreated       auraxis.CensusTime `json:"time_created"`
	LeaderCharacterID auraxis.CensusInt  `json:"leader_character_id"`
	MemberCount       auraxis.CensusInt  `json:"member_count"`
}

// Tag returns the outfit's tag, the short identifier shown in kill feeds.
func (o *Outfit) Tag() string { return o.Alias }

// OutfitMember links a character to an outfit with their rank.
type OutfitMember struct {
	OutfitID    auraxis.CensusInt  `json:"outfit_id"`
	CharacterID auraxis.CensusInt  `json:"character_id"`
	MemberSince auraxis.CensusTime `json:"member_since"`
	Rank        string             `json:"rank"`
	// RankOrdinal orders ranks within the outfit; lower is higher.
	RankOrdinal auraxis.CensusInt `json:"rank_ordinal"`
}

// OutfitRank is one rank definition within an outfit. Rank names are
// outfit-specific and not localized.
type OutfitRank struct {
	OutfitID    auraxis.CensusInt `json:"outfit_id"`
	Ordinal     auraxis.CensusInt `json:"ordinal"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
}

// OutfitByID fetches an outfit by ID.
func OutfitByID(ctx context.Context, c *auraxis.Client, id int64) (*Outfit, error) {
	if o, ok := outfitCache.getID(id); ok {
		return o, nil
	}
	o, err := getByID[Outfit](ctx, c, collectionOutfit, fieldOutfitID, id)
	if err != nil {
		return nil, err
	}
	outfitCache.setID(id, o)
	return o, nil
}

// OutfitByName fetches an outfit by full name, ignoring case.
func OutfitByName(ctx context.Context, c *auraxis.Client, name string) (*Outfit, error) {
	if o, ok := outfitCache.getName(DefaultLocale, name); ok {
		return o, nil
	}
	q := c.NewQuery(collectionOutfit).
		Where("name_lower", lowerName(name)).
		Limit(1)
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionOutfit)
	if err != nil {
		return nil, err
	}
	o, err := decode[Outfit](collectionOutfit, raw)
	if err != nil {
		return nil, err
	}
	outfitCache.setID(o.ID.Int64(), o)
	outfitCache.setName(DefaultLocale, name, o)
	return o, nil
}

// OutfitByTag fetches an outfit by its tag, ignoring case.
func OutfitByTag(ctx context.Context, c *auraxis.Client, tag string) (*Outfit, error) {
	q := c.NewQuery(collectionOutfit).
		Where("alias_lower", lowerName(tag)).
		Limit(1)
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionOutfit)
	if err != nil {
		return nil, err
	}
	o, err := decode[Outfit](collectionOutfit, raw)
	if err != nil {
		return nil, err
	}
	outfitCache.setID(o.ID.Int64(), o)
	return o, nil
}

// Leader fetches the outfit's leader.
func (o *Outfit) Leader(ctx context.Context, c *auraxis.Client) (*Character, error) {
	return CharacterByID(ctx, c, o.LeaderCharacterID.Int64())
}

// Members lists the outfit's membership records. Large outfits are capped
// at 5000 members by the API.
func (o *Outfit) Members(ctx context.Context, c *auraxis.Client) ([]*OutfitMember, error) {
	q := c.NewQuery(collectionOutfitMember).
		Where(fieldOutfitID, o.ID.Int64()).
		Limit(5000)
	return find[OutfitMember](ctx, c, q)
}

// Ranks lists the outfit's rank definitions.
func (o *Outfit) Ranks(ctx context.Context, c *auraxis.Client) ([]*OutfitRank, error) {
	q := c.NewQuery(collectionOutfitRank).
		Where(fieldOutfitID, o.ID.Int64()).
		Limit(20)
	return find[OutfitRank](ctx, c, q)
}

// Character fetches the character behind a membership record.
func (m *OutfitMember) Character(ctx context.Context, c *auraxis.Client) (*Character, error) {
	return CharacterByID(ctx, c, m.CharacterID.Int64())
}

// Outfit fetches the outfit a membership record belongs to.
func (m *OutfitMember) Outfit(ctx context.Context, c *auraxis.Client) (*Outfit, error) {
	return OutfitByID(ctx, c, m.OutfitID.Int64())
}
