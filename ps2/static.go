package ps2

import (
	"context"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/census"
)

const (
	collectionTitle       = "title"
	collectionProfile     = "profile"
	collectionExperience  = "experience"
	collectionAchievement = "achievement"
	collectionSkill       = "skill"
	collectionMetagame    = "metagame_event"
)

var (
	titleCache       = newResourceCache[Title](staticCacheSize, staticCacheTTL)
	profileCache     = newResourceCache[Profile](staticCacheSize, staticCacheTTL)
	experienceCache  = newResourceCache[Experience](staticCacheSize, staticCacheTTL)
	achievementCache = newResourceCache[Achievement](staticCacheSize, staticCacheTTL)
	skillCache       = newResourceCache[Skill](staticCacheSize, staticCacheTTL)
	metagameCache    = newResourceCache[MetagameEventInfo](staticCacheSize, staticCacheTTL)
)

// Title is a display title selectable by a character.
//
// Title IDs are not unique: the prestige system reuses IDs with a
// different name, so a lookup returns the first match.
type Title struct {
	ID   auraxis.CensusInt  `json:"title_id"`
	Name auraxis.LocaleData `json:"name"`
}

// TitleByID fetches a title by ID.
func TitleByID(ctx context.Context, c *auraxis.Client, id int64) (*Title, error) {
	if t, ok := titleCache.getID(id); ok {
		return t, nil
	}
	t, err := getByID[Title](ctx, c, collectionTitle, "title_id", id)
	if err != nil {
		return nil, err
	}
	titleCache.setID(id, t)
	return t, nil
}

// Profile is an infantry class loadout slot, e.g. Combat Medic.
type Profile struct {
	ID            auraxis.CensusInt  `json:"profile_id"`
	ProfileTypeID auraxis.CensusInt  `json:"profile_type_id"`
	FactionID     auraxis.CensusInt  `json:"faction_id"`
	Name          auraxis.LocaleData `json:"name"`
	Description   auraxis.LocaleData `json:"description"`
	ImageData
}

// ProfileByID fetches a profile by ID.
func ProfileByID(ctx context.Context, c *auraxis.Client, id int64) (*Profile, error) {
	if p, ok := profileCache.getID(id); ok {
		return p, nil
	}
	p, err := getByID[Profile](ctx, c, collectionProfile, "profile_id", id)
	if err != nil {
		return nil, err
	}
	profileCache.setID(id, p)
	return p, nil
}

// Experience is one experience award type, e.g. a revive or a spot
// assist. Its ID keys the experience-scoped stream events.
type Experience struct {
	ID          auraxis.CensusInt `json:"experience_id"`
	Description string            `json:"description"`
	XP          auraxis.CensusInt `json:"xp"`
}

// ExperienceByID fetches an experience award type by ID.
func ExperienceByID(ctx context.Context, c *auraxis.Client, id int64) (*Experience, error) {
	if e, ok := experienceCache.getID(id); ok {
		return e, nil
	}
	e, err := getByID[Experience](ctx, c, collectionExperience, "experience_id", id)
	if err != nil {
		return nil, err
	}
	experienceCache.setID(id, e)
	return e, nil
}

// FindExperience runs an arbitrary experience query, e.g. a description
// prefix search to discover award IDs.
func FindExperience(ctx context.Context, c *auraxis.Client, terms ...census.Term) ([]*Experience, error) {
	return find[Experience](ctx, c, c.NewQuery(collectionExperience, terms...))
}

// Achievement is a medal or service ribbon.
type Achievement struct {
	ID               auraxis.CensusInt  `json:"achievement_id"`
	ItemID           auraxis.CensusInt  `json:"item_id"`
	ObjectiveGroupID auraxis.CensusInt  `json:"objective_group_id"`
	RewardID         auraxis.CensusInt  `json:"reward_id"`
	Repeatable       auraxis.CensusBool `json:"repeatable"`
	Name             auraxis.LocaleData `json:"name"`
	Description      auraxis.LocaleData `json:"description"`
	ImageData
}

// IsRibbon reports whether the achievement is a service ribbon rather
// than a medal. Ribbons are repeatable, medals are one-time.
func (a *Achievement) IsRibbon() bool {
	return a.Repeatable.Bool()
}

// AchievementByID fetches an achievement by ID.
func AchievementByID(ctx context.Context, c *auraxis.Client, id int64) (*Achievement, error) {
	if a, ok := achievementCache.getID(id); ok {
		return a, nil
	}
	a, err := getByID[Achievement](ctx, c, collectionAchievement, "achievement_id", id)
	if err != nil {
		return nil, err
	}
	achievementCache.setID(id, a)
	return a, nil
}

// Skill is an unlockable certification node.
type Skill struct {
	ID             auraxis.CensusInt  `json:"skill_id"`
	SkillLineID    auraxis.CensusInt  `json:"skill_line_id"`
	SkillLineIndex auraxis.CensusInt  `json:"skill_line_index"`
	SkillPoints    auraxis.CensusInt  `json:"skill_points"`
	GrantItemID    auraxis.CensusInt  `json:"grant_item_id"`
	Name           auraxis.LocaleData `json:"name"`
	Description    auraxis.LocaleData `json:"description"`
	ImageData
}

// SkillByID fetches a skill by ID.
func SkillByID(ctx context.Context, c *auraxis.Client, id int64) (*Skill, error) {
	if s, ok := skillCache.getID(id); ok {
		return s, nil
	}
	s, err := getByID[Skill](ctx, c, collectionSkill, "skill_id", id)
	if err != nil {
		return nil, err
	}
	skillCache.setID(id, s)
	return s, nil
}

// GrantItem fetches the item a skill unlocks, if any.
func (s *Skill) GrantItem(ctx context.Context, c *auraxis.Client) (*Item, error) {
	if s.GrantItemID == 0 {
		return nil, auraxis.ErrNotFound
	}
	return ItemByID(ctx, c, s.GrantItemID.Int64())
}

// MetagameEventInfo describes an alert type referenced by MetagameEvent
// stream events.
type MetagameEventInfo struct {
	ID              auraxis.CensusInt   `json:"metagame_event_id"`
	Name            auraxis.LocaleData  `json:"name"`
	Description     auraxis.LocaleData  `json:"description"`
	Type            auraxis.CensusInt   `json:"type"`
	ExperienceBonus auraxis.CensusFloat `json:"experience_bonus"`
}

// MetagameEventInfoByID fetches an alert type by ID.
func MetagameEventInfoByID(ctx context.Context, c *auraxis.Client, id int64) (*MetagameEventInfo, error) {
	if m, ok := metagameCache.getID(id); ok {
		return m, nil
	}
	m, err := getByID[MetagameEventInfo](ctx, c, collectionMetagame, "metagame_event_id", id)
	if err != nil {
		return nil, err
	}
	metagameCache.setID(id, m)
	return m, nil
}
