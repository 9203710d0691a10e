package ps2

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/census"
)

const (
	collectionCharacter      = "character"
	collectionCharsOnline    = "characters_online_status"
	collectionCharsFriend    = "characters_friend"
	collectionCharsItem      = "characters_item"
	collectionCharsCurrency  = "characters_currency"
	collectionCharsEvent     = "characters_event"
	collectionCharsWorld     = "characters_world"
	collectionMemberExtended = "outfit_member_extended"

	fieldCharacterID = "character_id"
)

// characterEventLimit is the hard cap the API applies to the past-event
// collection; poll with before/after terms for more.
const characterEventLimit = 1000

var characterCache = newResourceCache[Character](characterCacheSize, characterCacheTTL)

// CharacterName is a character's name. Character names are not localized;
// the API sends the display form plus a lowercased copy used for
// case-insensitive matching.
type CharacterName struct {
	First      string `json:"first"`
	FirstLower string `json:"first_lower"`
}

// CharacterTimes holds creation, login and play time data.
type CharacterTimes struct {
	Creation      auraxis.CensusTime `json:"creation"`
	LastSave      auraxis.CensusTime `json:"last_save"`
	LastLogin     auraxis.CensusTime `json:"last_login"`
	LoginCount    auraxis.CensusInt  `json:"login_count"`
	MinutesPlayed auraxis.CensusInt  `json:"minutes_played"`
}

// CharacterCerts holds certification point totals.
type CharacterCerts struct {
	EarnedPoints    auraxis.CensusInt   `json:"earned_points"`
	GiftedPoints    auraxis.CensusInt   `json:"gifted_points"`
	SpentPoints     auraxis.CensusInt   `json:"spent_points"`
	AvailablePoints auraxis.CensusInt   `json:"available_points"`
	PercentToNext   auraxis.CensusFloat `json:"percent_to_next"`
}

// CharacterBattleRank holds the battle rank and progress to the next one.
type CharacterBattleRank struct {
	Value         auraxis.CensusInt   `json:"value"`
	PercentToNext auraxis.CensusFloat `json:"percent_to_next"`
}

// Character is a player-controlled fighter.
type Character struct {
	ID            auraxis.CensusInt   `json:"character_id"`
	Name          CharacterName       `json:"name"`
	FactionID     auraxis.CensusInt   `json:"faction_id"`
	HeadID        auraxis.CensusInt   `json:"head_id"`
	TitleID       auraxis.CensusInt   `json:"title_id"`
	Times         CharacterTimes      `json:"times"`
	Certs         CharacterCerts      `json:"certs"`
	BattleRank    CharacterBattleRank `json:"battle_rank"`
	ProfileID     auraxis.CensusInt   `json:"profile_id"`
	PrestigeLevel auraxis.CensusInt   `json:"prestige_level"`
}

// CharacterByID fetches a character by ID, serving repeat lookups from the
// cache for up to 30 seconds.
func CharacterByID(ctx context.Context, c *auraxis.Client, id int64) (*Character, error) {
	if ch, ok := characterCache.getID(id); ok {
		return ch, nil
	}
	ch, err := getByID[Character](ctx, c, collectionCharacter, fieldCharacterID, id)
	if err != nil {
		return nil, err
	}
	characterCache.setID(id, ch)
	characterCache.setName(DefaultLocale, ch.Name.First, ch)
	return ch, nil
}

// CharacterByName fetches a character by name, ignoring case.
func CharacterByName(ctx context.Context, c *auraxis.Client, name string) (*Character, error) {
	if ch, ok := characterCache.getName(DefaultLocale, name); ok {
		return ch, nil
	}
	q := c.NewQuery(collectionCharacter).
		Where("name.first_lower", lowerName(name)).
		Limit(1)
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionCharacter)
	if err != nil {
		return nil, err
	}
	ch, err := decode[Character](collectionCharacter, raw)
	if err != nil {
		return nil, err
	}
	characterCache.setID(ch.ID.Int64(), ch)
	characterCache.setName(DefaultLocale, name, ch)
	return ch, nil
}

// FindCharacters runs an arbitrary character query.
func FindCharacters(ctx context.Context, c *auraxis.Client, terms ...census.Term) ([]*Character, error) {
	return find[Character](ctx, c, c.NewQuery(collectionCharacter, terms...))
}

// CountCharacters counts characters matching the terms.
func CountCharacters(ctx context.Context, c *auraxis.Client, terms ...census.Term) (int64, error) {
	return count(ctx, c, collectionCharacter, terms...)
}

// CharactersOnline returns the subset of the given characters that are
// currently online.
func CharactersOnline(ctx context.Context, c *auraxis.Client, ids ...int64) ([]*Character, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatInt(id, 10)
	}
	q := c.NewQuery(collectionCharacter).
		Where(fieldCharacterID, strings.Join(strs, ",")).
		Limit(len(ids)).
		Resolve("online_status")
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractPayload(p, collectionCharacter)
	if err != nil {
		return nil, err
	}
	online := make([]*Character, 0, len(raw))
	for _, r := range raw {
		var probe struct {
			Online auraxis.CensusInt `json:"online_status"`
		}
		if err := json.Unmarshal(r, &probe); err != nil {
			return nil, &auraxis.PayloadError{Key: "online_status", Message: err.Error()}
		}
		if probe.Online.Int64() == 0 {
			continue
		}
		ch, err := decode[Character](collectionCharacter, r)
		if err != nil {
			return nil, err
		}
		online = append(online, ch)
	}
	return online, nil
}

// Faction fetches the character's faction.
func (ch *Character) Faction(ctx context.Context, c *auraxis.Client) (*Faction, error) {
	return FactionByID(ctx, c, ch.FactionID.Int64())
}

// World fetches the world the character lives on.
func (ch *Character) World(ctx context.Context, c *auraxis.Client) (*World, error) {
	q := c.NewQuery(collectionCharsWorld).Where(fieldCharacterID, ch.ID.Int64())
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionCharsWorld)
	if err != nil {
		return nil, err
	}
	var rec struct {
		WorldID auraxis.CensusInt `json:"world_id"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &auraxis.PayloadError{Key: "world_id", Message: err.Error()}
	}
	return WorldByID(ctx, c, rec.WorldID.Int64())
}

// Outfit fetches the outfit the character belongs to, or ErrNotFound when
// they are not in one.
func (ch *Character) Outfit(ctx context.Context, c *auraxis.Client) (*Outfit, error) {
	q := c.NewQuery(collectionMemberExtended).Where(fieldCharacterID, ch.ID.Int64())
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionMemberExtended)
	if err != nil {
		return nil, err
	}
	return decode[Outfit](collectionMemberExtended, raw)
}

// OutfitMember fetches the character's outfit membership record, or
// ErrNotFound when they are not in an outfit.
func (ch *Character) OutfitMember(ctx context.Context, c *auraxis.Client) (*OutfitMember, error) {
	q := c.NewQuery(collectionOutfitMember).Where(fieldCharacterID, ch.ID.Int64())
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionOutfitMember)
	if err != nil {
		return nil, err
	}
	return decode[OutfitMember](collectionOutfitMember, raw)
}

// Title fetches the character's selected title. Characters without a
// title return ErrNotFound.
func (ch *Character) Title(ctx context.Context, c *auraxis.Client) (*Title, error) {
	if ch.TitleID == 0 {
		return nil, auraxis.ErrNotFound
	}
	return TitleByID(ctx, c, ch.TitleID.Int64())
}

// Profile fetches the last profile (class) the character played.
func (ch *Character) Profile(ctx context.Context, c *auraxis.Client) (*Profile, error) {
	return ProfileByID(ctx, c, ch.ProfileID.Int64())
}

// OnlineStatus returns 0 when the character is offline, or the ID of the
// world they are logged into.
func (ch *Character) OnlineStatus(ctx context.Context, c *auraxis.Client) (int64, error) {
	q := c.NewQuery(collectionCharsOnline).Where(fieldCharacterID, ch.ID.Int64())
	p, err := c.Request(ctx, q)
	if err != nil {
		return 0, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionCharsOnline)
	if err != nil {
		return 0, err
	}
	var rec struct {
		Online auraxis.CensusInt `json:"online_status"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, &auraxis.PayloadError{Key: "online_status", Message: err.Error()}
	}
	return rec.Online.Int64(), nil
}

// IsOnline reports whether the character is currently logged in.
func (ch *Character) IsOnline(ctx context.Context, c *auraxis.Client) (bool, error) {
	status, err := ch.OnlineStatus(ctx, c)
	if err != nil {
		return false, err
	}
	return status != 0, nil
}

// Friends fetches the character's friends list. The friend collection
// cannot be joined onto character records, so this costs a second query.
func (ch *Character) Friends(ctx context.Context, c *auraxis.Client) ([]*Character, error) {
	q := c.NewQuery(collectionCharsFriend).Where(fieldCharacterID, ch.ID.Int64())
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionCharsFriend)
	if err != nil {
		return nil, err
	}
	var rec struct {
		FriendList []struct {
			CharacterID auraxis.CensusInt `json:"character_id"`
		} `json:"friend_list"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &auraxis.PayloadError{Key: "friend_list", Message: err.Error()}
	}
	if len(rec.FriendList) == 0 {
		return nil, nil
	}
	ids := make([]string, len(rec.FriendList))
	for i, f := range rec.FriendList {
		ids[i] = f.CharacterID.String()
	}
	fq := c.NewQuery(collectionCharacter).
		Where(fieldCharacterID, strings.Join(ids, ",")).
		Limit(len(ids))
	return find[Character](ctx, c, fq)
}

// Items fetches the items owned by the character, joined in a single
// request.
func (ch *Character) Items(ctx context.Context, c *auraxis.Client) ([]*Item, error) {
	q := c.NewQuery(collectionCharsItem).
		Where(fieldCharacterID, ch.ID.Int64()).
		Limit(5000)
	q.AddJoin(collectionItem).
		OnField(fieldItemID).
		ToField(fieldItemID).
		InjectAt("item")
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := auraxis.ExtractPayload(p, collectionCharsItem)
	if err != nil {
		return nil, err
	}
	items := make([]*Item, 0, len(raw))
	for _, r := range raw {
		var rec struct {
			Item *Item `json:"item"`
		}
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, &auraxis.PayloadError{Key: "item", Message: err.Error()}
		}
		if rec.Item != nil {
			items = append(items, rec.Item)
		}
	}
	return items, nil
}

// Currency returns the character's spendable currencies: nanites and ASP
// tokens. Other in-game currencies are not exposed by the API.
func (ch *Character) Currency(ctx context.Context, c *auraxis.Client) (nanites, asp int64, err error) {
	q := c.NewQuery(collectionCharsCurrency).Where(fieldCharacterID, ch.ID.Int64())
	p, err := c.Request(ctx, q)
	if err != nil {
		return 0, 0, err
	}
	raw, err := auraxis.ExtractSingle(p, collectionCharsCurrency)
	if err != nil {
		return 0, 0, err
	}
	var rec struct {
		Quantity auraxis.CensusInt `json:"quantity"`
		Prestige auraxis.CensusInt `json:"prestige_currency"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, 0, &auraxis.PayloadError{Key: "quantity", Message: err.Error()}
	}
	return rec.Quantity.Int64(), rec.Prestige.Int64(), nil
}

// Events returns past event records for the character as raw payloads.
// The API caps this collection at 1000 records; narrow with before/after
// terms to page through history.
func (ch *Character) Events(ctx context.Context, c *auraxis.Client, terms ...census.Term) ([]json.RawMessage, error) {
	q := c.NewQuery(collectionCharsEvent, terms...).
		Where(fieldCharacterID, ch.ID.Int64()).
		Limit(characterEventLimit)
	p, err := c.Request(ctx, q)
	if err != nil {
		return nil, err
	}
	return auraxis.ExtractPayload(p, collectionCharsEvent)
}

// NameLong returns the display name prefixed with the character's title,
// when they have one, e.g. "Harasser Driver Higby".
func (ch *Character) NameLong(ctx context.Context, c *auraxis.Client, locale string) (string, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if ch.TitleID != 0 {
		title, err := ch.Title(ctx, c)
		switch {
		case err == nil:
			if name := title.Name.Get(language.Make(locale)); name != "" {
				return name + " " + ch.Name.First, nil
			}
		case !errors.Is(err, auraxis.ErrNotFound):
			return "", err
		}
	}
	return ch.Name.First, nil
}
