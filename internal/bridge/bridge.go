package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/event"
	"github.com/auraxtools/auraxis/ps2"
)

// messageSender posts embeds to a channel. *discordgo.Session satisfies it;
// tests substitute a recorder.
type messageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bridge relays Death and BattleRankUp events for a tracked roster of
// characters into a Discord channel. Names are resolved through the REST
// client, which caches character and item lookups.
type Bridge struct {
	session   *discordgo.Session
	sender    messageSender
	rest      *auraxis.Client
	events    *event.Client
	channelID string
	outfitTag string
	names     []string
	log       *slog.Logger

	// tracked maps character id to name. Filled once by Start before the
	// event client connects, read-only afterwards.
	tracked  map[int64]string
	triggers []*event.Trigger
}

// New creates a killfeed bridge. The REST client resolves the roster and
// message names; the event client carries the triggers. Neither is started
// here.
func New(cfg *Config, rest *auraxis.Client, events *event.Client) (*Bridge, error) {
	s, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSessionCreate, err)
	}

	return &Bridge{
		session:   s,
		sender:    s,
		rest:      rest,
		events:    events,
		channelID: cfg.ChannelID,
		outfitTag: cfg.OutfitTag,
		names:     cfg.Characters,
		log:       slog.Default(),
		tracked:   make(map[int64]string),
	}, nil
}

// Start resolves the tracked roster, opens the Discord session and registers
// the stream triggers. Call it before the event client connects so the
// roster rides the initial subscription.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.resolve(ctx); err != nil {
		return err
	}

	b.session.AddHandler(b.ready)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSessionOpen, err)
	}

	if err := b.register(); err != nil {
		b.session.Close()
		return err
	}
	return nil
}

// Stop removes the stream triggers and closes the Discord session.
func (b *Bridge) Stop() {
	b.unregister()
	b.session.Close()
}

// TrackedCount returns the size of the resolved roster.
func (b *Bridge) TrackedCount() int { return len(b.tracked) }

func (b *Bridge) ready(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info(LogMsgBridgeReady, "user", s.State.User.Username, "channel_id", b.channelID)
}

// resolve turns the configured outfit tag and character names into the
// tracked id set. Outfit members keep an empty name and are resolved lazily
// when they first appear in a message.
func (b *Bridge) resolve(ctx context.Context) error {
	if b.outfitTag != "" {
		outfit, err := ps2.OutfitByTag(ctx, b.rest, b.outfitTag)
		if err != nil {
			return fmt.Errorf("resolve outfit %q: %w", b.outfitTag, err)
		}
		members, err := outfit.Members(ctx, b.rest)
		if err != nil {
			return fmt.Errorf("list members of %q: %w", b.outfitTag, err)
		}
		for _, m := range members {
			b.tracked[m.CharacterID.Int64()] = ""
		}
		b.log.Info(LogMsgOutfitTracked, "tag", outfit.Tag(), "members", len(members))
	}

	for _, name := range b.names {
		ch, err := ps2.CharacterByName(ctx, b.rest, name)
		if err != nil {
			return fmt.Errorf("resolve character %q: %w", name, err)
		}
		b.tracked[ch.ID.Int64()] = ch.Name.First
		b.log.Info(LogMsgCharacterTracked, "name", ch.Name.First, "character_id", ch.ID.Int64())
	}

	if len(b.tracked) == 0 {
		return errors.New(ErrMsgEmptyRoster)
	}
	return nil
}

func (b *Bridge) register() error {
	ids := make([]int64, 0, len(b.tracked))
	for id := range b.tracked {
		ids = append(ids, id)
	}

	death := event.NewTrigger(event.Death).SetAction(b.handleDeath).LimitCharacters(ids...)
	death.Name = "killfeed:death"
	rankUp := event.NewTrigger(event.BattleRankUp).SetAction(b.handleRankUp).LimitCharacters(ids...)
	rankUp.Name = "killfeed:rankup"

	for _, t := range []*event.Trigger{death, rankUp} {
		if err := b.events.AddTrigger(t); err != nil {
			b.unregister()
			return err
		}
		b.triggers = append(b.triggers, t)
		b.log.Info(LogMsgTriggerRegistered, "trigger", t.Name, "characters", len(ids))
	}
	return nil
}

func (b *Bridge) unregister() {
	for _, t := range b.triggers {
		b.events.RemoveTrigger(t)
	}
	b.triggers = nil
}

func (b *Bridge) handleDeath(ctx context.Context, e event.Envelope) {
	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	victimID := e.CharacterID()
	attackerID := e.AttackerCharacterID()

	victim := b.characterName(lctx, victimID)
	weapon := b.weaponName(lctx, e.Int64("attacker_weapon_id"))

	// Suicides and environment deaths report the victim as their own
	// attacker, or no attacker at all.
	attacker := ""
	if attackerID != 0 && attackerID != victimID {
		attacker = b.characterName(lctx, attackerID)
	}

	_, trackedKill := b.tracked[attackerID]
	b.send(killEmbed(attacker, victim, weapon, e.Bool("is_headshot"), trackedKill), e.Name)
}

func (b *Bridge) handleRankUp(ctx context.Context, e event.Envelope) {
	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	name := b.characterName(lctx, e.CharacterID())
	b.send(rankEmbed(name, e.Int64("battle_rank")), e.Name)
}

// characterName resolves a character id to its display name, preferring the
// roster, then the cached REST lookup.
func (b *Bridge) characterName(ctx context.Context, id int64) string {
	if id == 0 {
		return UnknownName
	}
	if name, ok := b.tracked[id]; ok && name != "" {
		return name
	}
	ch, err := ps2.CharacterByID(ctx, b.rest, id)
	if err != nil {
		b.log.Warn(LogMsgLookupFailed, "collection", "character", "id", id, "error", err)
		return UnknownName
	}
	return ch.Name.First
}

func (b *Bridge) weaponName(ctx context.Context, id int64) string {
	if id == 0 {
		return UnknownName
	}
	it, err := ps2.ItemByID(ctx, b.rest, id)
	if err != nil {
		b.log.Warn(LogMsgLookupFailed, "collection", "item", "id", id, "error", err)
		return UnknownName
	}
	return it.Name.String()
}

func (b *Bridge) send(embed *discordgo.MessageEmbed, eventName string) {
	if _, err := b.sender.ChannelMessageSendEmbed(b.channelID, embed); err != nil {
		b.log.Error(LogMsgMessageFailed, "event", eventName, "error", err)
	}
}

// killEmbed formats a Death event. An empty attacker marks a suicide or
// environment death.
func killEmbed(attacker, victim, weapon string, headshot, trackedKill bool) *discordgo.MessageEmbed {
	title := "Death"
	color := colorDeath
	description := fmt.Sprintf("**%s** died", victim)

	if attacker != "" {
		description = fmt.Sprintf("**%s** took down **%s**", attacker, victim)
		if trackedKill {
			title = "Kill"
			color = colorKill
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Weapon",
				Value:  weapon,
				Inline: true,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: embedFooter,
		},
	}

	if headshot {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Headshot",
			Value:  "Yes",
			Inline: true,
		})
	}
	return embed
}

// rankEmbed formats a BattleRankUp event.
func rankEmbed(name string, rank int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Battle Rank Up",
		Description: fmt.Sprintf("**%s** reached battle rank **%d**", name, rank),
		Color:       colorRankUp,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: embedFooter,
		},
	}
}
