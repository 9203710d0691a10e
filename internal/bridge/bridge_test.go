package bridge

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/event"
	"github.com/auraxtools/auraxis/ps2"
)

// fakeSender records embeds instead of talking to Discord.
type fakeSender struct {
	mu     sync.Mutex
	chanID string
	sent   []*discordgo.MessageEmbed
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chanID = channelID
	f.sent = append(f.sent, embed)
	return &discordgo.Message{ID: "1"}, nil
}

func (f *fakeSender) embeds() []*discordgo.MessageEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.MessageEmbed(nil), f.sent...)
}

func newFakeCensus(t *testing.T, handler http.HandlerFunc) *auraxis.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return auraxis.New(
		auraxis.WithBaseURL(srv.URL),
		auraxis.WithServiceID("s:test"),
		auraxis.WithRetry(0, time.Millisecond),
	)
}

func newTestBridge(rest *auraxis.Client, tracked map[int64]string) (*Bridge, *fakeSender) {
	sender := &fakeSender{}
	b := &Bridge{
		sender:    sender,
		rest:      rest,
		channelID: "chan123",
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracked:   tracked,
	}
	return b, sender
}

func characterBody(id, name string) string {
	return `{"character_list":[{"character_id":"` + id + `","name":{"first":"` + name + `","first_lower":"` + strings.ToLower(name) + `"}}],"returned":1}`
}

func TestBridgeResolveCharacters(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("name.first_lower") {
		case "higby":
			w.Write([]byte(characterBody("101", "Higby")))
		case "wrel":
			w.Write([]byte(characterBody("202", "Wrel")))
		default:
			t.Errorf("unexpected lookup: %s", r.URL.String())
		}
	})

	b, _ := newTestBridge(rest, map[int64]string{})
	b.names = []string{"Higby", "Wrel"}

	require.NoError(t, b.resolve(context.Background()))
	assert.Equal(t, 2, b.TrackedCount())
	assert.Equal(t, "Higby", b.tracked[101])
	assert.Equal(t, "Wrel", b.tracked[202])
}

func TestBridgeResolveOutfit(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/outfit"):
			assert.Equal(t, "dhka", r.URL.Query().Get("alias_lower"))
			w.Write([]byte(`{"outfit_list":[{"outfit_id":"37509488620602936","alias":"DHKA","member_count":"2"}],"returned":1}`))
		case strings.HasSuffix(r.URL.Path, "/outfit_member"):
			assert.Equal(t, "37509488620602936", r.URL.Query().Get("outfit_id"))
			w.Write([]byte(`{"outfit_member_list":[
				{"outfit_id":"37509488620602936","character_id":"301"},
				{"outfit_id":"37509488620602936","character_id":"302"}
			],"returned":2}`))
		default:
			t.Errorf("unexpected lookup: %s", r.URL.String())
		}
	})

	b, _ := newTestBridge(rest, map[int64]string{})
	b.outfitTag = "DHKA"

	require.NoError(t, b.resolve(context.Background()))
	assert.Equal(t, 2, b.TrackedCount())

	// Member names resolve lazily, so the roster starts blank.
	name, ok := b.tracked[301]
	assert.True(t, ok)
	assert.Empty(t, name)
}

func TestBridgeResolveEmptyRoster(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/outfit"):
			w.Write([]byte(`{"outfit_list":[{"outfit_id":"9000","alias":"GHST","member_count":"0"}],"returned":1}`))
		default:
			w.Write([]byte(`{"outfit_member_list":[],"returned":0}`))
		}
	})

	b, _ := newTestBridge(rest, map[int64]string{})
	b.outfitTag = "GHST"

	err := b.resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgEmptyRoster)
}

func TestBridgeResolveUnknownCharacter(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"character_list":[],"returned":0}`))
	})

	b, _ := newTestBridge(rest, map[int64]string{})
	b.names = []string{"NoSuchName"}

	err := b.resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchName")
	assert.ErrorIs(t, err, auraxis.ErrNotFound)
}

func TestBridgeRegisterTriggers(t *testing.T) {
	client := event.NewClient(event.WithServiceID("s:test"))

	b, _ := newTestBridge(nil, map[int64]string{101: "Higby"})
	b.events = client

	require.NoError(t, b.register())
	assert.Equal(t, 2, client.TriggerCount())

	death, ok := client.GetTrigger("killfeed:death")
	require.True(t, ok)
	assert.Equal(t, []string{event.Death}, death.Events())

	rankUp, ok := client.GetTrigger("killfeed:rankup")
	require.True(t, ok)
	assert.Equal(t, []string{event.BattleRankUp}, rankUp.Events())

	b.unregister()
	assert.Equal(t, 0, client.TriggerCount())
}

func TestBridgeHandleDeath(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/character"):
			w.Write([]byte(characterBody("303", "Victim")))
		case strings.HasSuffix(r.URL.Path, "/item"):
			assert.Equal(t, "26001", r.URL.Query().Get("item_id"))
			w.Write([]byte(`{"item_list":[{"item_id":"26001","name":{"en":"Gauss Rifle"}}],"returned":1}`))
		default:
			t.Errorf("unexpected lookup: %s", r.URL.String())
		}
	})

	b, sender := newTestBridge(rest, map[int64]string{101: "TrackedGuy"})

	b.handleDeath(context.Background(), event.Envelope{
		Name: event.Death,
		Payload: map[string]string{
			"character_id":          "303",
			"attacker_character_id": "101",
			"attacker_weapon_id":    "26001",
			"is_headshot":           "1",
		},
	})

	embeds := sender.embeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, "chan123", sender.chanID)

	embed := embeds[0]
	assert.Equal(t, "Kill", embed.Title)
	assert.Equal(t, colorKill, embed.Color)
	assert.Equal(t, "**TrackedGuy** took down **Victim**", embed.Description)

	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Weapon", embed.Fields[0].Name)
	assert.Equal(t, "Gauss Rifle", embed.Fields[0].Value)
	assert.Equal(t, "Headshot", embed.Fields[1].Name)
}

func TestBridgeHandleDeathOfTracked(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/character"):
			w.Write([]byte(characterBody("404", "Enemy")))
		case strings.HasSuffix(r.URL.Path, "/item"):
			w.Write([]byte(`{"item_list":[{"item_id":"26001","name":{"en":"Gauss Rifle"}}],"returned":1}`))
		}
	})

	b, sender := newTestBridge(rest, map[int64]string{101: "TrackedGuy"})

	b.handleDeath(context.Background(), event.Envelope{
		Name: event.Death,
		Payload: map[string]string{
			"character_id":          "101",
			"attacker_character_id": "404",
			"attacker_weapon_id":    "26001",
			"is_headshot":           "0",
		},
	})

	embeds := sender.embeds()
	require.Len(t, embeds, 1)

	embed := embeds[0]
	assert.Equal(t, "Death", embed.Title)
	assert.Equal(t, colorDeath, embed.Color)
	assert.Equal(t, "**Enemy** took down **TrackedGuy**", embed.Description)
	require.Len(t, embed.Fields, 1)
}

func TestBridgeHandleDeathSuicide(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"item_list":[{"item_id":"26001","name":{"en":"Gauss Rifle"}}],"returned":1}`))
	})

	b, sender := newTestBridge(rest, map[int64]string{101: "TrackedGuy"})

	b.handleDeath(context.Background(), event.Envelope{
		Name: event.Death,
		Payload: map[string]string{
			"character_id":          "101",
			"attacker_character_id": "101",
			"attacker_weapon_id":    "26001",
		},
	})

	embeds := sender.embeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, "Death", embeds[0].Title)
	assert.Equal(t, "**TrackedGuy** died", embeds[0].Description)
}

func TestBridgeHandleDeathLookupFailure(t *testing.T) {
	ps2.ClearCaches()
	rest := newFakeCensus(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/character"):
			w.Write([]byte(`{"character_list":[],"returned":0}`))
		default:
			w.Write([]byte(`{"item_list":[],"returned":0}`))
		}
	})

	b, sender := newTestBridge(rest, map[int64]string{101: "TrackedGuy"})

	b.handleDeath(context.Background(), event.Envelope{
		Name: event.Death,
		Payload: map[string]string{
			"character_id":          "999",
			"attacker_character_id": "101",
			"attacker_weapon_id":    "26001",
		},
	})

	embeds := sender.embeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, "**TrackedGuy** took down **Unknown**", embeds[0].Description)
	assert.Equal(t, UnknownName, embeds[0].Fields[0].Value)
}

func TestBridgeHandleRankUp(t *testing.T) {
	ps2.ClearCaches()

	b, sender := newTestBridge(nil, map[int64]string{101: "TrackedGuy"})

	b.handleRankUp(context.Background(), event.Envelope{
		Name: event.BattleRankUp,
		Payload: map[string]string{
			"character_id": "101",
			"battle_rank":  "100",
		},
	})

	embeds := sender.embeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, "Battle Rank Up", embeds[0].Title)
	assert.Equal(t, colorRankUp, embeds[0].Color)
	assert.Equal(t, "**TrackedGuy** reached battle rank **100**", embeds[0].Description)
}

func TestKillEmbedEnvironmentDeath(t *testing.T) {
	embed := killEmbed("", "Victim", UnknownName, false, false)
	assert.Equal(t, "Death", embed.Title)
	assert.Equal(t, colorDeath, embed.Color)
	assert.Equal(t, "**Victim** died", embed.Description)
}
