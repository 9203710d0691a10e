package track

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/auraxtools/auraxis/event"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func deathEnvelope() event.Envelope {
	raw := `{"event_name":"Death","character_id":"101","attacker_character_id":"202","world_id":"13","zone_id":"2","timestamp":"1650000000"}`
	return event.Envelope{
		Name: "Death",
		Payload: map[string]string{
			"event_name":            "Death",
			"character_id":          "101",
			"attacker_character_id": "202",
			"world_id":              "13",
			"zone_id":               "2",
			"timestamp":             "1650000000",
		},
		Timestamp: time.Unix(1650000000, 0).UTC(),
		Raw:       json.RawMessage(raw),
	}
}

func TestRecorderRegisterAddsTriggers(t *testing.T) {
	client := event.NewClient(event.WithServiceID("s:test"), event.WithLogger(discardLogger()))
	rec := NewRecorder(client, &MockStore{}, nil, discardLogger())

	cfg := &Config{
		Events:     []string{"Death", "BattleRankUp"},
		Characters: []int64{101},
		Worlds:     []int64{13},
	}

	require.NoError(t, rec.Register(cfg))
	assert.Equal(t, 2, client.TriggerCount())

	trig, ok := client.GetTrigger("track:Death")
	require.True(t, ok)
	assert.Equal(t, []string{"Death"}, trig.Events())

	rec.Unregister()
	assert.Equal(t, 0, client.TriggerCount())
}

func TestRecorderRegisterRollsBackOnConflict(t *testing.T) {
	client := event.NewClient(event.WithServiceID("s:test"), event.WithLogger(discardLogger()))
	rec := NewRecorder(client, &MockStore{}, nil, discardLogger())

	cfg := &Config{Events: []string{"Death", "Death"}}

	err := rec.Register(cfg)
	require.ErrorIs(t, err, event.ErrDuplicateTriggerName)
	assert.Equal(t, 0, client.TriggerCount())
}

func TestRecorderRecordStoresAndBroadcasts(t *testing.T) {
	store := &MockStore{}
	var inserted StoredEvent
	store.On("InsertEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(StoredEvent) }).
		Return(nil)

	hub := startHub(t)
	feed := hub.Register(nil)
	waitForClients(t, hub, 1)

	client := event.NewClient(event.WithServiceID("s:test"), event.WithLogger(discardLogger()))
	rec := NewRecorder(client, store, hub, discardLogger())

	rec.record(context.Background(), deathEnvelope())

	store.AssertExpectations(t)
	assert.Equal(t, "Death", inserted.EventName)
	assert.Equal(t, int64(101), inserted.CharacterID)
	assert.Equal(t, int64(202), inserted.AttackerID)
	assert.Equal(t, int64(13), inserted.WorldID)
	assert.Equal(t, int64(2), inserted.ZoneID)
	assert.Equal(t, time.Unix(1650000000, 0).UTC(), inserted.EventTime)

	fe := recvFeedEvent(t, feed)
	assert.Equal(t, "Death", fe.EventName)
	assert.JSONEq(t, string(deathEnvelope().Raw), string(fe.Payload))
}

func TestRecorderStoreFailureSkipsFeed(t *testing.T) {
	store := &MockStore{}
	store.On("InsertEvent", mock.Anything, mock.Anything).Return(assert.AnError)

	hub := startHub(t)
	feed := hub.Register(nil)
	waitForClients(t, hub, 1)

	client := event.NewClient(event.WithServiceID("s:test"), event.WithLogger(discardLogger()))
	rec := NewRecorder(client, store, hub, discardLogger())

	rec.record(context.Background(), deathEnvelope())

	select {
	case fe := <-feed.Events:
		t.Fatalf("unexpected feed event %q after store failure", fe.EventName)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRecorderRunCleanup(t *testing.T) {
	called := make(chan time.Time, 4)

	store := &MockStore{}
	store.On("CleanupBefore", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case called <- args.Get(1).(time.Time):
			default:
			}
		}).
		Return(int64(3), nil)

	client := event.NewClient(event.WithServiceID("s:test"), event.WithLogger(discardLogger()))
	rec := NewRecorder(client, store, nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.RunCleanup(ctx, time.Hour, 10*time.Millisecond)
		close(done)
	}()

	select {
	case cutoff := <-called:
		assert.WithinDuration(t, time.Now().Add(-time.Hour), cutoff, time.Minute)
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop did not stop on cancel")
	}
}
