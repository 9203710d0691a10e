package track

import (
	"context"
	"log/slog"
	"time"

	"github.com/auraxtools/auraxis/event"
	"github.com/auraxtools/auraxis/internal/metrics"
)

// Recorder stores matching stream events and feeds the live hub. One
// trigger is registered per configured event name, scoped to the configured
// characters and worlds.
type Recorder struct {
	client   *event.Client
	store    Store
	hub      *Hub
	log      *slog.Logger
	triggers []*event.Trigger
}

// NewRecorder creates a recorder. hub may be nil when no live feed is
// wanted.
func NewRecorder(client *event.Client, store Store, hub *Hub, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{
		client: client,
		store:  store,
		hub:    hub,
		log:    log,
	}
}

// Register adds the recorder's triggers to the stream client.
func (r *Recorder) Register(cfg *Config) error {
	for _, name := range cfg.Events {
		t := event.NewTrigger(name).SetAction(r.record)
		t.Name = "track:" + name

		if len(cfg.Characters) > 0 {
			t.LimitCharacters(cfg.Characters...)
		}
		if len(cfg.Worlds) > 0 {
			t.LimitWorlds(cfg.Worlds...)
		}

		if err := r.client.AddTrigger(t); err != nil {
			r.Unregister()
			return err
		}
		r.triggers = append(r.triggers, t)

		r.log.Info(LogMsgTriggerRegistered,
			"trigger", t.Name,
			"characters", len(cfg.Characters),
			"worlds", len(cfg.Worlds))
	}
	return nil
}

// Unregister removes the recorder's triggers from the stream client.
func (r *Recorder) Unregister() {
	for _, t := range r.triggers {
		_ = r.client.RemoveTrigger(t)
	}
	r.triggers = nil
}

// record is the trigger action. It persists the envelope and pushes it to
// the live feed.
func (r *Recorder) record(ctx context.Context, e event.Envelope) {
	stored := StoredEvent{
		EventName:   e.Name,
		CharacterID: e.CharacterID(),
		AttackerID:  e.AttackerCharacterID(),
		WorldID:     e.WorldID(),
		ZoneID:      e.ZoneID(),
		EventTime:   e.Timestamp,
		Payload:     e.Raw,
	}

	if err := r.store.InsertEvent(ctx, stored); err != nil {
		r.log.Error(LogMsgEventStoreFailed, "error", err, "event", e.Name)
		return
	}
	metrics.EventsStored.WithLabelValues(e.Name).Inc()

	if r.hub != nil {
		r.hub.Broadcast(e.Name, e.Raw)
	}
}

// RunCleanup sweeps expired rows every interval until ctx is cancelled.
func (r *Recorder) RunCleanup(ctx context.Context, retention, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-retention)
			deleted, err := r.store.CleanupBefore(ctx, cutoff)
			if err != nil {
				r.log.Error(LogMsgCleanupFailed, "error", err)
				continue
			}
			if deleted > 0 {
				r.log.Info(LogMsgCleanupComplete, "deleted", deleted, "cutoff", cutoff)
			}
		case <-ctx.Done():
			return
		}
	}
}
