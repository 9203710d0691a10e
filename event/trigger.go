package event

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// Action is the callback a trigger runs when it fires. Synchronous actions
// run inline on the dispatch loop and block later triggers for the same
// envelope; asynchronous actions run on their own goroutine. The context
// is cancelled when the client closes.
type Action func(ctx context.Context, e Envelope)

// Trigger links a set of events to an action, optionally gated by
// conditions and narrowed to specific characters or worlds.
//
// Configure a trigger fully before registering it. After AddTrigger the
// dispatch loop reads it concurrently and further mutation races.
type Trigger struct {
	// Name optionally identifies the trigger for RemoveTriggerByName.
	// When set it must be unique within a client.
	Name string

	// Synchronous makes the action run inline on the dispatch loop.
	// Events received while it runs queue behind it, so inline actions
	// must be quick. The default schedules actions on their own goroutine.
	Synchronous bool

	// SingleShot removes the trigger after its first fire.
	SingleShot bool

	id         uuid.UUID
	events     []string
	characters []int64
	worlds     []int64
	conditions []Condition
	action     Action
}

// NewTrigger creates a trigger listening for the given event names.
func NewTrigger(events ...string) *Trigger {
	return &Trigger{
		id:     uuid.New(),
		events: events,
	}
}

// ID returns the unique identifier assigned at creation, used in logs.
func (t *Trigger) ID() uuid.UUID { return t.id }

// Events returns the event names the trigger listens for.
func (t *Trigger) Events() []string { return slices.Clone(t.events) }

// AddEvents extends the set of event names the trigger listens for.
func (t *Trigger) AddEvents(events ...string) *Trigger {
	t.events = append(t.events, events...)
	return t
}

// LimitCharacters restricts the trigger to events involving the given
// characters, as victim or attacker. No limit means all characters.
func (t *Trigger) LimitCharacters(ids ...int64) *Trigger {
	t.characters = append(t.characters, ids...)
	return t
}

// LimitWorlds restricts the trigger to events from the given worlds.
func (t *Trigger) LimitWorlds(ids ...int64) *Trigger {
	t.worlds = append(t.worlds, ids...)
	return t
}

// AddCondition appends a condition. Conditions are evaluated in the order
// added and stop at the first failure.
func (t *Trigger) AddCondition(conds ...Condition) *Trigger {
	t.conditions = append(t.conditions, conds...)
	return t
}

// SetAction sets the callback to run when the trigger fires. A trigger
// without an action still contributes to the stream subscription.
func (t *Trigger) SetAction(a Action) *Trigger {
	t.action = a
	return t
}

// matches reports whether the envelope passes the trigger's event name,
// character and world filters. Conditions are evaluated separately by the
// dispatch loop.
func (t *Trigger) matches(e Envelope) bool {
	if !t.matchesEvent(e) {
		return false
	}
	if len(t.characters) > 0 {
		char := e.CharacterID()
		attacker := e.AttackerCharacterID()
		if !slices.Contains(t.characters, char) && (attacker == 0 || !slices.Contains(t.characters, attacker)) {
			return false
		}
	}
	if len(t.worlds) > 0 && !slices.Contains(t.worlds, e.WorldID()) {
		return false
	}
	return true
}

// matchesEvent handles the experience-id-scoped GainExperience variants:
// the stream delivers their payloads under the plain GainExperience name.
func (t *Trigger) matchesEvent(e Envelope) bool {
	for _, name := range t.events {
		if name == e.Name {
			return true
		}
		if id, ok := ExperienceIDFromName(name); ok {
			if e.Name == GainExperience && e.ExperienceID() == id {
				return true
			}
		}
	}
	return false
}
