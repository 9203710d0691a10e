package event

import (
	"slices"
	"strconv"
)

// subscribeMessage is the full-replacement subscription the stream
// protocol expects. There is no incremental add or remove: every push
// carries the complete desired set, and reconnects start from nothing.
type subscribeMessage struct {
	Service    string   `json:"service"`
	Action     string   `json:"action"`
	Characters []string `json:"characters"`
	Worlds     []string `json:"worlds"`
	EventNames []string `json:"eventNames"`
	LogicalAnd bool     `json:"logicalAndCharactersWithWorlds,omitempty"`
}

// clearSubscribeMessage removes subscriptions server-side. With All set the
// session is wiped clean.
type clearSubscribeMessage struct {
	Service string `json:"service"`
	Action  string `json:"action"`
	All     string `json:"all,omitempty"`
}

func clearAllMessage() clearSubscribeMessage {
	return clearSubscribeMessage{
		Service: ServiceEvent,
		Action:  ActionClearSubscribe,
		All:     "true",
	}
}

// computeSubscription derives the subscription covering every trigger:
// the union of their event names, characters and worlds. A trigger without
// a character or world filter widens that list to "all".
//
// Returns nil when no triggers are registered.
func computeSubscription(triggers []*Trigger) *subscribeMessage {
	if len(triggers) == 0 {
		return nil
	}

	events := make(map[string]struct{})
	characters := make(map[int64]struct{})
	worlds := make(map[int64]struct{})
	allCharacters := false
	allWorlds := false
	logicalAnd := false

	for _, t := range triggers {
		for _, name := range t.events {
			events[name] = struct{}{}
		}
		if len(t.characters) == 0 {
			allCharacters = true
		} else {
			for _, id := range t.characters {
				characters[id] = struct{}{}
			}
		}
		if len(t.worlds) == 0 {
			allWorlds = true
		} else {
			for _, id := range t.worlds {
				worlds[id] = struct{}{}
			}
		}
		if len(t.characters) > 0 && len(t.worlds) > 0 {
			logicalAnd = true
		}
	}

	msg := &subscribeMessage{
		Service:    ServiceEvent,
		Action:     ActionSubscribe,
		EventNames: sortedNames(events),
		Characters: idList(characters, allCharacters),
		Worlds:     idList(worlds, allWorlds),
		LogicalAnd: logicalAnd,
	}
	return msg
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// idList renders a sorted ID list, or ["all"] when any trigger was
// unfiltered.
func idList(set map[int64]struct{}, all bool) []string {
	if all {
		return []string{SubscriptionAllKeyword}
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

// equal reports whether two subscriptions request the same server state.
// Field lists are sorted at construction, so slice equality suffices.
func (m *subscribeMessage) equal(other *subscribeMessage) bool {
	if m == nil || other == nil {
		return m == other
	}
	return slices.Equal(m.EventNames, other.EventNames) &&
		slices.Equal(m.Characters, other.Characters) &&
		slices.Equal(m.Worlds, other.Worlds) &&
		m.LogicalAnd == other.LogicalAnd
}
