package event

import (
	"context"
	"testing"
)

func deathEnvelope(characterID, attackerID, worldID string) Envelope {
	return Envelope{
		Name: Death,
		Payload: map[string]string{
			"event_name":            Death,
			"character_id":          characterID,
			"attacker_character_id": attackerID,
			"world_id":              worldID,
		},
	}
}

func TestTriggerMatchesEventName(t *testing.T) {
	tr := NewTrigger(Death, BattleRankUp)

	if !tr.matches(deathEnvelope("1", "2", "13")) {
		t.Error("Expected Death envelope to match")
	}
	if !tr.matches(Envelope{Name: BattleRankUp, Payload: map[string]string{}}) {
		t.Error("Expected BattleRankUp envelope to match")
	}
	if tr.matches(Envelope{Name: PlayerLogin, Payload: map[string]string{}}) {
		t.Error("Expected PlayerLogin envelope not to match")
	}
}

func TestTriggerMatchesScopedExperience(t *testing.T) {
	revive := Envelope{
		Name: GainExperience,
		Payload: map[string]string{
			"event_name":    GainExperience,
			"experience_id": "7",
		},
	}
	repair := Envelope{
		Name: GainExperience,
		Payload: map[string]string{
			"event_name":    GainExperience,
			"experience_id": "34",
		},
	}

	scoped := NewTrigger(GainExperienceByID(7))
	if !scoped.matches(revive) {
		t.Error("Expected scoped trigger to match its experience ID")
	}
	if scoped.matches(repair) {
		t.Error("Expected scoped trigger not to match another experience ID")
	}

	plain := NewTrigger(GainExperience)
	if !plain.matches(revive) || !plain.matches(repair) {
		t.Error("Expected unscoped trigger to match any experience ID")
	}
}

func TestTriggerCharacterFilter(t *testing.T) {
	tr := NewTrigger(Death).LimitCharacters(101, 102)

	if !tr.matches(deathEnvelope("101", "999", "13")) {
		t.Error("Expected victim match to pass")
	}
	if !tr.matches(deathEnvelope("999", "102", "13")) {
		t.Error("Expected attacker match to pass")
	}
	if tr.matches(deathEnvelope("999", "998", "13")) {
		t.Error("Expected unrelated characters not to match")
	}
	if tr.matches(Envelope{Name: Death, Payload: map[string]string{}}) {
		t.Error("Expected envelope without character fields not to match")
	}
}

func TestTriggerWorldFilter(t *testing.T) {
	tr := NewTrigger(Death).LimitWorlds(13)

	if !tr.matches(deathEnvelope("1", "2", "13")) {
		t.Error("Expected world 13 to match")
	}
	if tr.matches(deathEnvelope("1", "2", "17")) {
		t.Error("Expected world 17 not to match")
	}
}

func TestTriggerCombinedFilters(t *testing.T) {
	tr := NewTrigger(Death).LimitCharacters(101).LimitWorlds(13)

	if !tr.matches(deathEnvelope("101", "2", "13")) {
		t.Error("Expected character and world match to pass")
	}
	if tr.matches(deathEnvelope("101", "2", "17")) {
		t.Error("Expected wrong world to block a character match")
	}
	if tr.matches(deathEnvelope("999", "998", "13")) {
		t.Error("Expected wrong character to block a world match")
	}
}

func TestTriggerChaining(t *testing.T) {
	action := func(ctx context.Context, e Envelope) {}
	tr := NewTrigger(Death).
		AddEvents(BattleRankUp).
		LimitCharacters(101).
		LimitWorlds(13).
		AddCondition(CondValue(true)).
		SetAction(action)

	events := tr.Events()
	if len(events) != 2 || events[0] != Death || events[1] != BattleRankUp {
		t.Errorf("Expected events [Death BattleRankUp], got %v", events)
	}

	// Events returns a copy; mutating it must not affect the trigger.
	events[0] = PlayerLogin
	if tr.Events()[0] != Death {
		t.Error("Expected Events to return an independent copy")
	}

	if tr.ID().String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("Expected a non-zero trigger ID")
	}
}

func TestCondFunc(t *testing.T) {
	headshot := CondFunc(func(e Envelope) bool { return e.Bool("is_headshot") })

	if !headshot.Test(Envelope{Payload: map[string]string{"is_headshot": "1"}}) {
		t.Error("Expected condition to pass")
	}
	if headshot.Test(Envelope{Payload: map[string]string{"is_headshot": "0"}}) {
		t.Error("Expected condition to fail")
	}
}

func TestCondValue(t *testing.T) {
	if !CondValue(true).Test(Envelope{}) {
		t.Error("Expected CondValue(true) to pass")
	}
	if CondValue(false).Test(Envelope{}) {
		t.Error("Expected CondValue(false) to fail")
	}
}

func TestGainExperienceByID(t *testing.T) {
	if got := GainExperienceByID(7); got != "GainExperience_experience_id_7" {
		t.Errorf("Expected 'GainExperience_experience_id_7', got %q", got)
	}
}

func TestExperienceIDFromName(t *testing.T) {
	id, ok := ExperienceIDFromName("GainExperience_experience_id_7")
	if !ok || id != 7 {
		t.Errorf("Expected (7, true), got (%d, %v)", id, ok)
	}

	if _, ok := ExperienceIDFromName(Death); ok {
		t.Error("Expected plain event name not to parse")
	}
	if _, ok := ExperienceIDFromName("GainExperience_experience_id_abc"); ok {
		t.Error("Expected non-numeric suffix not to parse")
	}
	if _, ok := ExperienceIDFromName(GainExperience); ok {
		t.Error("Expected bare GainExperience not to parse")
	}
}

func TestIsWorldEvent(t *testing.T) {
	if !IsWorldEvent(ContinentLock) || !IsWorldEvent(FacilityControl) || !IsWorldEvent(MetagameEvent) {
		t.Error("Expected world-scoped names to report true")
	}
	if IsWorldEvent(Death) || IsWorldEvent(PlayerLogin) {
		t.Error("Expected character-scoped names to report false")
	}
}
