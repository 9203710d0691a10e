package event

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"event_name":"Death","character_id":"5428010618035323201","attacker_character_id":"5428010618020694593","attacker_weapon_id":"26001","is_headshot":"1","timestamp":"1650000000","world_id":"13","zone_id":"2"}`)

	e, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decodeEnvelope returned error: %v", err)
	}

	if e.Name != Death {
		t.Errorf("Expected name %q, got %q", Death, e.Name)
	}
	if e.CharacterID() != 5428010618035323201 {
		t.Errorf("Expected character ID 5428010618035323201, got %d", e.CharacterID())
	}
	if e.AttackerCharacterID() != 5428010618020694593 {
		t.Errorf("Expected attacker ID 5428010618020694593, got %d", e.AttackerCharacterID())
	}
	if !e.Bool("is_headshot") {
		t.Error("Expected is_headshot to be true")
	}
	if e.WorldID() != 13 {
		t.Errorf("Expected world ID 13, got %d", e.WorldID())
	}
	if e.ZoneID() != 2 {
		t.Errorf("Expected zone ID 2, got %d", e.ZoneID())
	}
	if e.String("attacker_weapon_id") != "26001" {
		t.Errorf("Expected weapon ID '26001', got %q", e.String("attacker_weapon_id"))
	}

	want := time.Unix(1650000000, 0).UTC()
	if !e.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, e.Timestamp)
	}
	if string(e.Raw) != string(raw) {
		t.Error("Expected Raw to carry the payload as received")
	}
}

func TestDecodeEnvelopeNonStringValues(t *testing.T) {
	raw := json.RawMessage(`{"event_name":"FacilityControl","world_id":13,"facility_id":222280}`)

	e, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decodeEnvelope returned error: %v", err)
	}

	if e.WorldID() != 13 {
		t.Errorf("Expected world ID 13 from bare number, got %d", e.WorldID())
	}
	if e.Int64("facility_id") != 222280 {
		t.Errorf("Expected facility ID 222280, got %d", e.Int64("facility_id"))
	}
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	if _, err := decodeEnvelope(json.RawMessage(`[1,2,3]`)); err == nil {
		t.Error("Expected error for non-object payload")
	}
}

func TestEnvelopeMissingFields(t *testing.T) {
	e := Envelope{Name: PlayerLogin, Payload: map[string]string{}}

	if e.String("character_id") != "" {
		t.Errorf("Expected empty string for missing field, got %q", e.String("character_id"))
	}
	if e.Int64("character_id") != 0 {
		t.Errorf("Expected 0 for missing field, got %d", e.Int64("character_id"))
	}
	if e.Bool("is_headshot") {
		t.Error("Expected false for missing field")
	}
	if e.AttackerCharacterID() != 0 {
		t.Errorf("Expected 0 attacker ID, got %d", e.AttackerCharacterID())
	}
}

func TestEnvelopeMalformedNumber(t *testing.T) {
	e := Envelope{Payload: map[string]string{"world_id": "NULL"}}

	if e.WorldID() != 0 {
		t.Errorf("Expected 0 for unparseable field, got %d", e.WorldID())
	}
	if e.String("world_id") != "NULL" {
		t.Errorf("Expected raw string to survive, got %q", e.String("world_id"))
	}
}
