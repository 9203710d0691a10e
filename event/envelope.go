package event

import (
	"encoding/json"
	"strconv"
	"time"
)

// Envelope is one event received from the stream: the event name plus the
// flat key/value payload the vendor sends. Values are numeric strings;
// the typed accessors convert on demand.
//
// Envelopes are immutable records. They are passed by value to conditions
// and actions, and the payload map must not be modified.
type Envelope struct {
	// Name is the event_name payload field, e.g. "Death".
	Name string
	// Payload holds every field of the event as sent.
	Payload map[string]string
	// Timestamp is the event time from the payload, in UTC.
	Timestamp time.Time
	// Raw is the payload object exactly as received.
	Raw json.RawMessage
}

// String returns the payload field for key, or "" when absent.
func (e Envelope) String(key string) string {
	return e.Payload[key]
}

// Int64 converts the payload field for key. Absent or malformed fields
// return 0; use String when the distinction matters.
func (e Envelope) Int64(key string) int64 {
	v, err := strconv.ParseInt(e.Payload[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Bool converts the payload field for key from the vendor's "0"/"1" form.
func (e Envelope) Bool(key string) bool {
	return e.Payload[key] == "1"
}

// CharacterID returns the character the event happened to.
func (e Envelope) CharacterID() int64 { return e.Int64("character_id") }

// AttackerCharacterID returns the acting character for Death and
// VehicleDestroy events, 0 otherwise.
func (e Envelope) AttackerCharacterID() int64 { return e.Int64("attacker_character_id") }

// WorldID returns the world (server) the event happened on.
func (e Envelope) WorldID() int64 { return e.Int64("world_id") }

// ZoneID returns the zone (continent) the event happened on.
func (e Envelope) ZoneID() int64 { return e.Int64("zone_id") }

// ExperienceID returns the experience type for GainExperience events.
func (e Envelope) ExperienceID() int64 { return e.Int64("experience_id") }

// decodeEnvelope builds an Envelope from a serviceMessage payload object.
func decodeEnvelope(raw json.RawMessage) (Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Envelope{}, err
	}
	payload := make(map[string]string, len(fields))
	for k, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			// The vendor sends strings everywhere, but tolerate bare
			// numbers and booleans rather than dropping the event.
			s = string(v)
		}
		payload[k] = s
	}
	e := Envelope{
		Name:    payload["event_name"],
		Payload: payload,
		Raw:     raw,
	}
	if secs, err := strconv.ParseInt(payload["timestamp"], 10, 64); err == nil {
		e.Timestamp = time.Unix(secs, 0).UTC()
	}
	return e, nil
}
