package pet

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// EncodePet serializes the pet record in its stored form
func EncodePet(p Pet) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePet reads a stored pet record defensively. Every field is decoded on
// its own; a missing or malformed field falls back to its default and is
// named in the returned list. A document that is not an object yields a new
// pet. The result is normalized.
func DecodePet(data []byte) (Pet, []string) {
	p := NewPet()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &fields); err != nil || fields == nil {
		return p, []string{"record"}
	}

	var fallbacks []string
	number := func(name string, dst *float64) {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			fallbacks = append(fallbacks, name)
			return
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			fallbacks = append(fallbacks, name)
			return
		}
		*dst = v
	}
	counter := func(name string, dst *int) {
		v := float64(*dst)
		number(name, &v)
		if math.Abs(v) > MaxCounter {
			fallbacks = append(fallbacks, name)
			return
		}
		*dst = int(math.Floor(v))
	}

	number("health", &p.Health)
	number("happiness", &p.Happiness)
	number("energy", &p.Energy)
	number("strength", &p.Strength)
	number("agility", &p.Agility)
	counter("level", &p.Level)
	counter("stepsToday", &p.StepsToday)
	counter("totalSteps", &p.TotalSteps)

	if raw, ok := fields["lastSaved"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				p.LastSaved = t
			} else {
				fallbacks = append(fallbacks, "lastSaved")
			}
		} else {
			fallbacks = append(fallbacks, "lastSaved")
		}
	} else {
		fallbacks = append(fallbacks, "lastSaved")
	}

	p.Normalize()
	return p, fallbacks
}
