package pet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DayNames labels WeeklyActivity slots
var DayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeeklyActivity holds cumulative steps per weekday, Monday at index 0.
// Stored as a plain 7-element array.
type WeeklyActivity [DaysPerWeek]int

// DayIndex maps a time to its WeeklyActivity slot in loc
func DayIndex(t time.Time, loc *time.Location) int {
	// time.Weekday is Sunday=0
	return (int(t.In(loc).Weekday()) + 6) % DaysPerWeek
}

// Record adds steps to the slot for t
func (w *WeeklyActivity) Record(t time.Time, loc *time.Location, steps int) {
	if steps <= 0 {
		return
	}
	w[DayIndex(t, loc)] += steps
}

// Total sums the week
func (w WeeklyActivity) Total() int {
	total := 0
	for _, v := range w {
		total += v
	}
	return total
}

// Max returns the busiest day's count
func (w WeeklyActivity) Max() int {
	best := 0
	for _, v := range w {
		best = max(best, v)
	}
	return best
}

// UnmarshalJSON accepts the array form or the legacy {"weeklySteps": [...]} form
func (w *WeeklyActivity) UnmarshalJSON(data []byte) error {
	parsed, err := ParseWeeklyActivity(data)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWeeklyActivity decodes a stored or imported activity document. Every
// entry must be a non-negative whole number and there must be exactly seven.
func ParseWeeklyActivity(data []byte) (WeeklyActivity, error) {
	var w WeeklyActivity
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return w, fmt.Errorf("activity: empty document")
	}

	var values []float64
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &values); err != nil {
			return w, fmt.Errorf("activity: %w", err)
		}
	case '{':
		var legacy struct {
			WeeklySteps []float64 `json:"weeklySteps"`
		}
		if err := json.Unmarshal(data, &legacy); err != nil {
			return w, fmt.Errorf("activity: %w", err)
		}
		if legacy.WeeklySteps == nil {
			return w, fmt.Errorf("activity: missing weeklySteps")
		}
		values = legacy.WeeklySteps
	default:
		return w, fmt.Errorf("activity: expected array or object")
	}

	if len(values) != DaysPerWeek {
		return w, fmt.Errorf("activity: want %d days, got %d", DaysPerWeek, len(values))
	}
	for i, v := range values {
		if v < 0 || v != math.Trunc(v) {
			return w, fmt.Errorf("activity: day %d: invalid step count %v", i, v)
		}
		w[i] = int(v)
	}
	return w, nil
}
