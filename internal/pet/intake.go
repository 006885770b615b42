package pet

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MaxCounter bounds the step counters: the largest integer a stored JSON
// number carries exactly
const MaxCounter = 1 << 53

// ErrCounterOverflow is returned for an intake that would push a step
// counter past MaxCounter
var ErrCounterOverflow = errors.New("step counter would exceed maximum")

// StatDeltas holds the per-stat gains derived from one intake
type StatDeltas struct {
	Health    float64 `json:"health"`
	Happiness float64 `json:"happiness"`
	Energy    float64 `json:"energy"`
	Strength  float64 `json:"strength"`
	Agility   float64 `json:"agility"`
}

// IntakeResult reports what a single step intake did to the pet
type IntakeResult struct {
	Steps    int           `json:"steps"`
	Deltas   StatDeltas    `json:"deltas"`
	LevelUp  *LevelUp      `json:"levelUp,omitempty"`
	Unlocked []Achievement `json:"unlocked,omitempty"`
}

// Applied reports whether the intake changed anything
func (r IntakeResult) Applied() bool {
	return r.Steps > 0
}

// DeltasFor derives the diminishing-return stat gains for a step count.
// Each gain is capped independently.
func DeltasFor(steps int) StatDeltas {
	if steps <= 0 {
		return StatDeltas{}
	}
	s := float64(steps)
	return StatDeltas{
		Health:    math.Min(HealthIntakeCap, s*HealthPerStep),
		Happiness: math.Min(HappinessIntakeCap, s*HappinessPerStep),
		Energy:    math.Min(EnergyIntakeCap, s*EnergyPerStep),
		Strength:  math.Min(StrengthIntakeCap, s*StrengthPerStep),
		Agility:   math.Min(AgilityIntakeCap, s*AgilityPerStep),
	}
}

// CheckIntake reports whether steps can be added without a counter passing
// MaxCounter
func (p Pet) CheckIntake(steps int) error {
	if steps > MaxCounter-p.TotalSteps || steps > MaxCounter-p.StepsToday {
		return fmt.Errorf("%w: %d steps onto a total of %d", ErrCounterOverflow, steps, p.TotalSteps)
	}
	return nil
}

// AddSteps applies an intake to the pet: counters, bounded stat gains, then
// level re-derivation. Non-positive steps, and steps failing CheckIntake,
// leave the pet untouched.
func (p *Pet) AddSteps(steps int) IntakeResult {
	if steps <= 0 || p.CheckIntake(steps) != nil {
		return IntakeResult{}
	}

	p.StepsToday += steps
	p.TotalSteps += steps

	d := DeltasFor(steps)
	// deltas are non-negative and the stats are known, so Increase cannot fail
	_ = p.Increase(StatHealth, d.Health)
	_ = p.Increase(StatHappiness, d.Happiness)
	_ = p.Increase(StatEnergy, d.Energy)
	_ = p.Increase(StatStrength, d.Strength)
	_ = p.Increase(StatAgility, d.Agility)

	return IntakeResult{
		Steps:   steps,
		Deltas:  d,
		LevelUp: p.CheckLevelUp(),
	}
}

// ResetStepsToday clears the daily counter only
func (p *Pet) ResetStepsToday() {
	p.StepsToday = 0
}

// RollOver clears the daily counter when now falls on a later calendar day
// than LastSaved. Returns true when a reset happened.
func (p *Pet) RollOver(now time.Time, loc *time.Location) bool {
	if !p.LastSaved.IsZero() && SameDay(p.LastSaved, now, loc) {
		return false
	}
	p.StepsToday = 0
	return true
}
