package pet

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNegativeAmount is returned when a stat increase is given a negative or NaN amount
	ErrNegativeAmount = errors.New("stat increase amount must be non-negative")
	// ErrUnknownStat is returned for a stat name outside the five pet stats
	ErrUnknownStat = errors.New("unknown stat")
)

// Stat names one of the five bounded pet attributes
type Stat string

const (
	StatHealth    Stat = "health"
	StatHappiness Stat = "happiness"
	StatEnergy    Stat = "energy"
	StatStrength  Stat = "strength"
	StatAgility   Stat = "agility"
)

// Stats lists the pet stats in display order
var Stats = []Stat{StatHealth, StatHappiness, StatEnergy, StatStrength, StatAgility}

// Pet is the durable pet record. Field names match the stored JSON document.
type Pet struct {
	Health     float64   `json:"health"`
	Happiness  float64   `json:"happiness"`
	Energy     float64   `json:"energy"`
	Strength   float64   `json:"strength"`
	Agility    float64   `json:"agility"`
	Level      int       `json:"level"`
	StepsToday int       `json:"stepsToday"`
	TotalSteps int       `json:"totalSteps"`
	LastSaved  time.Time `json:"lastSaved"`
}

// NewPet returns a pet with the documented starting values
func NewPet() Pet {
	return Pet{
		Health:    DefaultHealth,
		Happiness: DefaultHappiness,
		Energy:    DefaultEnergy,
		Strength:  DefaultStrength,
		Agility:   DefaultAgility,
		Level:     MinLevel,
	}
}

// Get returns the current value of a stat
func (p *Pet) Get(s Stat) (float64, error) {
	field, err := p.field(s)
	if err != nil {
		return 0, err
	}
	return *field, nil
}

// Increase raises a stat by amount, saturating at MaxStat
func (p *Pet) Increase(s Stat, amount float64) error {
	if amount < 0 || math.IsNaN(amount) {
		return fmt.Errorf("%w: %v", ErrNegativeAmount, amount)
	}
	field, err := p.field(s)
	if err != nil {
		return err
	}
	*field = math.Min(MaxStat, *field+amount)
	return nil
}

func (p *Pet) field(s Stat) (*float64, error) {
	switch s {
	case StatHealth:
		return &p.Health, nil
	case StatHappiness:
		return &p.Happiness, nil
	case StatEnergy:
		return &p.Energy, nil
	case StatStrength:
		return &p.Strength, nil
	case StatAgility:
		return &p.Agility, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStat, string(s))
	}
}

// Normalize clamps every field into its valid range and re-derives the level
// from TotalSteps. Used when reading records written by other versions.
func (p *Pet) Normalize() {
	for _, s := range Stats {
		field, _ := p.field(s)
		*field = clampStat(*field)
	}
	p.StepsToday = max(p.StepsToday, 0)
	p.TotalSteps = max(p.TotalSteps, 0)
	p.Level = LevelFor(p.TotalSteps)
}

// Stage returns the evolution stage (1..StageCount) for the pet's level
func (p *Pet) Stage() int {
	return StageFor(p.Level)
}

// StageFor maps a level to an evolution stage: 1-20 -> 1, 21-40 -> 2, ... 81-100 -> 5
func StageFor(level int) int {
	if level <= MinLevel {
		return 1
	}
	return min((level-1)/LevelsPerStage+1, StageCount)
}

// AllStatsMaxed reports whether every stat sits at MaxStat
func (p *Pet) AllStatsMaxed() bool {
	for _, s := range Stats {
		if v, _ := p.Get(s); v < MaxStat {
			return false
		}
	}
	return true
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func clampStat(v float64) float64 {
	if math.IsNaN(v) {
		return MinStat
	}
	return math.Max(MinStat, math.Min(MaxStat, v))
}
