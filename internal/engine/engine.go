// Package engine owns the pet state for one process: it loads the three
// records from a store, applies every mutation under one lock and writes the
// result back as a single batch.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sweatpet/internal/pet"
	"sweatpet/internal/store"
)

// State is a copy of everything the engine holds
type State struct {
	Pet          pet.Pet            `json:"pet"`
	Activity     pet.WeeklyActivity `json:"activity"`
	Achievements pet.AchievementSet `json:"achievements"`
}

// Stage returns the evolution stage for the pet's level
func (s State) Stage() int {
	return pet.StageFor(s.Pet.Level)
}

// Progress reports the pet's position within its level
func (s State) Progress() pet.Progress {
	return pet.ProgressFor(s.Pet.Level, s.Pet.TotalSteps)
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocation sets the time zone that defines a calendar day
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogger sets the logger; nil keeps the no-op logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

type Engine struct {
	mu     sync.Mutex
	store  store.Store
	now    func() time.Time
	loc    *time.Location
	log    *zap.Logger
	state  State
	loaded bool
	dirty  bool

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		now:   time.Now,
		loc:   time.Local,
		log:   zap.NewNop(),
		state: State{Pet: pet.NewPet(), Achievements: pet.AchievementSet{}},
		subs:  make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the time zone used for day boundaries
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Snapshot returns a copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	return State{
		Pet:          e.state.Pet,
		Activity:     e.state.Activity,
		Achievements: e.state.Achievements.Clone(),
	}
}

// Dirty reports whether the last write failed and memory is ahead of the store
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// AddSteps applies an intake: day rollover, stat deltas, leveling, weekly
// activity and achievements, then one batch write of all three records.
// steps <= 0 is a no-op and does not touch the store.
func (e *Engine) AddSteps(ctx context.Context, steps int) (pet.IntakeResult, error) {
	if steps <= 0 {
		return pet.IntakeResult{}, nil
	}

	e.mu.Lock()
	result, events, err := e.addStepsLocked(ctx, steps)
	e.mu.Unlock()

	e.publish(events...)
	return result, err
}

func (e *Engine) addStepsLocked(ctx context.Context, steps int) (pet.IntakeResult, []Event, error) {
	if err := e.ensureLoaded(ctx); err != nil {
		return pet.IntakeResult{}, nil, err
	}

	now := e.now()
	e.rollOverLocked()

	if err := e.state.Pet.CheckIntake(steps); err != nil {
		e.log.Warn("intake rejected", zap.Int("steps", steps), zap.Error(err))
		return pet.IntakeResult{}, nil, err
	}

	result := e.state.Pet.AddSteps(steps)
	e.state.Activity.Record(now, e.loc, steps)
	result.Unlocked = e.state.Achievements.Unlock(e.state.Pet)

	e.log.Debug("steps added",
		zap.Int("steps", steps),
		zap.Int("totalSteps", e.state.Pet.TotalSteps),
		zap.Int("level", e.state.Pet.Level))
	e.logProgress(result.LevelUp, result.Unlocked)

	err := e.persistLocked(ctx, allKeys...)
	return result, e.intakeEvents(result.LevelUp, result.Unlocked), err
}

// ResetStepsToday zeroes today's counter and saves the pet record
func (e *Engine) ResetStepsToday(ctx context.Context) error {
	e.mu.Lock()
	events, err := func() ([]Event, error) {
		if err := e.ensureLoaded(ctx); err != nil {
			return nil, err
		}
		e.rollOverLocked()
		e.state.Pet.ResetStepsToday()
		err := e.persistLocked(ctx, KeyPet)
		return []Event{e.stateEvent()}, err
	}()
	e.mu.Unlock()

	e.publish(events...)
	return err
}

// Increase raises one stat through the bounded increase and saves. A
// rejected amount or stat leaves everything untouched.
func (e *Engine) Increase(ctx context.Context, stat pet.Stat, amount float64) error {
	e.mu.Lock()
	events, err := e.increaseLocked(ctx, stat, amount)
	e.mu.Unlock()

	e.publish(events...)
	return err
}

func (e *Engine) increaseLocked(ctx context.Context, stat pet.Stat, amount float64) ([]Event, error) {
	if err := e.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if err := e.state.Pet.Increase(stat, amount); err != nil {
		return nil, err
	}
	e.rollOverLocked()
	unlocked := e.state.Achievements.Unlock(e.state.Pet)
	e.logProgress(nil, unlocked)

	err := e.persistLocked(ctx, KeyPet, KeyAchievements)
	return e.intakeEvents(nil, unlocked), err
}

// Care performs a care action: CareBoost on the action's stat
func (e *Engine) Care(ctx context.Context, action pet.CareAction) error {
	stat := action.Stat()
	if stat == "" {
		return fmt.Errorf("unknown care action %q", string(action))
	}
	return e.Increase(ctx, stat, pet.CareBoost)
}

// Save writes all three records from memory. Used to retry after a failed write.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureLoaded(ctx); err != nil {
		return err
	}
	e.rollOverLocked()
	return e.persistLocked(ctx, allKeys...)
}

// ResetAll deletes all three records and returns memory to a new pet.
// Calling it again is harmless.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.mu.Lock()
	events, err := func() ([]Event, error) {
		if err := e.store.Delete(ctx, allKeys...); err != nil {
			return nil, fmt.Errorf("reset all: %w", err)
		}
		e.state = State{Pet: pet.NewPet(), Achievements: pet.AchievementSet{}}
		e.loaded = true
		e.dirty = false
		e.log.Info("all records reset")
		return []Event{e.stateEvent()}, nil
	}()
	e.mu.Unlock()

	e.publish(events...)
	return err
}

// rollOverLocked zeroes today's steps when the local day changed since the
// pet was last saved. Every path that stamps lastSaved calls it first.
func (e *Engine) rollOverLocked() {
	lastSaved := e.state.Pet.LastSaved
	if e.state.Pet.RollOver(e.now(), e.loc) {
		e.log.Info("day rollover", zap.Time("lastSaved", lastSaved))
	}
}

func (e *Engine) logProgress(up *pet.LevelUp, unlocked []pet.Achievement) {
	if up != nil {
		e.log.Info("level up",
			zap.Int("from", up.From),
			zap.Int("to", up.To),
			zap.Int("levels", up.Levels()))
	}
	for _, a := range unlocked {
		e.log.Info("achievement unlocked", zap.String("id", a.ID))
	}
}
