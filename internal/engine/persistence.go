package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sweatpet/internal/pet"
	"sweatpet/internal/store"
)

// Store keys, one per record
const (
	KeyPet          = "sweatPetData"
	KeyActivity     = "sweatActivityData"
	KeyAchievements = "sweatAchievements"
)

var allKeys = []string{KeyPet, KeyActivity, KeyAchievements}

// Keys returns the store keys the engine owns
func Keys() []string {
	return append([]string(nil), allKeys...)
}

// Load reads the three records. A missing pet record is created with the
// default values and found is false. A record last saved on an earlier
// calendar day has its daily counter reset and is written back at once;
// so is a record whose malformed fields were replaced by defaults.
func (e *Engine) Load(ctx context.Context) (found bool, err error) {
	e.mu.Lock()
	found, err = e.loadLocked(ctx, true)
	var events []Event
	if e.loaded {
		events = []Event{e.stateEvent()}
	}
	e.mu.Unlock()

	e.publish(events...)
	return found, err
}

// Reload re-reads the records after another process changed them. It never
// writes. Unsaved local changes win: Reload is skipped while the engine is
// dirty.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	if e.dirty {
		e.mu.Unlock()
		e.log.Warn("reload skipped: unsaved changes")
		return nil
	}
	_, err := e.loadLocked(ctx, false)
	var events []Event
	if err == nil {
		events = []Event{e.stateEvent()}
	}
	e.mu.Unlock()

	e.publish(events...)
	return err
}

func (e *Engine) ensureLoaded(ctx context.Context) error {
	if e.loaded {
		return nil
	}
	_, err := e.loadLocked(ctx, true)
	return err
}

// loadLocked replaces memory with the stored records. With repair set, a
// created, rolled-over or repaired pet record is written back.
func (e *Engine) loadLocked(ctx context.Context, repair bool) (bool, error) {
	raw, found, err := e.store.Get(ctx, KeyPet)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", KeyPet, err)
	}
	activity, err := e.loadActivity(ctx)
	if err != nil {
		return false, err
	}
	achievements, err := e.loadAchievements(ctx)
	if err != nil {
		return false, err
	}

	save := false
	var p pet.Pet
	if !found {
		p = pet.NewPet()
		e.log.Info("pet record created")
		save = repair
	} else {
		var fallbacks []string
		p, fallbacks = pet.DecodePet(raw)
		if len(fallbacks) > 0 {
			e.log.Warn("malformed pet fields replaced with defaults", zap.Strings("fields", fallbacks))
			save = repair
		}
		if repair {
			lastSaved := p.LastSaved
			if p.RollOver(e.now(), e.loc) {
				e.log.Info("day rollover", zap.Time("lastSaved", lastSaved))
				save = true
			}
		}
	}

	e.state = State{Pet: p, Activity: activity, Achievements: achievements}
	e.loaded = true
	e.dirty = false

	if save {
		if err := e.persistLocked(ctx, KeyPet); err != nil {
			return found, err
		}
	}
	return found, nil
}

func (e *Engine) loadActivity(ctx context.Context) (pet.WeeklyActivity, error) {
	raw, ok, err := e.store.Get(ctx, KeyActivity)
	if err != nil {
		return pet.WeeklyActivity{}, fmt.Errorf("load %s: %w", KeyActivity, err)
	}
	if !ok {
		return pet.WeeklyActivity{}, nil
	}
	activity, err := pet.ParseWeeklyActivity(raw)
	if err != nil {
		e.log.Warn("malformed activity record replaced", zap.Error(err))
		return pet.WeeklyActivity{}, nil
	}
	return activity, nil
}

func (e *Engine) loadAchievements(ctx context.Context) (pet.AchievementSet, error) {
	raw, ok, err := e.store.Get(ctx, KeyAchievements)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyAchievements, err)
	}
	if !ok {
		return pet.AchievementSet{}, nil
	}
	set, err := pet.ParseAchievementSet(raw)
	if err != nil {
		e.log.Warn("malformed achievements record replaced", zap.Error(err))
		return pet.AchievementSet{}, nil
	}
	return set, nil
}

// persistLocked writes the named records as one batch, or all of them when a
// previous write failed. Writing the pet record stamps lastSaved.
func (e *Engine) persistLocked(ctx context.Context, keys ...string) error {
	if e.dirty {
		keys = allKeys
	}

	entries := make([]store.Entry, 0, len(keys))
	for _, key := range keys {
		if key == KeyPet {
			e.state.Pet.LastSaved = e.stamp()
		}
		value, err := e.encode(key)
		if err != nil {
			return &SaveError{Err: err}
		}
		entries = append(entries, store.Entry{Key: key, Value: value})
	}

	if err := e.store.Put(ctx, entries...); err != nil {
		e.dirty = true
		e.log.Error("save failed", zap.Strings("keys", keys), zap.Error(err))
		return &SaveError{Err: err}
	}
	e.dirty = false
	return nil
}

// stamp is the lastSaved value: UTC, millisecond precision
func (e *Engine) stamp() time.Time {
	return e.now().UTC().Truncate(time.Millisecond)
}

func (e *Engine) encode(key string) ([]byte, error) {
	switch key {
	case KeyPet:
		return pet.EncodePet(e.state.Pet)
	case KeyActivity:
		return json.Marshal(e.state.Activity)
	case KeyAchievements:
		return json.Marshal(e.state.Achievements)
	default:
		return nil, fmt.Errorf("unknown record %q", key)
	}
}
