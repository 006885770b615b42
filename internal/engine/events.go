package engine

import (
	"time"

	"github.com/google/uuid"

	"sweatpet/internal/pet"
)

// EventType names what happened to the pet
type EventType string

const (
	EventLevelUp             EventType = "level_up"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventStateChanged        EventType = "state_changed"
)

// Event is delivered to subscribers after a mutation completes
type Event struct {
	ID          string           `json:"id"`
	Type        EventType        `json:"type"`
	Time        time.Time        `json:"time"`
	LevelUp     *pet.LevelUp     `json:"levelUp,omitempty"`
	Achievement *pet.Achievement `json:"achievement,omitempty"`
	State       *State           `json:"state,omitempty"`
}

func (e *Engine) newEvent(typ EventType) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: typ,
		Time: e.now().UTC(),
	}
}

// intakeEvents builds the events for an intake or increase. Caller holds e.mu.
func (e *Engine) intakeEvents(up *pet.LevelUp, unlocked []pet.Achievement) []Event {
	var events []Event
	if up != nil {
		ev := e.newEvent(EventLevelUp)
		ev.LevelUp = up
		events = append(events, ev)
	}
	for i := range unlocked {
		ev := e.newEvent(EventAchievementUnlocked)
		ev.Achievement = &unlocked[i]
		events = append(events, ev)
	}
	return append(events, e.stateEvent())
}

// stateEvent carries a snapshot. Caller holds e.mu.
func (e *Engine) stateEvent() Event {
	ev := e.newEvent(EventStateChanged)
	snap := e.snapshotLocked()
	ev.State = &snap
	return ev
}

// Subscribe registers fn for every following event. Handlers run on the
// mutating goroutine after the engine lock is released, so they may call
// back into the engine. The returned func removes the subscription.
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn

	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) publish(events ...Event) {
	if len(events) == 0 {
		return
	}

	e.subsMu.Lock()
	handlers := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		handlers = append(handlers, fn)
	}
	e.subsMu.Unlock()

	for _, ev := range events {
		for _, fn := range handlers {
			fn(ev)
		}
	}
}
