package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sweatpet/internal/pet"
	"sweatpet/internal/store"
)

// ExportFileName is the default file name for an exported document
const ExportFileName = "sweat_pets_data.json"

// Document is the export/import format. A nil section is absent.
type Document struct {
	PetData          json.RawMessage `json:"petData"`
	ActivityData     json.RawMessage `json:"activityData"`
	AchievementsData json.RawMessage `json:"achievementsData"`
	ExportDate       time.Time       `json:"exportDate"`
}

// Section names used in import errors
const (
	SectionDocument     = "document"
	SectionPet          = "petData"
	SectionActivity     = "activityData"
	SectionAchievements = "achievementsData"
)

// section aliases: canonical name first, then the older names still read
var sectionNames = map[string][]string{
	SectionPet:          {"petData", "stats"},
	SectionActivity:     {"activityData", "weeklyData"},
	SectionAchievements: {"achievementsData", "achievements"},
}

// Encode renders the document with two-space indentation
func (d Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Sections reports which sections are present
func (d Document) Sections() []string {
	var present []string
	if d.PetData != nil {
		present = append(present, SectionPet)
	}
	if d.ActivityData != nil {
		present = append(present, SectionActivity)
	}
	if d.AchievementsData != nil {
		present = append(present, SectionAchievements)
	}
	return present
}

// ParseDocument decodes and validates an export document. Every present
// section is checked against its shape and compacted; nothing is written.
func ParseDocument(data []byte) (Document, error) {
	var doc Document

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &fields); err != nil {
		return doc, malformed(SectionDocument, err)
	}
	if fields == nil {
		return doc, malformed(SectionDocument, errors.New("expected an object"))
	}

	pick := func(section string) json.RawMessage {
		for _, name := range sectionNames[section] {
			if raw, ok := fields[name]; ok && !isNull(raw) {
				return raw
			}
		}
		return nil
	}

	var err error
	if doc.PetData, err = validatePet(pick(SectionPet)); err != nil {
		return Document{}, malformed(SectionPet, err)
	}
	if doc.ActivityData, err = validateSection(pick(SectionActivity), func(b []byte) error {
		_, err := pet.ParseWeeklyActivity(b)
		return err
	}); err != nil {
		return Document{}, malformed(SectionActivity, err)
	}
	if doc.AchievementsData, err = validateSection(pick(SectionAchievements), func(b []byte) error {
		_, err := pet.ParseAchievementSet(b)
		return err
	}); err != nil {
		return Document{}, malformed(SectionAchievements, err)
	}

	if len(doc.Sections()) == 0 {
		return Document{}, malformed(SectionDocument, errors.New("no sections present"))
	}

	if raw, ok := fields["exportDate"]; ok {
		_ = json.Unmarshal(raw, &doc.ExportDate)
	}
	return doc, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func validatePet(raw json.RawMessage) (json.RawMessage, error) {
	return validateSection(raw, func(b []byte) error {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return err
		}
		if fields == nil {
			return errors.New("expected an object")
		}
		return nil
	})
}

func validateSection(raw json.RawMessage, check func([]byte) error) (json.RawMessage, error) {
	if raw == nil {
		return nil, nil
	}
	if err := check(raw); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export returns the stored records as a document. Unsaved changes are
// written first so the document matches memory.
func (e *Engine) Export(ctx context.Context) (Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dirty {
		e.rollOverLocked()
		if err := e.persistLocked(ctx, allKeys...); err != nil {
			return Document{}, err
		}
	}

	doc := Document{ExportDate: e.now().UTC().Truncate(time.Millisecond)}
	targets := []struct {
		key string
		dst *json.RawMessage
	}{
		{KeyPet, &doc.PetData},
		{KeyActivity, &doc.ActivityData},
		{KeyAchievements, &doc.AchievementsData},
	}
	for _, t := range targets {
		raw, ok, err := e.store.Get(ctx, t.key)
		if err != nil {
			return Document{}, fmt.Errorf("export %s: %w", t.key, err)
		}
		if ok {
			*t.dst = raw
		}
	}
	return doc, nil
}

// Import validates the whole document first, then writes every present
// section in one batch, replacing each record wholesale. Absent sections keep
// their stored value, or the unsaved in-memory value when an earlier write
// failed. A malformed document returns an *ImportError and writes nothing.
// Memory is reloaded from the store afterwards.
func (e *Engine) Import(ctx context.Context, data []byte) error {
	doc, err := ParseDocument(data)
	if err != nil {
		e.log.Warn("import rejected", zap.Error(err))
		return err
	}

	e.mu.Lock()
	events, err := e.importLocked(ctx, doc)
	e.mu.Unlock()

	e.publish(events...)
	return err
}

func (e *Engine) importLocked(ctx context.Context, doc Document) ([]Event, error) {
	var entries []store.Entry
	if doc.PetData != nil {
		entries = append(entries, store.Entry{Key: KeyPet, Value: doc.PetData})
	}
	if doc.ActivityData != nil {
		entries = append(entries, store.Entry{Key: KeyActivity, Value: doc.ActivityData})
	}
	if doc.AchievementsData != nil {
		entries = append(entries, store.Entry{Key: KeyAchievements, Value: doc.AchievementsData})
	}

	if e.dirty {
		present := make(map[string]bool, len(entries))
		for _, entry := range entries {
			present[entry.Key] = true
		}
		for _, key := range allKeys {
			if present[key] {
				continue
			}
			if key == KeyPet {
				e.rollOverLocked()
				e.state.Pet.LastSaved = e.stamp()
			}
			value, err := e.encode(key)
			if err != nil {
				return nil, fmt.Errorf("import: %w", err)
			}
			entries = append(entries, store.Entry{Key: key, Value: value})
		}
	}

	if err := e.store.Put(ctx, entries...); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if _, err := e.loadLocked(ctx, false); err != nil {
		return nil, err
	}
	e.log.Info("import applied", zap.Strings("sections", doc.Sections()))
	return []Event{e.stateEvent()}, nil
}
