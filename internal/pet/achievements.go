package pet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Achievement ids
const (
	AchievementSteps1K    = "steps-1k"
	AchievementSteps10K   = "steps-10k"
	AchievementSteps100K  = "steps-100k"
	AchievementLevel10    = "level-10"
	AchievementLevel25    = "level-25"
	AchievementLevel50    = "level-50"
	AchievementLevel75    = "level-75"
	AchievementLevel100   = "level-100"
	AchievementMaxedStats = "max-stats"
)

// Achievement is a catalog entry: an id, its display data and the condition
// that unlocks it
type Achievement struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Icon      string           `json:"icon"`
	Condition func(p Pet) bool `json:"-"`
}

func stepsAchievement(id, name, icon string, steps int) Achievement {
	return Achievement{
		ID:   id,
		Name: name,
		Icon: icon,
		Condition: func(p Pet) bool {
			return p.TotalSteps >= steps
		},
	}
}

func levelAchievement(id, name, icon string, level int) Achievement {
	return Achievement{
		ID:   id,
		Name: name,
		Icon: icon,
		Condition: func(p Pet) bool {
			return p.Level >= level
		},
	}
}

// Catalog returns every achievement in display order
func Catalog() []Achievement {
	return []Achievement{
		stepsAchievement(AchievementSteps1K, "1,000 Steps", "👣", 1_000),
		stepsAchievement(AchievementSteps10K, "10,000 Steps", "🏃", 10_000),
		stepsAchievement(AchievementSteps100K, "100,000 Steps", "🏆", 100_000),
		levelAchievement(AchievementLevel10, "Level 10", "⭐", 10),
		levelAchievement(AchievementLevel25, "Level 25", "🌟", 25),
		levelAchievement(AchievementLevel50, "Level 50", "💫", 50),
		levelAchievement(AchievementLevel75, "Level 75", "✨", 75),
		levelAchievement(AchievementLevel100, "Level 100", "🎖️", 100),
		{
			ID:   AchievementMaxedStats,
			Name: "Peak Condition",
			Icon: "💯",
			Condition: func(p Pet) bool {
				return p.AllStatsMaxed()
			},
		},
	}
}

// AchievementSet holds unlocked achievement ids. It is stored as an object
// of id -> true; a plain array of ids is accepted when reading.
type AchievementSet map[string]bool

// Has reports whether an achievement is unlocked
func (s AchievementSet) Has(id string) bool {
	return s[id]
}

// IDs returns the unlocked ids in sorted order
func (s AchievementSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id, ok := range s {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy
func (s AchievementSet) Clone() AchievementSet {
	out := make(AchievementSet, len(s))
	for id, ok := range s {
		if ok {
			out[id] = true
		}
	}
	return out
}

// Unlock adds every catalog entry the pet now satisfies and returns the
// newly unlocked ones in catalog order. Entries are never removed.
func (s AchievementSet) Unlock(p Pet) []Achievement {
	var unlocked []Achievement
	for _, a := range Catalog() {
		if s[a.ID] || !a.Condition(p) {
			continue
		}
		s[a.ID] = true
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// UnmarshalJSON accepts {"id": true, ...} or ["id", ...]
func (s *AchievementSet) UnmarshalJSON(data []byte) error {
	set, err := ParseAchievementSet(data)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// ParseAchievementSet decodes a stored or imported achievement set
func ParseAchievementSet(data []byte) (AchievementSet, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("achievements: empty document")
	}

	set := AchievementSet{}
	switch data[0] {
	case '{':
		var flags map[string]bool
		if err := json.Unmarshal(data, &flags); err != nil {
			return nil, fmt.Errorf("achievements: %w", err)
		}
		for id, ok := range flags {
			if ok {
				set[id] = true
			}
		}
	case '[':
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("achievements: %w", err)
		}
		for _, id := range ids {
			set[id] = true
		}
	default:
		return nil, fmt.Errorf("achievements: expected object or array")
	}
	return set, nil
}
