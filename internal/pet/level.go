package pet

import "math"

// Unreachable is returned by StepsRequired for levels past MaxLevel
const Unreachable = math.MaxInt

// LevelUp describes a level transition produced by an intake
type LevelUp struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Levels returns how many levels were gained at once
func (l LevelUp) Levels() int {
	return l.To - l.From
}

// StepsRequired returns the lifetime steps needed to reach a level
func StepsRequired(level int) int {
	if level <= MinLevel {
		return 0
	}
	if level > MaxLevel {
		return Unreachable
	}
	return int(math.Floor(LevelStepBase * math.Pow(float64(level), LevelStepExponent)))
}

// LevelFor returns the highest level whose requirement totalSteps meets.
// Scans downward so the maximum satisfying level always wins.
func LevelFor(totalSteps int) int {
	for level := MaxLevel; level > MinLevel; level-- {
		if totalSteps >= StepsRequired(level) {
			return level
		}
	}
	return MinLevel
}

// CheckLevelUp re-derives the level from TotalSteps. The level only moves up;
// a level-up is returned when it changed.
func (p *Pet) CheckLevelUp() *LevelUp {
	newLevel := LevelFor(p.TotalSteps)
	if newLevel <= p.Level {
		return nil
	}
	up := &LevelUp{From: p.Level, To: newLevel}
	p.Level = newLevel
	return up
}

// Progress describes how far a pet is through its current level
type Progress struct {
	Level     int     `json:"level"`
	NextLevel int     `json:"nextLevel"`
	Into      int     `json:"into"`
	Needed    int     `json:"needed"`
	Percent   float64 `json:"percent"`
	Maxed     bool    `json:"maxed"`
}

// ProgressFor reports the steps gathered within the current level and the
// steps the next level needs in total. Level MaxLevel reports complete.
func ProgressFor(level, totalSteps int) Progress {
	if level >= MaxLevel {
		return Progress{Level: MaxLevel, NextLevel: MaxLevel, Percent: 100, Maxed: true}
	}
	level = max(level, MinLevel)
	base := StepsRequired(level)
	next := StepsRequired(level + 1)
	into := max(totalSteps-base, 0)
	needed := next - base
	percent := math.Min(100, float64(into)/float64(needed)*100)
	return Progress{
		Level:     level,
		NextLevel: level + 1,
		Into:      into,
		Needed:    needed,
		Percent:   percent,
	}
}
