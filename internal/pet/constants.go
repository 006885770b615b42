package pet

// Stat bounds and defaults
const (
	MaxStat = 100.0
	MinStat = 0.0

	DefaultHealth    = 50.0
	DefaultHappiness = 50.0
	DefaultEnergy    = 50.0
	DefaultStrength  = 10.0
	DefaultAgility   = 10.0

	MinLevel = 1
	MaxLevel = 100
)

// Intake coefficients (stat gain per step) and per-intake caps.
// These define game balance and must not drift.
const (
	HealthPerStep    = 0.01
	HappinessPerStep = 0.005
	EnergyPerStep    = 0.003
	StrengthPerStep  = 0.001
	AgilityPerStep   = 0.001

	HealthIntakeCap    = 20.0
	HappinessIntakeCap = 15.0
	EnergyIntakeCap    = 12.0
	StrengthIntakeCap  = 10.0
	AgilityIntakeCap   = 10.0
)

// Leveling curve: stepsRequired(L) = floor(LevelStepBase * L^LevelStepExponent)
const (
	LevelStepBase     = 1000.0
	LevelStepExponent = 1.5
)

// CareBoost is the stat gain of a single care action
const CareBoost = 10.0

// Evolution stages (sprite index 1..5)
const (
	StageCount     = 5
	LevelsPerStage = 20
)

// DaysPerWeek is the length of WeeklyActivity, Monday first
const DaysPerWeek = 7

// Status thresholds
const (
	LowStatThreshold  = 30.0
	HighStatThreshold = 80.0
)

// Status emojis
const (
	StatusEmojiStrong  = "🤖"
	StatusEmojiHappy   = "😸"
	StatusEmojiTired   = "😾"
	StatusEmojiSad     = "😿"
	StatusEmojiSick    = "🤢"
	StatusEmojiWeak    = "🥱"
	StatusEmojiNeutral = "🙂"
)
