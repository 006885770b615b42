package pet

import "fmt"

// CareAction is a manual interaction that boosts one stat by CareBoost
type CareAction string

const (
	CareFeed     CareAction = "feed"
	CarePlay     CareAction = "play"
	CareRest     CareAction = "rest"
	CareTrain    CareAction = "train"
	CareExercise CareAction = "exercise"
)

// CareActions lists the actions in menu order
var CareActions = []CareAction{CareFeed, CarePlay, CareRest, CareTrain, CareExercise}

// ParseCareAction resolves an action by name
func ParseCareAction(name string) (CareAction, error) {
	for _, a := range CareActions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown care action %q", name)
}

// Stat returns the stat the action boosts
func (a CareAction) Stat() Stat {
	switch a {
	case CareFeed:
		return StatHealth
	case CarePlay:
		return StatHappiness
	case CareRest:
		return StatEnergy
	case CareTrain:
		return StatStrength
	case CareExercise:
		return StatAgility
	default:
		return ""
	}
}

// Message is the feedback shown while the action runs
func (a CareAction) Message() string {
	switch a {
	case CareFeed:
		return "🔋 Feeding pet..."
	case CarePlay:
		return "🎾 Playing with pet..."
	case CareRest:
		return "😴 Pet is resting..."
	case CareTrain:
		return "🏋️ Training pet..."
	case CareExercise:
		return "🤸 Exercising pet..."
	default:
		return ""
	}
}
