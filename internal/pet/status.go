package pet

// GetStatus returns the status emoji for the pet, driven by its weakest
// wellbeing stat (health, happiness, energy)
func GetStatus(p Pet) string {
	lowestStat := p.Health
	lowestFeeling := StatusEmojiSick

	if p.Energy < lowestStat {
		lowestStat = p.Energy
		lowestFeeling = StatusEmojiTired
	}
	if p.Happiness < lowestStat {
		lowestStat = p.Happiness
		lowestFeeling = StatusEmojiSad
	}

	switch {
	case lowestStat < LowStatThreshold:
		return lowestFeeling
	case lowestStat >= HighStatThreshold && p.Strength >= HighStatThreshold && p.Agility >= HighStatThreshold:
		return StatusEmojiStrong
	case lowestStat >= HighStatThreshold:
		return StatusEmojiHappy
	case p.Strength < LowStatThreshold && p.Agility < LowStatThreshold && p.TotalSteps == 0:
		return StatusEmojiWeak
	default:
		return StatusEmojiNeutral
	}
}

// GetStatusWithLabel returns status with a text label for the UI
func GetStatusWithLabel(p Pet) string {
	status := GetStatus(p)

	switch status {
	case StatusEmojiSick:
		return status + " Unwell"
	case StatusEmojiTired:
		return status + " Tired"
	case StatusEmojiSad:
		return status + " Sad"
	case StatusEmojiStrong:
		return status + " Peak form"
	case StatusEmojiHappy:
		return status + " Happy"
	case StatusEmojiWeak:
		return status + " Needs a walk"
	default:
		return status + " Okay"
	}
}
