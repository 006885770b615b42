package ui

import (
	"time"

	"sweatpet/internal/pet"
)

// AnimationType represents the type of action animation
type AnimationType int

const (
	AnimNone AnimationType = iota
	AnimFeed
	AnimPlay
	AnimRest
	AnimTrain
	AnimExercise
	AnimWalk
	AnimLevelUp
	AnimAchievement
)

// Animation holds the current animation state
type Animation struct {
	Type      AnimationType
	Frame     int
	StartTime time.Time
}

// AnimationFrames contains ASCII art frames for each animation type
var AnimationFrames = map[AnimationType][]string{
	AnimFeed: {
		`
   🍖
     \
      😺
`,
		`

   🍖→😺

`,
		`

     😸
   *nom*
`,
		`

     😋
   *munch*
`,
	},
	AnimPlay: {
		`
  🎾        😺
`,
		`
     🎾     😸
`,
		`
        🎾  😺
`,
		`
     🎾     😸
              *boing*
`,
		`
  🎾        😺
              *catch!*
`,
	},
	AnimRest: {
		`
     😺
`,
		`
     😪
      z
`,
		`
     😴
     z
      z
`,
		`
     😴
    z
     z
      z
`,
	},
	AnimTrain: {
		`
     🏋️
     😼
`,
		`
     😤
     🏋️
`,
		`
     🏋️
     😼  *hup!*
`,
		`
     💪😸💪
`,
	},
	AnimExercise: {
		`
  😺
`,
		`
     🤸
`,
		`
        😺
          *flip*
`,
		`
     🤸
`,
		`
  😸 ✨
`,
	},
	AnimWalk: {
		`
  👣
  😺
`,
		`
     👣
     😺
`,
		`
        👣
        😸
`,
		`
           👣
           😸 *step step*
`,
	},
	AnimLevelUp: {
		`
       ⭐
      😺
`,
		`
     ✨ ⭐ ✨
      😸
`,
		`
   🎉 ✨ ⭐ ✨ 🎉
       😻
`,
		`
   🎉 LEVEL UP! 🎉
       😻
`,
		`
   🎉 LEVEL UP! 🎉
     ✨ 😻 ✨
`,
	},
	AnimAchievement: {
		`
       🏆
`,
		`
     ✨🏆✨
`,
		`
    ✨ 🏆 ✨
       😸
`,
		`
   🏅 UNLOCKED 🏅
       😸
`,
	},
}

// AnimationFrameDuration is how long each frame displays
const AnimationFrameDuration = 200 * time.Millisecond

// careAnimations maps each care action to its animation
var careAnimations = map[pet.CareAction]AnimationType{
	pet.CareFeed:     AnimFeed,
	pet.CarePlay:     AnimPlay,
	pet.CareRest:     AnimRest,
	pet.CareTrain:    AnimTrain,
	pet.CareExercise: AnimExercise,
}

// GetAnimationFrame returns the current frame for an animation
func GetAnimationFrame(anim Animation) string {
	frames := AnimationFrames[anim.Type]
	if len(frames) == 0 {
		return ""
	}
	if anim.Frame >= len(frames) {
		return frames[len(frames)-1]
	}
	return frames[anim.Frame]
}

// IsAnimationComplete returns true if the animation has finished
func IsAnimationComplete(anim Animation) bool {
	frames := AnimationFrames[anim.Type]
	return anim.Frame >= len(frames)
}

// AnimationTotalFrames returns the number of frames for an animation type
func AnimationTotalFrames(animType AnimationType) int {
	return len(AnimationFrames[animType])
}

// IntakeAnimations returns the animations to play, in order, for an intake
func IntakeAnimations(result pet.IntakeResult) []AnimationType {
	if !result.Applied() {
		return nil
	}
	anims := []AnimationType{AnimWalk}
	if result.LevelUp != nil {
		anims = append(anims, AnimLevelUp)
	}
	if len(result.Unlocked) > 0 {
		anims = append(anims, AnimAchievement)
	}
	return anims
}
