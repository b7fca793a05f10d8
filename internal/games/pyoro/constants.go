// Package pyoro implements the Pyoro simulation: a bird walking on a row of
// floor tiles eats or shoots falling beans before they break the floor or
// hit it. Level owns the world; Game wraps it in menus and input handling.
package pyoro

// Game-feel tuning. Speeds are in world units per second, durations in seconds.
const (
	PyoroSpeed        = 25.0
	BeanSpeed         = 1.8
	BeanFrequency     = 2.0
	TongSpeed         = 25.0
	AngelSpeed        = 35.0
	SeedSpeed         = 45.0
	SpeedAcceleration = 0.01

	PyoroNotchDuration  = 0.01
	PyoroEatingDuration = 0.04
	PyoroDeathDuration  = 1.28
	PyoroShootDuration  = 0.04

	BackgroundTransitionDuration = 3.0
	BackgroundAnimatedDuration   = 1.0

	ScoreTextLifeDuration  = 0.3
	ScoreTextBlinkDuration = 0.05

	SmokeFrameDuration = 0.1
)

// Sizes in world units.
const (
	BirdWidth  = 2.0
	BirdHeight = 2.0
	BeanWidth  = 1.0
	BeanHeight = 1.0
	AngelSize  = 1.0
	TongueHead = 1.0
)

// Variant selects the bird's capacity.
type Variant int

const (
	// VariantTongue is the original game: the bird catches beans with its tongue.
	VariantTongue Variant = iota
	// VariantShoot is the sequel: the bird shoots seeds at the beans.
	VariantShoot
)

// GameID returns the registry and score-table id of the variant.
func (v Variant) GameID() string {
	if v == VariantShoot {
		return "pyoro2"
	}
	return "pyoro"
}

// Title returns the display name of the variant.
func (v Variant) Title() string {
	if v == VariantShoot {
		return "Pyoro 2"
	}
	return "Pyoro"
}

// ShootUnlockScore is the tongue-variant high score that unlocks the shoot variant.
const ShootUnlockScore = 10000

// Valid values for spawned score texts.
var scoreValues = [...]int{10, 50, 100, 300, 1000}

func validScore(v int) bool {
	for _, s := range scoreValues {
		if s == v {
			return true
		}
	}
	return false
}

// Sound names played by the simulation.
const (
	SoundTongue  = "tongue"
	SoundEat     = "eat"
	SoundDestroy = "destroy"
	SoundDeath   = "death"
	SoundAngel   = "angel"
	SoundRepair  = "repair"
	SoundShoot   = "shoot"
	SoundImplode = "implode"
	SoundScore   = "score"
)
