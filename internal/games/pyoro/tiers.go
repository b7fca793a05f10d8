package pyoro

const (
	firstAnimatedBackground = 13
	animatedBackgroundScore = 40000
)

// StyleTier returns the palette and music tier for a score.
func StyleTier(score int) int {
	switch {
	case score < 20000:
		return 0
	case score < 30000:
		return 1
	default:
		return 2
	}
}

// BackgroundID returns the background for a score. From 40000 points the
// background cycles through the animated ids 13..20; frame selects one.
func BackgroundID(score, frame int) int {
	switch {
	case score < 11000:
		return score / 1000
	case score < 20000:
		return 10
	case score < 30000:
		return 11
	case score < animatedBackgroundScore:
		return 12
	default:
		return firstAnimatedBackground + ((frame%animatedFrames)+animatedFrames)%animatedFrames
	}
}

// BackgroundAnimated reports whether the score reached the animated backgrounds.
func BackgroundAnimated(score int) bool {
	return score >= animatedBackgroundScore
}
