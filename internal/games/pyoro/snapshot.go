package pyoro

import "github.com/vovakirdan/tui-pyoro/internal/core"

// Snapshot is everything a renderer needs to draw one frame of a level.
// It holds copies only, so it stays valid after the level moves on.
type Snapshot struct {
	W, H           int
	Tiles          []bool
	Background     int
	PrevBackground int
	Transition     float64 // 1 when no fade is running
	Style          int
	Score          int
	Speed          float64
	Bird           Sprite
	BirdState      BirdState
	Entities       []Sprite
	Tongue         []core.Vec // Beak to tip, nil without a tongue
	Active         bool
	Over           bool
}

// Snapshot captures the current state of the level.
func (l *Level) Snapshot() Snapshot {
	prev, progress := l.Transition()
	s := Snapshot{
		W:              l.W,
		H:              l.H,
		Tiles:          l.tiles.Bitmap(),
		Background:     l.background,
		PrevBackground: prev,
		Transition:     progress,
		Style:          l.StyleTier(),
		Score:          l.score,
		Speed:          l.speed,
		Bird:           l.bird.Sprite(),
		BirdState:      l.bird.State(),
		Active:         l.loopActive,
		Over:           l.over,
	}
	for _, e := range l.entities {
		if e.Removed() {
			continue
		}
		s.Entities = append(s.Entities, e.Sprite())
	}
	if t := l.bird.tongue; t != nil {
		s.Tongue = t.Polyline()
	}
	return s
}

// Count returns how many entity sprites are of kind k.
func (s Snapshot) Count(k Kind) int {
	n := 0
	for _, e := range s.Entities {
		if e.Kind == k {
			n++
		}
	}
	return n
}
