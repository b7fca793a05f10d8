package pyoro

import (
	"math"
	"strconv"

	"github.com/vovakirdan/tui-pyoro/internal/core"
)

const (
	seedGravity   = 60.0
	seedFade      = 2.0
	smokeFrames   = 3
	leafFall      = 2.5
	leafDrag      = 1.5
	leafWind      = 12.0
	leafSway      = 3.0
	leafSplitRate = 0.15 // Chance per second that a drifting leaf splits
	pieceFall     = 4.0
)

// Seed is a purely visual projectile thrown by a shot.
type Seed struct {
	body
	vel   core.Vec
	alpha float64
}

func newSeed(l *Level, from core.Vec, dir int, degrees float64) *Seed {
	rad := degrees * math.Pi / 180
	return &Seed{
		body: newBody(l, KindSeed, from.X, from.Y, 0.5, 0.5),
		vel: core.Vec{
			X: float64(dir) * math.Cos(rad) * SeedSpeed,
			Y: -math.Sin(rad) * SeedSpeed,
		},
		alpha: 1,
	}
}

// Alpha returns the remaining opacity of the seed.
func (s *Seed) Alpha() float64 { return s.alpha }

// Update implements Entity.
func (s *Seed) Update(dt float64) {
	s.vel.Y += seedGravity * dt
	s.box.Center.X += s.vel.X * dt
	s.box.Center.Y += s.vel.Y * dt
	s.alpha -= seedFade * dt
	if s.alpha <= 0 || !s.inBounds(true) {
		s.level.Remove(s)
	}
}

// Sprite implements Entity.
func (s *Seed) Sprite() Sprite {
	sp := s.sprite("seed")
	sp.Alpha = math.Max(s.alpha, 0)
	sp.Color = core.ColorYellow
	return sp
}

// Smoke marks a broken tile for a few frames.
type Smoke struct {
	body
	frame int
}

func newSmoke(l *Level, x, y float64) *Smoke {
	s := &Smoke{body: newBody(l, KindSmoke, x, y, 1, 1)}
	s.schedule("frame", SmokeFrameDuration, s.advance)
	return s
}

func (s *Smoke) advance() {
	s.frame++
	if s.frame >= smokeFrames {
		s.level.Remove(s)
		return
	}
	s.schedule("frame", SmokeFrameDuration, s.advance)
}

// Update implements Entity.
func (s *Smoke) Update(float64) {}

// Sprite implements Entity.
func (s *Smoke) Sprite() Sprite {
	sp := s.sprite("smoke")
	sp.Frame = s.frame
	sp.Color = core.ColorGray
	return sp
}

// Leaf drifts down after a bean is cut. Wind from the shot pushes it
// sideways and air resistance slows it down.
type Leaf struct {
	body
	vel   core.Vec
	super bool
	age   float64
}

func newLeaf(l *Level, at core.Vec, dir int, super bool) *Leaf {
	wind := float64(dir) * leafWind * (0.5 + l.rng.Float64())
	return &Leaf{
		body:  newBody(l, KindLeaf, at.X, at.Y, 1, 0.5),
		vel:   core.Vec{X: wind, Y: leafFall * (0.5 + l.rng.Float64())},
		super: super,
	}
}

// Update implements Entity.
func (f *Leaf) Update(dt float64) {
	f.age += dt
	f.vel.X -= f.vel.X * leafDrag * dt
	f.box.Center.X += (f.vel.X + math.Sin(f.age*leafSway)) * dt
	f.box.Center.Y += f.vel.Y * dt

	if !f.inBounds(true) {
		f.level.Remove(f)
		return
	}
	if f.level.rng.Float64() < leafSplitRate*dt {
		f.Cut()
	}
}

// Cut splits the leaf in two pieces.
func (f *Leaf) Cut() {
	if f.removed {
		return
	}
	for _, dir := range []float64{-1, 1} {
		f.level.Add(newLeafPiece(f.level, f.box.Center, core.Vec{X: f.vel.X + dir*2, Y: f.vel.Y}, f.super))
	}
	f.level.Remove(f)
}

// Sprite implements Entity.
func (f *Leaf) Sprite() Sprite {
	name := "leaf"
	if f.super {
		name = "super_leaf"
	}
	sp := f.sprite(name)
	sp.Color = core.ColorGreen
	if f.super {
		sp.Color = core.Palette[core.Abs(f.id)%len(core.Palette)]
	}
	if f.vel.X < 0 {
		sp.Dir = -1
	}
	return sp
}

// LeafPiece is half a leaf falling a little faster.
type LeafPiece struct {
	body
	vel   core.Vec
	super bool
}

func newLeafPiece(l *Level, at, vel core.Vec, super bool) *LeafPiece {
	return &LeafPiece{
		body:  newBody(l, KindLeafPiece, at.X, at.Y, 0.5, 0.5),
		vel:   core.Vec{X: vel.X, Y: math.Max(vel.Y, pieceFall)},
		super: super,
	}
}

// Update implements Entity.
func (p *LeafPiece) Update(dt float64) {
	p.vel.X -= p.vel.X * leafDrag * dt
	p.box.Center.X += p.vel.X * dt
	p.box.Center.Y += p.vel.Y * dt
	if !p.inBounds(true) {
		p.level.Remove(p)
	}
}

// Sprite implements Entity.
func (p *LeafPiece) Sprite() Sprite {
	sp := p.sprite("leaf_piece")
	sp.Color = core.ColorGreen
	if p.super {
		sp.Color = core.ColorBrightYellow
	}
	return sp
}

// ScoreText shows an awarded value where it was earned.
type ScoreText struct {
	body
	value int
	color int
}

func newScoreText(l *Level, value int, at core.Vec) *ScoreText {
	t := &ScoreText{body: newBody(l, KindScoreText, at.X, at.Y, 2, 1), value: value}
	if value >= 300 {
		t.schedule("blink", ScoreTextBlinkDuration, t.blink)
	}
	t.schedule("life", ScoreTextLifeDuration, func() { t.level.Remove(t) })
	return t
}

func (t *ScoreText) blink() {
	t.color = (t.color + 1) % len(core.Palette)
	t.schedule("blink", ScoreTextBlinkDuration, t.blink)
}

// Value returns the displayed score.
func (t *ScoreText) Value() int { return t.value }

// Update implements Entity.
func (t *ScoreText) Update(float64) {}

// Sprite implements Entity.
func (t *ScoreText) Sprite() Sprite {
	sp := t.sprite("score_" + strconv.Itoa(t.value))
	sp.Frame = t.color
	switch t.value {
	case 300, 1000:
		sp.Color = core.Palette[t.color]
	case 100:
		sp.Color = core.ColorBrightYellow
	case 50:
		sp.Color = core.ColorBrightCyan
	default:
		sp.Color = core.ColorBrightWhite
	}
	return sp
}
