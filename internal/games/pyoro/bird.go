package pyoro

import (
	"math"

	"github.com/vovakirdan/tui-pyoro/internal/audio"
	"github.com/vovakirdan/tui-pyoro/internal/core"
)

// BirdState is the visible state of the bird.
type BirdState int

const (
	BirdIdle BirdState = iota
	BirdMovingLeft
	BirdMovingRight
	BirdEating
	BirdShooting
	BirdDying
)

// String returns a human-readable name for the state.
func (s BirdState) String() string {
	switch s {
	case BirdIdle:
		return "idle"
	case BirdMovingLeft:
		return "moving_left"
	case BirdMovingRight:
		return "moving_right"
	case BirdEating:
		return "eating"
	case BirdShooting:
		return "shooting"
	case BirdDying:
		return "dying"
	default:
		return "unknown"
	}
}

const (
	shootFrames  = 5
	deathFrames  = 8
	seedAngleLow = 35.0
	seedAngleHi  = 55.0
)

// Bird is the player character. Its capacity depends on the level variant.
type Bird struct {
	body
	variant Variant

	direction int
	moving    bool
	notched   bool
	dead      bool
	eating    bool
	tongue    *Tongue

	shootFrame int // 0 when not shooting, otherwise 1..shootFrames
	deathFrame int
}

func newBird(l *Level) *Bird {
	b := &Bird{
		body:      newBody(l, KindBird, float64(l.W)/2, float64(l.H)-BirdHeight, BirdWidth, BirdHeight),
		variant:   l.variant,
		direction: 1,
	}
	return b
}

// Direction returns -1 when facing left and +1 when facing right.
func (b *Bird) Direction() int { return b.direction }

// Dead reports whether the bird was hit.
func (b *Bird) Dead() bool { return b.dead }

// Moving reports whether the bird is walking.
func (b *Bird) Moving() bool { return b.moving }

// Tongue returns the extended tongue, or nil.
func (b *Bird) Tongue() *Tongue { return b.tongue }

// State returns the bird's state machine position.
func (b *Bird) State() BirdState {
	switch {
	case b.dead:
		return BirdDying
	case b.shootFrame > 0:
		return BirdShooting
	case b.tongue != nil || b.eating:
		return BirdEating
	case b.moving && b.direction < 0:
		return BirdMovingLeft
	case b.moving:
		return BirdMovingRight
	default:
		return BirdIdle
	}
}

// Busy reports whether the bird is using its capacity.
func (b *Bird) Busy() bool {
	return b.tongue != nil || b.shootFrame > 0
}

// EnableMove starts walking in dir. It reports false when the bird is dead
// or busy with its capacity.
func (b *Bird) EnableMove(dir int) bool {
	if b.dead || b.Busy() {
		return false
	}
	if dir < 0 {
		b.direction = -1
	} else {
		b.direction = 1
	}
	if !b.moving {
		b.moving = true
		b.schedule("notch", PyoroNotchDuration, b.notch)
	}
	return true
}

// DisableMove stops walking if the bird is walking in dir.
func (b *Bird) DisableMove(dir int) {
	if !b.moving || (dir < 0) != (b.direction < 0) {
		return
	}
	b.stop()
}

func (b *Bird) stop() {
	b.moving = false
	b.notched = false
	b.unschedule("notch")
}

func (b *Bird) notch() {
	b.notched = !b.notched
	b.schedule("notch", PyoroNotchDuration, b.notch)
}

// EnableCapacity sticks out the tongue or shoots, depending on the variant.
func (b *Bird) EnableCapacity() {
	if b.dead || b.Busy() {
		return
	}
	b.stop()
	if b.variant == VariantShoot {
		b.shoot()
		return
	}
	b.eating = false
	b.unschedule("eating")
	b.tongue = newTongue(b.level, b)
	b.level.Add(b.tongue)
	b.tongue.play(SoundTongue, audio.LoopOnce)
}

// eat shows the eating sprite for a moment after the tongue comes back.
func (b *Bird) eat() {
	b.eating = true
	b.level.playSound(SoundEat)
	b.schedule("eating", PyoroEatingDuration, func() {
		b.eating = false
		b.unschedule("eating")
	})
}

// Kill starts the death animation. The level ends after PyoroDeathDuration.
func (b *Bird) Kill() {
	if b.dead {
		return
	}
	b.dead = true
	b.moving = false
	b.notched = false
	b.eating = false
	b.shootFrame = 0
	if b.tongue != nil {
		b.level.Remove(b.tongue)
	}
	b.level.sched.RemoveOwner(b.id)
	b.keys = nil

	b.play(SoundDeath, audio.LoopOnce)
	b.schedule("death", PyoroDeathDuration/deathFrames, b.advanceDeath)
	b.level.scheduleGameOver()
}

func (b *Bird) advanceDeath() {
	b.deathFrame++
	if b.deathFrame >= deathFrames-1 {
		b.unschedule("death")
		return
	}
	b.schedule("death", PyoroDeathDuration/deathFrames, b.advanceDeath)
}

// Update walks the bird. Walking stops at the edge of a broken tile.
func (b *Bird) Update(dt float64) {
	if b.dead || !b.moving {
		return
	}
	x := b.box.Center.X
	nx := x + float64(b.direction)*PyoroSpeed*dt
	half := b.box.Size.X / 2

	if b.direction > 0 {
		r, nr := x+half, nx+half
		for c := int(math.Ceil(r)); c <= int(math.Ceil(nr))-1; c++ {
			if b.level.tiles.InRange(c) && !b.level.tiles.Exists(c) {
				nx = float64(c) - half
				break
			}
		}
	} else {
		l, nl := x-half, nx-half
		for c := int(math.Floor(l)) - 1; c >= int(math.Floor(nl)); c-- {
			if b.level.tiles.InRange(c) && !b.level.tiles.Exists(c) {
				nx = float64(c+1) + half
				break
			}
		}
	}
	b.box.Center.X = core.ClampF(nx, half, float64(b.level.W)-half)
}

// Mouth returns where the tongue leaves the beak.
func (b *Bird) Mouth() core.Vec {
	return core.Vec{
		X: b.box.Center.X + float64(b.direction)*b.box.Size.X/4,
		Y: b.box.Center.Y - b.box.Size.Y/4,
	}
}

// shoot plays the shoot animation, cuts everything in the firing cone and
// throws two seeds for show.
func (b *Bird) shoot() {
	b.shootFrame = 1
	b.play(SoundShoot, audio.LoopOnce)
	b.schedule("shoot", PyoroShootDuration, b.advanceShoot)

	var beans []*Bean
	var leaves []*Leaf
	for _, e := range b.level.entities {
		if e.Removed() || !b.inCone(e.Box()) {
			continue
		}
		switch v := e.(type) {
		case *Bean:
			if !v.caught {
				beans = append(beans, v)
			}
		case *Leaf:
			leaves = append(leaves, v)
		}
	}
	for _, bean := range beans {
		bean.Cut(b.direction)
	}
	for _, leaf := range leaves {
		leaf.Cut()
	}
	if v := bulkScore(len(beans)); v > 0 {
		b.level.SpawnScore(v, core.Vec{X: b.box.Center.X, Y: b.box.Top() - 1})
	}

	mouth := b.Mouth()
	for _, deg := range []float64{seedAngleLow, seedAngleHi} {
		b.level.Add(newSeed(b.level, mouth, b.direction, deg))
	}
}

func (b *Bird) advanceShoot() {
	b.shootFrame++
	if b.shootFrame > shootFrames {
		b.shootFrame = 0
		b.unschedule("shoot")
		return
	}
	b.schedule("shoot", PyoroShootDuration, b.advanceShoot)
}

// inCone reports whether a box lies on the 45 degree line the bird aims at.
func (b *Bird) inCone(o core.Box) bool {
	dx := o.Center.X - b.box.Center.X
	if dx*float64(b.direction) < 0 {
		return false
	}
	d := math.Abs(dx)
	dy := math.Abs(b.box.Center.Y - o.Center.Y)
	return dy >= d-o.Size.X && dy <= d+o.Size.X
}

// bulkScore returns the reward for cutting n beans with one shot.
func bulkScore(n int) int {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return 50
	case n == 2:
		return 100
	case n == 3:
		return 300
	default:
		return 1000
	}
}

// Sprite implements Entity.
func (b *Bird) Sprite() Sprite {
	s := b.sprite(b.variant.GameID())
	s.Dir = b.direction
	switch {
	case b.dead:
		s.Name += "_dead"
		s.Frame = b.deathFrame
	case b.shootFrame > 0:
		s.Name += "_shoot"
		s.Frame = b.shootFrame - 1
	case b.tongue != nil:
		s.Name += "_tongue"
	case b.eating:
		s.Name += "_eating"
	case b.notched:
		s.Name += "_notch"
	}
	return s
}
