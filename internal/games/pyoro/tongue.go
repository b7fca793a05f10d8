package pyoro

import "github.com/vovakirdan/tui-pyoro/internal/core"

// Tongue is the bird's catching tool. Its box is the head at the tip.
type Tongue struct {
	body
	bird      *Bird
	direction int
	goingBack bool
	caught    *Bean
}

func newTongue(l *Level, bird *Bird) *Tongue {
	mouth := bird.Mouth()
	t := &Tongue{
		body:      newBody(l, KindTongue, mouth.X, mouth.Y, TongueHead, TongueHead),
		bird:      bird,
		direction: bird.direction,
	}
	t.onRemove = func() {
		if t.caught != nil {
			l.Remove(t.caught)
			t.caught = nil
		}
		if bird.tongue == t {
			bird.tongue = nil
		}
	}
	return t
}

// GoingBack reports whether the tongue is retracting.
func (t *Tongue) GoingBack() bool { return t.goingBack }

// Caught returns the bean held by the tongue, or nil.
func (t *Tongue) Caught() *Bean { return t.caught }

// Tip returns the position of the tongue head.
func (t *Tongue) Tip() core.Vec { return t.box.Center }

// Polyline returns the points from the beak to the tip.
func (t *Tongue) Polyline() []core.Vec {
	return []core.Vec{t.bird.Mouth(), t.box.Center}
}

// Update extends the tongue diagonally until it catches a bean or leaves the
// field, then pulls it back at twice the speed.
func (t *Tongue) Update(dt float64) {
	if !t.goingBack {
		t.box.Center.X += float64(t.direction) * TongSpeed * dt
		t.box.Center.Y -= TongSpeed * dt

		if bean := t.touchingBean(); bean != nil {
			t.catch(bean)
			return
		}
		if !t.inBounds(false) {
			t.goingBack = true
		}
		return
	}

	t.box.Center.X -= float64(t.direction) * 2 * TongSpeed * dt
	t.box.Center.Y += 2 * TongSpeed * dt
	mouth := t.bird.Mouth()
	if t.box.Center.Y >= mouth.Y {
		t.box.Center = mouth
		if t.caught != nil {
			t.level.Remove(t.caught)
			t.caught = nil
			t.bird.eat()
		}
		t.level.Remove(t)
		return
	}
	if t.caught != nil {
		t.caught.box.Center = t.box.Center
	}
}

func (t *Tongue) touchingBean() *Bean {
	for _, e := range t.level.entities {
		bean, ok := e.(*Bean)
		if !ok || bean.removed || bean.caught {
			continue
		}
		if t.box.Intersects(bean.box) {
			return bean
		}
	}
	return nil
}

func (t *Tongue) catch(bean *Bean) {
	t.caught = bean
	t.goingBack = true
	bean.box.Center = t.box.Center
	t.level.SpawnScore(tongueScore(t.box.Center.Y, float64(t.level.H)), t.box.Center)
	bean.Catch()
}

// tongueScore rewards catches made higher up the field.
func tongueScore(y, h float64) int {
	switch {
	case y < 0.2*h:
		return 1000
	case y < 0.4*h:
		return 300
	case y < 0.6*h:
		return 100
	case y < 0.8*h:
		return 50
	default:
		return 10
	}
}

// Sprite implements Entity.
func (t *Tongue) Sprite() Sprite {
	s := t.sprite("tongue")
	s.Dir = t.direction
	return s
}
