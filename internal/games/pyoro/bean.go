package pyoro

import (
	"github.com/vovakirdan/tui-pyoro/internal/audio"
	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/timing"
)

// BeanType is the bean variant.
type BeanType int

const (
	BeanGreen BeanType = iota
	BeanPink
	BeanSuper
)

// String returns the sprite suffix of the bean type.
func (t BeanType) String() string {
	switch t {
	case BeanPink:
		return "pink"
	case BeanSuper:
		return "super"
	default:
		return "green"
	}
}

const (
	superImplodeStep = 0.1
	superRepairStep  = 0.5
	superRepairMax   = 10
)

// Bean falls towards the floor. It breaks the tile it lands on and kills the
// bird it lands on.
type Bean struct {
	body
	beanType  BeanType
	fallSpeed float64
	caught    bool
	falling   bool // Passed the floor line over a hole
}

func newBean(l *Level, t BeanType, x, y, fallSpeed float64) *Bean {
	return &Bean{
		body:      newBody(l, KindBean, x, y, BeanWidth, BeanHeight),
		beanType:  t,
		fallSpeed: fallSpeed,
	}
}

// Type returns the bean variant.
func (b *Bean) Type() BeanType { return b.beanType }

// Caught reports whether the tongue holds the bean.
func (b *Bean) Caught() bool { return b.caught }

// Update moves the bean down and resolves bird and floor contact.
func (b *Bean) Update(dt float64) {
	if b.caught {
		return
	}
	b.box.Center.Y += BeanSpeed * b.fallSpeed * dt

	bird := b.level.bird
	if !bird.dead && b.box.Intersects(bird.box) {
		bird.Kill()
		b.level.Remove(b)
		return
	}

	if !b.falling && b.onFloor() {
		i := b.level.tileIndex(b.box.Center.X)
		if b.level.tiles.Exists(i) {
			b.level.tiles.Destroy(i)
			b.level.playSound(SoundDestroy)
			b.level.Add(newSmoke(b.level, float64(i)+0.5, float64(b.level.H)-1.5))
			b.level.Remove(b)
			return
		}
		b.falling = true
	}

	if !b.inBounds(true) {
		b.level.Remove(b)
	}
}

// Catch is called by the tongue. Pink beans send an angel; super beans
// clear the sky and repair the floor.
func (b *Bean) Catch() {
	if b.caught {
		return
	}
	b.caught = true
	b.reward()
}

// Cut is called by a shot coming from dir. The bean turns into leaves.
func (b *Bean) Cut(dir int) {
	if b.removed {
		return
	}
	b.caught = true
	b.reward()

	pos := b.box.Center
	if b.beanType == BeanSuper {
		for i := 0; i < 4; i++ {
			b.level.Add(newLeaf(b.level, pos, dir, true))
		}
	} else {
		b.level.Add(newLeaf(b.level, pos, dir, false))
	}
	b.level.Remove(b)
}

func (b *Bean) reward() {
	switch b.beanType {
	case BeanPink:
		b.level.sendAngel()
	case BeanSuper:
		b.level.superCascade(b)
	}
}

// Implode destroys the bean during a super cascade.
func (b *Bean) Implode() {
	if b.removed {
		return
	}
	b.level.playSound(SoundImplode)
	b.level.SpawnScore(50, b.box.Center)
	b.level.Add(newSmoke(b.level, b.box.Center.X, b.box.Center.Y))
	b.level.Remove(b)
}

// Sprite implements Entity.
func (b *Bean) Sprite() Sprite {
	s := b.sprite("bean_" + b.beanType.String())
	switch b.beanType {
	case BeanPink:
		s.Color = core.ColorPink
	case BeanSuper:
		s.Color = core.Palette[core.Abs(core.Floor(b.box.Center.Y*4))%len(core.Palette)]
	default:
		s.Color = core.ColorBrightGreen
	}
	return s
}

// superCascade schedules the implosion of every other live bean, one every
// superImplodeStep seconds, and the repair of up to superRepairMax broken
// tiles, one every superRepairStep seconds. The keys are owned by the super
// bean's id but not tracked by it: the cascade outlives the bean.
func (l *Level) superCascade(super *Bean) {
	i := 0
	for _, e := range l.entities {
		other, ok := e.(*Bean)
		if !ok || other == super || other.removed || other.caught {
			continue
		}
		id := other.id
		key := timing.Key{Owner: super.id, Name: "destroy_bean", Index: i}
		l.sched.Set(key, superImplodeStep*float64(i), func() {
			l.sched.Remove(key)
			if bean, ok := l.Entity(id).(*Bean); ok {
				bean.Implode()
			}
		})
		i++
	}

	voids := l.tiles.VoidTiles()
	l.rng.Shuffle(len(voids), func(a, b int) { voids[a], voids[b] = voids[b], voids[a] })
	if len(voids) > superRepairMax {
		voids = voids[:superRepairMax]
	}
	for j, idx := range voids {
		idx := idx
		if !l.tiles.MarkRepairing(idx) {
			continue
		}
		key := timing.Key{Owner: super.id, Name: "repair_tile", Index: j}
		l.sched.Set(key, superRepairStep*float64(j), func() {
			l.sched.Remove(key)
			l.Add(newAngel(l, idx))
		})
	}
}

// sendAngel picks a random broken tile and sends an angel to repair it.
func (l *Level) sendAngel() {
	voids := l.tiles.VoidTiles()
	if len(voids) == 0 {
		return
	}
	idx := voids[l.rng.Intn(len(voids))]
	if l.tiles.MarkRepairing(idx) {
		l.Add(newAngel(l, idx))
	}
}

// Angel descends onto a reserved tile, repairs it and flies away.
type Angel struct {
	body
	tile   int
	rising bool
	fall   audio.Player
}

func newAngel(l *Level, tile int) *Angel {
	a := &Angel{
		body: newBody(l, KindAngel, float64(tile)+0.5, -AngelSize/2, AngelSize, AngelSize),
		tile: tile,
	}
	a.fall = a.play(SoundAngel, audio.LoopForever)
	return a
}

// Tile returns the index of the tile the angel repairs.
func (a *Angel) Tile() int { return a.tile }

// Rising reports whether the angel finished its repair.
func (a *Angel) Rising() bool { return a.rising }

// Update implements Entity.
func (a *Angel) Update(dt float64) {
	if a.rising {
		a.box.Center.Y -= AngelSpeed * dt
		if !a.inBounds(true) {
			a.level.Remove(a)
		}
		return
	}
	if !a.level.tiles.Repairing(a.tile) {
		a.rising = true
		a.fall.Stop()
		return
	}
	a.box.Center.Y += AngelSpeed * dt
	if a.onFloor() {
		a.box.Center.Y = float64(a.level.H-1) - a.box.Size.Y/2
		a.level.tiles.Repair(a.tile)
		a.fall.Stop()
		a.level.playSound(SoundRepair)
		a.rising = true
	}
}

// Sprite implements Entity.
func (a *Angel) Sprite() Sprite {
	s := a.sprite("angel")
	s.Color = core.ColorBrightWhite
	if a.rising {
		s.Frame = 1
	}
	return s
}
