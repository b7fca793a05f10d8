package pyoro

import (
	"github.com/vovakirdan/tui-pyoro/internal/audio"
	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/timing"
)

// Kind tags the closed set of entity variants.
type Kind int

const (
	KindBird Kind = iota
	KindTongue
	KindBean
	KindAngel
	KindSeed
	KindSmoke
	KindLeaf
	KindLeafPiece
	KindScoreText
)

// String returns the sprite family name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBird:
		return "pyoro"
	case KindTongue:
		return "tongue"
	case KindBean:
		return "bean"
	case KindAngel:
		return "angel"
	case KindSeed:
		return "seed"
	case KindSmoke:
		return "smoke"
	case KindLeaf:
		return "leaf"
	case KindLeafPiece:
		return "leaf_piece"
	case KindScoreText:
		return "score"
	default:
		return "unknown"
	}
}

// Entity is an actor living in a Level.
type Entity interface {
	ID() int
	Kind() Kind
	Box() core.Box
	Removed() bool
	// Update advances the entity by dt seconds of level time.
	Update(dt float64)
	// Sprite describes how to draw the entity this frame.
	Sprite() Sprite

	base() *body
}

// body holds the state every entity shares. Keys and sounds created through
// it are released when the entity leaves the level.
type body struct {
	level   *Level
	id      int
	kind    Kind
	box     core.Box
	removed bool
	keys    []timing.Key
	sounds  []sound

	// onRemove runs once when the entity leaves the level.
	onRemove func()
}

func newBody(l *Level, kind Kind, x, y, w, h float64) body {
	return body{level: l, id: l.allocID(), kind: kind, box: core.NewBox(x, y, w, h)}
}

func (b *body) base() *body { return b }

// ID returns the stable handle of the entity.
func (b *body) ID() int { return b.id }

// Kind returns the entity variant.
func (b *body) Kind() Kind { return b.kind }

// Box returns the world-space bounds of the entity.
func (b *body) Box() core.Box { return b.box }

// Removed reports whether the entity has left the level.
func (b *body) Removed() bool { return b.removed }

// Pos returns the center of the entity.
func (b *body) Pos() core.Vec { return b.box.Center }

// schedule sets a delay owned by this entity.
func (b *body) schedule(name string, t float64, fn timing.Func) {
	b.scheduleKey(timing.K(b.id, name), t, fn)
}

func (b *body) scheduleKey(key timing.Key, t float64, fn timing.Func) {
	b.level.sched.Set(key, t, fn)
	for _, k := range b.keys {
		if k == key {
			return
		}
	}
	b.keys = append(b.keys, key)
}

func (b *body) unschedule(name string) {
	b.level.sched.Remove(timing.K(b.id, name))
}

// sound is a voice started by an entity.
type sound struct {
	player audio.Player
	loops  int
	held   bool // paused with the level
}

// play starts a sound that stops when the entity is removed.
func (b *body) play(name string, loops int) audio.Player {
	p := b.level.sounds.Sound(name)
	p.Play(loops)
	b.sounds = append(b.sounds, sound{player: p, loops: loops})
	return p
}

// holdSounds pauses the sounds still playing.
func (b *body) holdSounds() {
	for i := range b.sounds {
		s := &b.sounds[i]
		if s.player.Playing() {
			s.player.Pause()
			s.held = true
		}
	}
}

// resumeSounds restarts the sounds paused by holdSounds where they left off.
func (b *body) resumeSounds() {
	for i := range b.sounds {
		s := &b.sounds[i]
		if s.held {
			s.held = false
			s.player.Play(s.loops)
		}
	}
}

func (b *body) onFloor() bool {
	return b.box.Bottom() >= float64(b.level.H-1)
}

func (b *body) inBounds(inclusive bool) bool {
	return b.box.InBounds(float64(b.level.W), float64(b.level.H), inclusive)
}

// release drops every key and sound of the entity.
func (b *body) release() {
	b.removed = true
	b.level.sched.Remove(b.keys...)
	b.keys = nil
	for _, s := range b.sounds {
		s.player.Stop()
	}
	b.sounds = nil
	if b.onRemove != nil {
		fn := b.onRemove
		b.onRemove = nil
		fn()
	}
}

// Sprite is the render description of one entity.
type Sprite struct {
	ID    int
	Kind  Kind
	Name  string // Sprite identifier, e.g. "bean_pink" or "score_300"
	Pos   core.Vec
	Size  core.Vec
	Dir   int
	Frame int
	Alpha float64
	Color core.Color
}

func (b *body) sprite(name string) Sprite {
	return Sprite{
		ID:    b.id,
		Kind:  b.kind,
		Name:  name,
		Pos:   b.box.Center,
		Size:  b.box.Size,
		Dir:   1,
		Alpha: 1,
	}
}
