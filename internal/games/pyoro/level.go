package pyoro

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pyoro/internal/audio"
	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/timing"
)

// levelOwner is the scheduler owner of level-wide delays.
const levelOwner = 0

var (
	spawnKey      = timing.K(levelOwner, "spawn_bean")
	gameOverKey   = timing.K(levelOwner, "game_over")
	transitionKey = timing.K(levelOwner, "background_transition")
	animatedKey   = timing.K(levelOwner, "background_animated")
)

const (
	superBeanMinScore = 5000
	superBeanChance   = 0.03
	pinkBeanChance    = 0.10
	animatedFrames    = 8
)

// LevelConfig configures a new Level.
type LevelConfig struct {
	Width, Height int
	Variant       Variant
	Seed          int64 // 0 picks a seed from the clock
	Sounds        audio.Source
	Logger        *log.Logger
}

// Level owns the floor, the bird, every other entity and the scheduler that
// animates them.
type Level struct {
	W, H    int
	variant Variant

	tiles    *TileRow
	bird     *Bird
	entities []Entity
	byID     map[int]Entity
	sched    *timing.Scheduler
	nextID   int

	rng    *rand.Rand
	sounds audio.Source
	logger *log.Logger

	score      int
	speed      float64
	loopActive bool
	over       bool

	background     int
	prevBackground int
	animFrame      int
}

// NewLevel creates a running level with an intact floor and the bird in the
// middle. The first bean is already scheduled.
func NewLevel(cfg LevelConfig) *Level {
	if cfg.Sounds == nil {
		cfg.Sounds = audio.Silent{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := core.Max(cfg.Width, int(BirdWidth))
	h := core.Max(cfg.Height, 4)

	l := &Level{
		W:          w,
		H:          h,
		variant:    cfg.Variant,
		tiles:      NewTileRow(w),
		byID:       make(map[int]Entity),
		sched:      timing.NewScheduler(),
		nextID:     levelOwner + 1,
		rng:        rand.New(rand.NewSource(seed)),
		sounds:     cfg.Sounds,
		logger:     cfg.Logger,
		speed:      1,
		loopActive: true,
	}
	l.bird = newBird(l)
	l.scheduleBean()
	return l
}

func (l *Level) allocID() int {
	id := l.nextID
	l.nextID++
	return id
}

// Bird returns the player character.
func (l *Level) Bird() *Bird { return l.bird }

// Tiles returns the floor.
func (l *Level) Tiles() *TileRow { return l.tiles }

// Scheduler returns the level's delayed actions.
func (l *Level) Scheduler() *timing.Scheduler { return l.sched }

// Variant returns the bird capacity of this level.
func (l *Level) Variant() Variant { return l.variant }

// Score returns the current score.
func (l *Level) Score() int { return l.score }

// Speed returns the time multiplier applied to every update.
func (l *Level) Speed() float64 { return l.speed }

// Active reports whether the level advances on Tick.
func (l *Level) Active() bool { return l.loopActive }

// SetActive pauses or resumes the level. Entity sounds are paused with it
// and pick up where they stopped.
func (l *Level) SetActive(active bool) {
	if active == l.loopActive {
		return
	}
	l.loopActive = active
	for _, b := range l.bodies() {
		if active {
			b.resumeSounds()
		} else {
			b.holdSounds()
		}
	}
}

// bodies returns the bird and every live entity.
func (l *Level) bodies() []*body {
	out := []*body{l.bird.base()}
	for _, e := range l.entities {
		if !e.Removed() {
			out = append(out, e.base())
		}
	}
	return out
}

// Close ends the level for good. Every entity is removed with its delays
// and sounds, and the bird is released. A closed level never ticks again.
func (l *Level) Close() {
	l.loopActive = false
	for _, e := range l.entities {
		l.Remove(e)
	}
	l.cleanup()
	if !l.bird.removed {
		l.bird.release()
	}
	l.sched.Clear()
}

// Over reports whether the game-over delay after the bird's death fired.
func (l *Level) Over() bool { return l.over }

// Entities returns the live entities, excluding the bird.
func (l *Level) Entities() []Entity {
	out := make([]Entity, 0, len(l.entities))
	for _, e := range l.entities {
		if !e.Removed() {
			out = append(out, e)
		}
	}
	return out
}

// Entity resolves a stable id. It returns nil once the entity is removed.
func (l *Level) Entity(id int) Entity {
	e, ok := l.byID[id]
	if !ok || e.Removed() {
		return nil
	}
	return e
}

// Add inserts an entity. It is first updated on the next tick.
func (l *Level) Add(e Entity) {
	l.entities = append(l.entities, e)
	l.byID[e.ID()] = e
}

// Remove takes an entity out of the level, cancelling its delays and
// stopping its sounds. It is a no-op for removed entities.
func (l *Level) Remove(e Entity) {
	b := e.base()
	if b.removed {
		return
	}
	delete(l.byID, b.id)
	b.release()
}

func (l *Level) cleanup() {
	live := l.entities[:0]
	for _, e := range l.entities {
		if !e.Removed() {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(l.entities); i++ {
		l.entities[i] = nil
	}
	l.entities = live
}

// Tick advances the level by dt seconds of wall time. Everything inside the
// level runs dt*speed seconds of level time.
func (l *Level) Tick(dt float64) {
	if !l.loopActive {
		return
	}
	l.speed += dt * SpeedAcceleration
	sdt := dt * l.speed

	l.bird.Update(sdt)

	snapshot := make([]Entity, len(l.entities))
	copy(snapshot, l.entities)
	for _, e := range snapshot {
		if !e.Removed() {
			e.Update(sdt)
		}
	}
	l.cleanup()

	l.sched.Tick(sdt)
	l.cleanup()

	l.updateBackground()
}

// SpawnBean drops a bean of type t at column x. Speed scales the fall speed.
func (l *Level) SpawnBean(t BeanType, x, y, speed float64) *Bean {
	b := newBean(l, t, x, y, speed)
	l.Add(b)
	return b
}

func (l *Level) scheduleBean() {
	interval := BeanFrequency * (0.5 + l.rng.Float64()) / math.Pow(l.speed, 1.5)
	l.sched.Set(spawnKey, interval, l.spawnRandomBean)
}

func (l *Level) spawnRandomBean() {
	t := BeanGreen
	roll := l.rng.Float64()
	switch {
	case l.score >= superBeanMinScore && roll < superBeanChance:
		t = BeanSuper
	case roll < superBeanChance+pinkBeanChance:
		t = BeanPink
	}
	col := l.rng.Intn(l.W)
	l.SpawnBean(t, float64(col)+0.5, BeanHeight/2, 0.75+0.5*l.rng.Float64())
	l.scheduleBean()
}

// SpawnScore adds v to the score and shows it at pos. Only the values of
// the score palette are accepted.
func (l *Level) SpawnScore(v int, pos core.Vec) {
	if !validScore(v) {
		l.logger.Warn("invalid score value", "value", v)
		return
	}
	l.score += v
	l.playSound(SoundScore)
	l.Add(newScoreText(l, v, pos))
}

// tileIndex maps a world x to a tile, clamping out-of-range results.
func (l *Level) tileIndex(x float64) int {
	i := core.Floor(x)
	if !l.tiles.InRange(i) {
		c := core.Clamp(i, 0, l.W-1)
		l.logger.Warn("tile index out of range", "index", i, "clamped", c)
		return c
	}
	return i
}

func (l *Level) playSound(name string) {
	l.sounds.Sound(name).Play(audio.LoopOnce)
}

func (l *Level) scheduleGameOver() {
	l.sched.Create(gameOverKey, PyoroDeathDuration, func() {
		l.sched.Remove(gameOverKey)
		l.over = true
		l.logger.Debug("game over", "score", l.score, "speed", l.speed)
	})
}

// StyleTier returns the palette tier for the current score.
func (l *Level) StyleTier() int { return StyleTier(l.score) }

// Background returns the current background id.
func (l *Level) Background() int { return l.background }

// Transition returns the background being faded out and the fade progress
// in [0,1]. Progress is 1 when no fade is running.
func (l *Level) Transition() (prev int, progress float64) {
	elapsed, ok := l.sched.Elapsed(transitionKey)
	if !ok {
		return l.background, 1
	}
	return l.prevBackground, core.ClampF(elapsed/BackgroundTransitionDuration, 0, 1)
}

func (l *Level) updateBackground() {
	if BackgroundAnimated(l.score) {
		l.sched.Create(animatedKey, BackgroundAnimatedDuration, l.advanceAnimation)
	} else {
		l.sched.Remove(animatedKey)
	}

	id := BackgroundID(l.score, l.animFrame)
	if id == l.background {
		return
	}
	old := l.background
	l.background = id
	if BackgroundAnimated(l.score) && old >= firstAnimatedBackground {
		return
	}
	l.prevBackground = old
	l.sched.Set(transitionKey, BackgroundTransitionDuration, func() {
		l.sched.Remove(transitionKey)
		l.prevBackground = l.background
	})
}

func (l *Level) advanceAnimation() {
	l.animFrame = (l.animFrame + 1) % animatedFrames
	l.sched.Set(animatedKey, BackgroundAnimatedDuration, l.advanceAnimation)
}
