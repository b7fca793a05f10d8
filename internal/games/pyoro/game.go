package pyoro

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pyoro/internal/audio"
	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/registry"
)

func init() {
	registry.Register(VariantTongue.GameID(), func(env registry.Env) registry.Game {
		return New(env, VariantTongue)
	})
	registry.Register(VariantShoot.GameID(), func(env registry.Env) registry.Game {
		return New(env, VariantShoot)
	})
}

// Phase is the screen the game is on.
type Phase int

const (
	PhaseSplash Phase = iota
	PhaseMenu
	PhasePlaying
	PhasePaused
	PhaseGameOver
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseSplash:
		return "splash"
	case PhaseMenu:
		return "menu"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

const splashDuration = 2.0

// Main menu entries.
const (
	menuTongue = iota
	menuShoot
	menuScores
	menuQuit
	menuCount
)

var menuLabels = [menuCount]string{"Pyoro", "Pyoro 2", "Scores", "Quit"}

// Game wires platform input into a Level and walks through the title,
// menu, play, pause and game-over screens.
type Game struct {
	env     registry.Env
	logger  *log.Logger
	variant Variant

	runtime core.RuntimeConfig
	phase   Phase
	level   *Level
	rounds  int

	splashLeft float64
	menuIndex  int
	held       [2]bool // Left, right

	music     audio.Player
	musicName string

	state core.GameState
}

// New creates a game starting on variant v.
func New(env registry.Env, v Variant) *Game {
	if env.Sounds == nil {
		env.Sounds = audio.Silent{}
	}
	logger := env.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Game{env: env, logger: logger, variant: v, runtime: core.DefaultConfig()}
}

// ID returns the score table of the variant being played.
func (g *Game) ID() string { return g.variant.GameID() }

// Title returns the display name of the current variant.
func (g *Game) Title() string { return g.variant.Title() }

// Variant returns the variant being played or selected.
func (g *Game) Variant() Variant { return g.variant }

// Phase returns the current screen.
func (g *Game) Phase() Phase { return g.phase }

// Level returns the current level, or nil before the first round.
func (g *Game) Level() *Level { return g.level }

// Reset implements registry.Game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.runtime = cfg
	g.held = [2]bool{}
	if g.env.SkipMenu {
		g.startRound()
		return
	}
	g.phase = PhaseSplash
	g.splashLeft = splashDuration
	g.setMusic("title")
	g.syncState()
}

// Resize records a new screen size. The running level keeps its world;
// the next round is laid out for the new size.
func (g *Game) Resize(w, h int) {
	g.runtime.ScreenW = w
	g.runtime.ScreenH = h
}

// ShootUnlocked reports whether the second variant may be selected.
func (g *Game) ShootUnlocked() bool {
	if g.env.HighScores == nil {
		return false
	}
	return g.env.HighScores()[VariantTongue] >= ShootUnlockScore
}

func (g *Game) startRound() {
	w := core.Max(g.runtime.ScreenW/2, int(BirdWidth))
	h := core.Max(g.runtime.ScreenH-1, 4)
	seed := g.runtime.Seed
	if seed != 0 {
		seed += int64(g.rounds)
	}
	g.rounds++

	g.closeLevel()
	g.level = NewLevel(LevelConfig{
		Width:   w,
		Height:  h,
		Variant: g.variant,
		Seed:    seed,
		Sounds:  g.env.Sounds,
		Logger:  g.logger,
	})
	g.phase = PhasePlaying
	g.held = [2]bool{}
	g.setMusic(musicName(g.variant, 0))
	g.logger.Debug("round started", "game", g.ID(), "width", w, "height", h)
	g.syncState()
}

func musicName(v Variant, tier int) string {
	return fmt.Sprintf("%s_%d", v.GameID(), tier)
}

// Step implements registry.Game.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.state.Scoreboard = false

	switch g.phase {
	case PhaseSplash:
		g.stepSplash(in)
	case PhaseMenu:
		g.stepMenu(in)
	case PhasePlaying:
		g.stepPlaying(in)
	case PhasePaused:
		g.stepPaused(in)
	case PhaseGameOver:
		g.stepGameOver(in)
	}

	g.syncState()
	return core.StepResult{State: g.state}
}

func (g *Game) stepSplash(in core.InputFrame) {
	g.splashLeft -= in.Dt
	if g.splashLeft <= 0 || in.Has(core.ActionConfirm) || in.Has(core.ActionCapacity) {
		g.toMenu()
	}
	if in.Has(core.ActionQuit) {
		g.state.Quit = true
	}
}

func (g *Game) toMenu() {
	g.closeLevel()
	g.phase = PhaseMenu
	g.menuIndex = int(g.variant)
	g.setSpeed(1)
	g.setMusic("title")
}

func (g *Game) stepMenu(in core.InputFrame) {
	for _, ev := range in.Events {
		if !ev.Down {
			continue
		}
		switch ev.Action {
		case core.ActionLeft:
			g.menuIndex = (g.menuIndex + menuCount - 1) % menuCount
		case core.ActionRight:
			g.menuIndex = (g.menuIndex + 1) % menuCount
		case core.ActionConfirm, core.ActionCapacity:
			g.selectMenu()
		case core.ActionQuit, core.ActionBack:
			g.state.Quit = true
		}
		if g.phase != PhaseMenu || g.state.Quit {
			return
		}
	}
}

func (g *Game) selectMenu() {
	switch g.menuIndex {
	case menuTongue:
		g.variant = VariantTongue
		g.startRound()
	case menuShoot:
		if !g.ShootUnlocked() {
			return
		}
		g.variant = VariantShoot
		g.startRound()
	case menuScores:
		g.state.Scoreboard = true
	case menuQuit:
		g.state.Quit = true
	}
}

func (g *Game) stepPlaying(in core.InputFrame) {
	bird := g.level.Bird()
	for _, ev := range in.Events {
		switch ev.Action {
		case core.ActionLeft:
			g.held[0] = ev.Down
			if ev.Down {
				bird.EnableMove(-1)
			} else {
				bird.DisableMove(-1)
				if g.held[1] {
					bird.EnableMove(1)
				}
			}
		case core.ActionRight:
			g.held[1] = ev.Down
			if ev.Down {
				bird.EnableMove(1)
			} else {
				bird.DisableMove(1)
				if g.held[0] {
					bird.EnableMove(-1)
				}
			}
		case core.ActionCapacity:
			if ev.Down {
				bird.EnableCapacity()
			}
		case core.ActionPause:
			if ev.Down {
				g.pause()
				return
			}
		case core.ActionBack:
			if ev.Down {
				g.toMenu()
				return
			}
		case core.ActionQuit:
			if ev.Down {
				g.state.Quit = true
				return
			}
		}
	}

	// A held direction resumes walking once the tongue is back.
	if !bird.Moving() && !bird.Busy() && !bird.Dead() {
		switch {
		case g.held[0]:
			bird.EnableMove(-1)
		case g.held[1]:
			bird.EnableMove(1)
		}
	}

	g.level.Tick(in.Dt)

	g.setMusic(musicName(g.variant, g.level.StyleTier()))
	if g.env.FollowSpeed {
		g.setSpeed(g.level.Speed())
	}
	if g.level.Over() {
		g.phase = PhaseGameOver
		g.setSpeed(1)
		g.setMusic("")
		g.logger.Info("game over", "game", g.ID(), "score", g.level.Score())
	}
}

func (g *Game) pause() {
	g.phase = PhasePaused
	g.level.SetActive(false)
	if g.music != nil {
		g.music.Pause()
	}
}

func (g *Game) resume() {
	g.phase = PhasePlaying
	g.level.SetActive(true)
	if g.music != nil {
		g.music.Play(audio.LoopForever)
	}
}

func (g *Game) stepPaused(in core.InputFrame) {
	switch {
	case in.Has(core.ActionPause):
		g.resume()
	case in.Has(core.ActionBack):
		g.toMenu()
	case in.Has(core.ActionQuit):
		g.state.Quit = true
	}
}

func (g *Game) stepGameOver(in core.InputFrame) {
	switch {
	case in.Has(core.ActionRestart), in.Has(core.ActionConfirm):
		g.startRound()
	case in.Has(core.ActionBack):
		g.toMenu()
	case in.Has(core.ActionQuit):
		g.state.Quit = true
	}
}

// setMusic switches the looping track. An empty name stops the music.
func (g *Game) setMusic(name string) {
	if name == g.musicName {
		return
	}
	if g.music != nil {
		g.music.Stop()
		g.music = nil
	}
	g.musicName = name
	if name == "" {
		return
	}
	g.music = g.env.Sounds.Music(name)
	g.music.Play(audio.LoopForever)
}

func (g *Game) setSpeed(s float64) {
	if g.env.Speed != nil && g.env.FollowSpeed {
		g.env.Speed.SetSpeed(s)
	}
}

// Close stops the music and every sound of the running round.
func (g *Game) Close() {
	g.closeLevel()
	g.setMusic("")
}

// closeLevel ends the current round. The level stays readable until it is
// replaced.
func (g *Game) closeLevel() {
	if g.level != nil {
		g.level.Close()
	}
}

func (g *Game) syncState() {
	g.state.GameOver = g.phase == PhaseGameOver
	g.state.Paused = g.phase == PhasePaused
	g.state.InMenu = g.phase == PhaseSplash || g.phase == PhaseMenu
	if g.level != nil && !g.state.InMenu {
		g.state.Score = g.level.Score()
		g.state.Speed = g.level.Speed()
	} else {
		g.state.Score = 0
		g.state.Speed = 1
	}
}

// State implements registry.Game.
func (g *Game) State() core.GameState { return g.state }
