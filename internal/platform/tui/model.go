package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pyoro/internal/config"
	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/registry"
	"github.com/vovakirdan/tui-pyoro/internal/storage"
)

// helpRows is the number of terminal rows below the game screen.
const helpRows = 1

// Resizer is implemented by games that accept a new screen size without
// restarting the current round.
type Resizer interface {
	Resize(w, h int)
}

// Options configure a Model. Every field may be left zero.
type Options struct {
	Store    *storage.Store
	Keyboard config.Keyboard
	Logger   *log.Logger

	// Settings delivers reloaded settings; OnSettings applies the parts
	// the model doesn't own, such as mixer volumes.
	Settings   <-chan config.Settings
	OnSettings func(config.Settings)
}

// settingsMsg carries a reloaded settings file into the update loop.
type settingsMsg struct {
	settings config.Settings
	ok       bool
}

// Model is the Bubble Tea model running one game.
type Model struct {
	game   registry.Game
	screen *core.Screen
	opts   Options
	logger *log.Logger
	config core.RuntimeConfig

	keys  *KeyMapper
	help  help.Model
	frame core.InputFrame
	state core.GameState

	start    time.Time
	lastTick time.Time

	roundTime  float64
	inRound    bool
	scoreSaved bool // Whether score has been saved for current game over
	quitting   bool

	scores *ScoreboardModel
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if len(opts.Keyboard.Left) == 0 {
		opts.Keyboard = config.DefaultKeyboard()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		game:   game,
		screen: core.NewScreen(cfg.ScreenW, gameHeight(cfg.ScreenH)),
		opts:   opts,
		logger: logger,
		config: cfg,
		keys:   NewKeyMapper(NewKeyMap(opts.Keyboard)),
		help:   h,
		start:  time.Now(),
	}
}

func gameHeight(h int) int {
	return core.Max(h-helpRows, 1)
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	cfg := m.config
	cfg.ScreenH = gameHeight(cfg.ScreenH)
	m.game.Reset(cfg)

	return tea.Batch(tickCmd(m.config.TickRate), waitSettings(m.opts.Settings))
}

// waitSettings blocks on the next reloaded settings value.
func waitSettings(ch <-chan config.Settings) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		return settingsMsg{settings: s, ok: ok}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case settingsMsg:
		if !msg.ok {
			return m, nil
		}
		m.keys.SetKeys(NewKeyMap(msg.settings.Keyboard), &m.frame)
		if m.opts.OnSettings != nil {
			m.opts.OnSettings(msg.settings)
		}
		return m, waitSettings(m.opts.Settings)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.scores != nil {
		sm, cmd := m.scores.Update(msg)
		sb := sm.(ScoreboardModel)
		switch {
		case sb.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case sb.IsGoingBack():
			m.scores = nil
			// skip the time spent on the table
			m.lastTick = time.Time{}
			return m, nil
		}
		m.scores = &sb
		return m, cmd
	}

	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	m.keys.Translate(msg, time.Since(m.start), &m.frame)
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, gameHeight(msg.Height))
	m.help.Width = msg.Width

	// The running round keeps its world; the next one uses the new size.
	if r, ok := m.game.(Resizer); ok {
		r.Resize(msg.Width, gameHeight(msg.Height))
	}

	if m.scores != nil {
		sm, _ := m.scores.Update(msg)
		sb := sm.(ScoreboardModel)
		m.scores = &sb
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.scores != nil {
		return m, tickCmd(m.config.TickRate)
	}

	dt := frameDelta(m.lastTick, now)
	m.lastTick = now

	m.keys.Expire(now.Sub(m.start), &m.frame)
	m.frame.Dt = dt

	result := m.game.Step(m.frame)
	m.frame.Clear()
	m.track(result.State, dt)

	if m.state.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	if m.state.Scoreboard {
		m.keys.ReleaseAll(&m.frame)
		sb := NewScoreboardModel(m.opts.Store, m.config.ScreenW, m.config.ScreenH)
		sb.embedded = true
		m.scores = &sb
	}

	return m, tickCmd(m.config.TickRate)
}

// track follows round boundaries and records finished rounds.
func (m *Model) track(state core.GameState, dt float64) {
	playing := !state.InMenu && !state.Paused && !state.GameOver
	if playing && !m.inRound {
		m.inRound = true
		m.roundTime = 0
		m.scoreSaved = false
	}
	if playing {
		m.roundTime += dt
	}
	if state.InMenu {
		m.inRound = false
	}

	if state.GameOver && m.inRound && !m.scoreSaved {
		m.saveRun(state)
		m.scoreSaved = true
		m.inRound = false
	}
	m.state = state
}

func (m *Model) saveRun(state core.GameState) {
	if m.opts.Store == nil || state.Score <= 0 {
		return
	}
	run := storage.Run{
		GameID:   m.game.ID(),
		Score:    state.Score,
		Speed:    state.Speed,
		Duration: time.Duration(m.roundTime * float64(time.Second)),
		Seed:     m.config.Seed,
	}
	if _, err := m.opts.Store.SaveRun(run); err != nil {
		m.logger.Error("cannot save score", "game", run.GameID, "err", err)
		return
	}
	m.logger.Debug("score saved", "game", run.GameID, "score", run.Score)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(config.UserDir(), "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("cannot create screenshot directory", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "path", path, "err", err)
	}
}

// State returns the game state after the last tick.
func (m Model) State() core.GameState {
	return m.state
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.scores != nil {
		return m.scores.View()
	}

	m.game.Render(m.screen)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys.Keys())))
	return b.String()
}

// Run starts the Bubble Tea program with the given model.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
