package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pyoro/internal/games/pyoro"
	"github.com/vovakirdan/tui-pyoro/internal/storage"
)

const (
	cardWidth = 26  // Width of one variant card
	maxRuns   = 100 // Runs loaded per variant
)

var variants = [2]pyoro.Variant{pyoro.VariantTongue, pyoro.VariantShoot}

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boardFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	cardStyle = boardFrameStyle.Width(cardWidth)
	cardOn    = cardStyle.BorderForeground(lipgloss.Color("229"))
	lockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Switch key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp implements help.KeyMap.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Up, k.Down, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Switch, k.Up, k.Down}, {k.Back, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
		Switch: key.NewBinding(key.WithKeys("left", "right", "tab", "h", "l"), key.WithHelp("←/→", "pyoro/pyoro 2")),
		Back:   key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("b", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// variantBoard is what the screen knows about one variant.
type variantBoard struct {
	runs  []storage.Run
	stats *storage.GameStats
}

// ScoreboardModel shows the run history of both Pyoro variants.
type ScoreboardModel struct {
	store    *storage.Store
	boards   [2]variantBoard
	best     [2]int
	selected int

	table table.Model
	help  help.Model
	keys  ScoreboardKeyMap

	width, height int
	quitting      bool
	goingBack     bool
	embedded      bool // Back returns to the caller instead of ending the program
}

// NewScoreboardModel loads both variants from store. A nil store shows an
// empty board.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.help.Width = width
	m.reload()
	m.table = m.newTable()
	m.fillTable()
	return m
}

// reload reads every variant's runs and stats from the store.
func (m *ScoreboardModel) reload() {
	if m.store == nil {
		return
	}
	if hs, err := m.store.HighScores(); err == nil {
		m.best = hs
	}
	for i, v := range variants {
		var b variantBoard
		if runs, err := m.store.TopScores(v.GameID(), maxRuns); err == nil {
			b.runs = runs
		}
		if stats, err := m.store.GetGameStats(v.GameID()); err == nil {
			b.stats = stats
		}
		m.boards[i] = b
	}
}

func (m ScoreboardModel) newTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Score", Width: 8},
		{Title: "Tier", Width: 4},
		{Title: "Speed", Width: 6},
		{Title: "Length", Width: 7},
		{Title: "Seed", Width: 10},
		{Title: "Played", Width: 12},
	}
	// cards, borders, stats and help take the rest
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-14, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// fillTable shows the selected variant's runs, best first.
func (m *ScoreboardModel) fillTable() {
	runs := m.boards[m.selected].runs
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Score),
			strconv.Itoa(pyoro.StyleTier(r.Score)),
			fmt.Sprintf("x%.2f", r.Speed),
			formatDuration(r.Duration),
			strconv.FormatInt(r.Seed, 10),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Selected returns the variant whose runs are listed.
func (m ScoreboardModel) Selected() pyoro.Variant { return variants[m.selected] }

// ShootUnlocked reports whether the best Pyoro round unlocks Pyoro 2.
func (m ScoreboardModel) ShootUnlocked() bool {
	return m.best[pyoro.VariantTongue] >= pyoro.ShootUnlockScore
}

// Init implements tea.Model.
func (m ScoreboardModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.embedded {
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Switch):
			m.selected = 1 - m.selected
			m.fillTable()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.newTable()
		m.fillTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString(centerText(boardTitleStyle.Render("PYORO HIGH SCORES"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.cards(), m.width))
	b.WriteString("\n")

	var runs string
	if len(m.boards[m.selected].runs) == 0 {
		runs = boardDimStyle.Italic(true).Padding(1, 4).
			Render("No rounds yet.\nEat some beans to set a high score!")
	} else {
		runs = m.table.View()
	}
	b.WriteString(centerText(boardFrameStyle.Render(runs), m.width))
	b.WriteString("\n")

	if line := m.statsLine(); line != "" {
		b.WriteString(centerText(boardDimStyle.Render(line), m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(boardDimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// cards renders one summary box per variant, the selected one highlighted.
func (m ScoreboardModel) cards() string {
	out := make([]string, len(variants))
	for i, v := range variants {
		var c strings.Builder
		c.WriteString(lipgloss.NewStyle().Bold(true).Render(v.Title()))
		c.WriteString("\n")
		fmt.Fprintf(&c, "Best  %d\n", m.best[i])
		rounds := 0
		if st := m.boards[i].stats; st != nil {
			rounds = st.GamesCount
		}
		fmt.Fprintf(&c, "Rounds  %d", rounds)
		if v == pyoro.VariantShoot {
			c.WriteString("\n")
			if m.ShootUnlocked() {
				c.WriteString("unlocked")
			} else {
				c.WriteString(lockStyle.Render(fmt.Sprintf("locked: %d in Pyoro", pyoro.ShootUnlockScore)))
			}
		}

		style := cardStyle
		if i == m.selected {
			style = cardOn
		}
		out[i] = style.Render(c.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out[0], "  ", out[1])
}

// statsLine summarizes the selected variant's history.
func (m ScoreboardModel) statsLine() string {
	st := m.boards[m.selected].stats
	if st == nil || st.GamesCount == 0 {
		return ""
	}
	return fmt.Sprintf("avg %.0f  top speed x%.2f  played %s  last %s",
		st.AvgScore, st.TopSpeed, formatDuration(st.PlayTime), st.LastPlayed.Format("Jan 02"))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// IsGoingBack reports whether the user left with back.
func (m ScoreboardModel) IsGoingBack() bool { return m.goingBack }

// IsQuitting reports whether the user asked to quit.
func (m ScoreboardModel) IsQuitting() bool { return m.quitting }

// RunScoreboard runs the scoreboard as its own program. It reports whether
// the user left with back rather than quit.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	final, err := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}

// centerText pads text on the left to center it within width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	pad := strings.Repeat(" ", (width-w)/2)
	if !strings.Contains(text, "\n") {
		return pad + text
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
