package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pyoro/internal/config"
	"github.com/vovakirdan/tui-pyoro/internal/core"
)

// Terminals only report key presses and auto-repeats. A held direction is
// considered released when its repeats stop arriving.
const (
	firstRepeatDelay = 500 * time.Millisecond
	repeatInterval   = 100 * time.Millisecond
)

// KeyMap holds the in-game key bindings.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Capacity key.Binding
	Pause    key.Binding
	Confirm  key.Binding
	Back     key.Binding
	Restart  key.Binding
	Quit     key.Binding
}

// NewKeyMap builds the bindings from the keyboard settings.
func NewKeyMap(kb config.Keyboard) KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys(kb.Left...),
			key.WithHelp(helpKeys(kb.Left), "left"),
		),
		Right: key.NewBinding(
			key.WithKeys(kb.Right...),
			key.WithHelp(helpKeys(kb.Right), "right"),
		),
		Capacity: key.NewBinding(
			key.WithKeys(kb.Action...),
			key.WithHelp(helpKeys(kb.Action), "tongue/shoot"),
		),
		Pause: key.NewBinding(
			key.WithKeys(kb.Pause...),
			key.WithHelp(helpKeys(kb.Pause), "pause"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "menu"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpKeys joins the first two key names for the help bar.
func helpKeys(keys []string) string {
	out := ""
	for i, k := range keys {
		if i == 2 {
			break
		}
		if k == " " {
			k = "space"
		}
		if i > 0 {
			out += "/"
		}
		out += k
	}
	return out
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Capacity, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Capacity},
		{k.Pause, k.Confirm, k.Back, k.Restart, k.Quit},
	}
}

type heldKey struct {
	down     bool
	last     time.Duration
	repeated bool
}

// KeyMapper translates Bubble Tea key messages into press/release events.
type KeyMapper struct {
	keys KeyMap
	held [2]heldKey // Left, right
}

// NewKeyMapper creates a key mapper for the given bindings.
func NewKeyMapper(keys KeyMap) *KeyMapper {
	return &KeyMapper{keys: keys}
}

// Keys returns the bindings in use.
func (km *KeyMapper) Keys() KeyMap {
	return km.keys
}

// SetKeys swaps the bindings, releasing any held direction into frame.
func (km *KeyMapper) SetKeys(keys KeyMap, frame *core.InputFrame) {
	km.ReleaseAll(frame)
	km.keys = keys
}

// MapKey translates a key message to an action.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, km.keys.Quit):
		return core.ActionQuit
	case key.Matches(msg, km.keys.Left):
		return core.ActionLeft
	case key.Matches(msg, km.keys.Right):
		return core.ActionRight
	case key.Matches(msg, km.keys.Capacity):
		return core.ActionCapacity
	case key.Matches(msg, km.keys.Pause):
		return core.ActionPause
	case key.Matches(msg, km.keys.Confirm):
		return core.ActionConfirm
	case key.Matches(msg, km.keys.Back):
		return core.ActionBack
	case key.Matches(msg, km.keys.Restart):
		return core.ActionRestart
	}
	return core.ActionNone
}

// Translate appends the events caused by msg at time now to frame.
// Returns the mapped action.
func (km *KeyMapper) Translate(msg tea.KeyMsg, now time.Duration, frame *core.InputFrame) core.Action {
	a := km.MapKey(msg)
	switch a {
	case core.ActionNone:
	case core.ActionLeft, core.ActionRight:
		km.direction(a, now, frame)
	default:
		frame.Press(a)
	}
	return a
}

func (km *KeyMapper) direction(a core.Action, now time.Duration, frame *core.InputFrame) {
	idx, other := 0, 1
	if a == core.ActionRight {
		idx, other = 1, 0
	}
	// The opposite direction can't be auto-repeating while this one is.
	if km.held[other].down {
		km.held[other] = heldKey{}
		frame.Release(directionAction(other))
	}

	h := &km.held[idx]
	if h.down {
		h.repeated = true
		h.last = now
		return
	}
	*h = heldKey{down: true, last: now}
	frame.Press(a)
}

// Expire releases directions whose repeats stopped before now.
func (km *KeyMapper) Expire(now time.Duration, frame *core.InputFrame) {
	for i := range km.held {
		h := &km.held[i]
		if !h.down {
			continue
		}
		limit := firstRepeatDelay
		if h.repeated {
			limit = repeatInterval
		}
		if now-h.last > limit {
			*h = heldKey{}
			frame.Release(directionAction(i))
		}
	}
}

// ReleaseAll releases every held direction.
func (km *KeyMapper) ReleaseAll(frame *core.InputFrame) {
	for i := range km.held {
		if km.held[i].down {
			km.held[i] = heldKey{}
			frame.Release(directionAction(i))
		}
	}
}

// Held reports whether the direction with index 0 (left) or 1 (right) is down.
func (km *KeyMapper) Held(i int) bool {
	return km.held[i].down
}

func directionAction(i int) core.Action {
	if i == 0 {
		return core.ActionLeft
	}
	return core.ActionRight
}
