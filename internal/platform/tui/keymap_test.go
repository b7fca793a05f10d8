package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pyoro/internal/config"
	"github.com/vovakirdan/tui-pyoro/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestMapper() *KeyMapper {
	return NewKeyMapper(NewKeyMap(config.DefaultKeyboard()))
}

func TestMapKey(t *testing.T) {
	km := newTestMapper()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want core.Action
	}{
		{"left arrow", tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{"a", runeKey('a'), core.ActionLeft},
		{"right arrow", tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{"d", runeKey('d'), core.ActionRight},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionCapacity},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, core.ActionCapacity},
		{"p", runeKey('p'), core.ActionPause},
		{"esc", tea.KeyMsg{Type: tea.KeyEscape}, core.ActionPause},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm},
		{"b", runeKey('b'), core.ActionBack},
		{"r", runeKey('r'), core.ActionRestart},
		{"q", runeKey('q'), core.ActionQuit},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{"unbound", runeKey('z'), core.ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := km.MapKey(tt.msg); got != tt.want {
				t.Errorf("MapKey(%q) = %v, want %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestCustomBindings(t *testing.T) {
	kb := config.DefaultKeyboard()
	kb.Left = []string{"h"}
	km := NewKeyMapper(NewKeyMap(kb))

	if got := km.MapKey(runeKey('h')); got != core.ActionLeft {
		t.Errorf("h = %v, want Left", got)
	}
	if got := km.MapKey(runeKey('a')); got != core.ActionNone {
		t.Errorf("a = %v, want None after rebinding", got)
	}
}

func TestHeldDirectionRelease(t *testing.T) {
	km := newTestMapper()
	var frame core.InputFrame
	left := tea.KeyMsg{Type: tea.KeyLeft}

	km.Translate(left, 0, &frame)
	if !frame.Has(core.ActionLeft) {
		t.Fatal("first key should press left")
	}
	frame.Clear()

	// auto-repeat doesn't press again
	km.Translate(left, 400*time.Millisecond, &frame)
	if len(frame.Events) != 0 {
		t.Errorf("repeat produced events: %+v", frame.Events)
	}

	// once repeating, 100ms of silence releases
	km.Expire(450*time.Millisecond, &frame)
	if len(frame.Events) != 0 {
		t.Errorf("released too early: %+v", frame.Events)
	}
	km.Expire(520*time.Millisecond, &frame)
	if !frame.Released(core.ActionLeft) {
		t.Error("left should be released after repeats stop")
	}
	if km.Held(0) {
		t.Error("left still held")
	}
}

func TestFirstRepeatDelay(t *testing.T) {
	km := newTestMapper()
	var frame core.InputFrame

	km.Translate(runeKey('d'), 0, &frame)
	frame.Clear()

	km.Expire(300*time.Millisecond, &frame)
	if len(frame.Events) != 0 {
		t.Error("single press should survive the keyboard's repeat delay")
	}
	km.Expire(600*time.Millisecond, &frame)
	if !frame.Released(core.ActionRight) {
		t.Error("right should be released after the first repeat delay")
	}
}

func TestOppositeDirectionReleases(t *testing.T) {
	km := newTestMapper()
	var frame core.InputFrame

	km.Translate(runeKey('a'), 0, &frame)
	frame.Clear()
	km.Translate(runeKey('d'), 50*time.Millisecond, &frame)

	if len(frame.Events) != 2 {
		t.Fatalf("events = %+v, want release left then press right", frame.Events)
	}
	if frame.Events[0].Action != core.ActionLeft || frame.Events[0].Down {
		t.Errorf("first event = %+v, want left release", frame.Events[0])
	}
	if frame.Events[1].Action != core.ActionRight || !frame.Events[1].Down {
		t.Errorf("second event = %+v, want right press", frame.Events[1])
	}
}

func TestReleaseAll(t *testing.T) {
	km := newTestMapper()
	var frame core.InputFrame

	km.Translate(runeKey('a'), 0, &frame)
	frame.Clear()
	km.ReleaseAll(&frame)
	if !frame.Released(core.ActionLeft) {
		t.Error("ReleaseAll should release left")
	}
	frame.Clear()
	km.ReleaseAll(&frame)
	if len(frame.Events) != 0 {
		t.Error("nothing left to release")
	}
}

func TestHelpKeys(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"left", "a"}, "left/a"},
		{[]string{" ", "up", "w"}, "space/up"},
		{[]string{"p"}, "p"},
	}
	for _, tt := range tests {
		if got := helpKeys(tt.in); got != tt.want {
			t.Errorf("helpKeys(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
