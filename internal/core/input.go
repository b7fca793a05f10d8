package core

import "time"

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone     Action = iota
	ActionLeft            // A, Left arrow - walk left / menu left
	ActionRight           // D, Right arrow - walk right / menu right
	ActionCapacity        // Space, Up - stick out the tongue or shoot
	ActionPause           // P, Escape - pause/unpause game
	ActionConfirm         // Enter - confirm selection in menu
	ActionBack            // B - go back to the main menu
	ActionRestart         // R - restart game after game over
	ActionQuit            // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionCapacity:
		return "Action"
	case ActionPause:
		return "Pause"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputEvent is a single press or release of an action.
type InputEvent struct {
	Action Action
	Down   bool
	// At is the platform timestamp of the event, relative to program start.
	At time.Duration
}

// InputFrame holds everything the platform delivers for one simulation tick:
// the elapsed time and the ordered press/release events since the last tick.
type InputFrame struct {
	// Dt is the frame delta in seconds.
	Dt     float64
	Events []InputEvent
}

// NewInputFrame creates an empty input frame with the given delta.
func NewInputFrame(dt float64) InputFrame {
	return InputFrame{Dt: dt}
}

// Press appends a press event for the action.
func (f *InputFrame) Press(a Action) {
	f.Events = append(f.Events, InputEvent{Action: a, Down: true})
}

// Release appends a release event for the action.
func (f *InputFrame) Release(a Action) {
	f.Events = append(f.Events, InputEvent{Action: a, Down: false})
}

// Set marks an action as pressed for this frame.
func (f *InputFrame) Set(a Action) {
	f.Press(a)
}

// Has returns true if the action was pressed during this frame.
func (f InputFrame) Has(a Action) bool {
	for _, e := range f.Events {
		if e.Action == a && e.Down {
			return true
		}
	}
	return false
}

// Released returns true if the action was released during this frame.
func (f InputFrame) Released(a Action) bool {
	for _, e := range f.Events {
		if e.Action == a && !e.Down {
			return true
		}
	}
	return false
}

// Clear drops all events, keeping the backing storage.
func (f *InputFrame) Clear() {
	f.Events = f.Events[:0]
	f.Dt = 0
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := InputFrame{Dt: f.Dt}
	if len(f.Events) > 0 {
		clone.Events = make([]InputEvent, len(f.Events))
		copy(clone.Events, f.Events)
	}
	return clone
}
