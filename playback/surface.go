/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playback

import "time"

// After schedules fn to run once, after d, on the same loop that owns the
// Scheduler. A non-positive d means "as soon as the loop is free".
type After func(d time.Duration, fn func())

// Control is an input element the scheduler enables, disables or relabels.
type Control int

const (
	// DemoControl is the play button that triggered the run.
	DemoControl Control = iota
	// KeysControl is every value key of the active keypad.
	KeysControl
)

func (c Control) String() string {
	switch c {
	case DemoControl:
		return "demo"
	case KeysControl:
		return "keys"
	default:
		return "unknown"
	}
}

// Surface performs the visible side effects of a run. All methods are called
// from the scheduler's loop and must not block.
type Surface interface {
	SetControlDisabled(c Control, disabled bool)
	SetControlLabel(c Control, text string)

	// ApplyHighlight marks the key for value as active and reports whether
	// such a key exists. RemoveHighlight is only called for keys that did.
	ApplyHighlight(value Token, class string) bool
	RemoveHighlight(value Token, class string)

	ApplyOwnerActiveStyle(owner int)
	RestoreOwnerOriginalStyle(owner int)

	// Speak is best effort; an error is logged and playback continues.
	Speak(text string) error

	ShowInfoDialog(title, message string)
	RefreshDisplay()
}
