// Package input selects the active input backend and drives it from a
// fixed-rate scheduler.
package input

import (
	"fmt"
	"strings"
)

// Mode is the active input backend.
type Mode int

const (
	ModeUndefined Mode = iota - 1
	ModeMouseKeyboard
	ModeGamepad
	ModeHydra
)

func (m Mode) String() string {
	switch m {
	case ModeMouseKeyboard:
		return "keyboard"
	case ModeGamepad:
		return "gamepad"
	case ModeHydra:
		return "hydra"
	default:
		return "undefined"
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keyboard", "mouse", "mousekeyboard":
		return ModeMouseKeyboard, nil
	case "gamepad":
		return ModeGamepad, nil
	case "hydra":
		return ModeHydra, nil
	}
	return ModeUndefined, fmt.Errorf("unknown input mode %q", s)
}
