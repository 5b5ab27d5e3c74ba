// Package hydra turns raw six-degree-of-freedom controller samples into a
// calibrated coordinate frame and dispatches per-controller input events.
package hydra

import (
	"errors"
	"fmt"
	"strings"
)

// Slot identifies one of the two physical controllers.
type Slot int

const (
	SlotUndefined Slot = iota - 1
	Left
	Right
	// SlotCount is the number of live slots. Never a live value.
	SlotCount
)

// ErrInvalidSlot is returned when a slot is outside [Left, SlotCount).
var ErrInvalidSlot = errors.New("invalid controller slot")

var slotOrder = [SlotCount]Slot{Left, Right}

// Slots returns the live slots in their fixed update order.
func Slots() [SlotCount]Slot { return slotOrder }

// Valid reports whether s is a live slot.
func (s Slot) Valid() bool { return s >= Left && s < SlotCount }

func (s Slot) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case SlotCount:
		return "count"
	default:
		return "undefined"
	}
}

// ParseSlot parses "left" or "right" (case-insensitive).
func ParseSlot(name string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return SlotUndefined, fmt.Errorf("%w: %q", ErrInvalidSlot, name)
}
