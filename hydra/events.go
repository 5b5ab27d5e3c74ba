package hydra

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// EventKind names the five event kinds a slot broadcasts.
type EventKind int

const (
	TriggerPress EventKind = iota
	TriggerRelease
	Position
	Rotation
	Stick
)

func (k EventKind) String() string {
	switch k {
	case TriggerPress:
		return "trigger_press"
	case TriggerRelease:
		return "trigger_release"
	case Position:
		return "position"
	case Rotation:
		return "rotation"
	case Stick:
		return "stick"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Listener observes every event kind of a slot.
type Listener interface {
	TriggerPressed(slot Slot, value float64)
	TriggerReleased(slot Slot, value float64)
	PositionChanged(slot Slot, position mgl64.Vec3)
	RotationChanged(slot Slot, rotation mgl64.Quat)
	StickMoved(slot Slot, stick mgl64.Vec2)
}

// Callbacks is the event sink of a single slot. Registration is append-only
// and broadcasts run synchronously in registration order.
//
// A panicking listener is recovered and logged; remaining listeners still
// receive the value.
type Callbacks struct {
	slot   Slot
	logger *slog.Logger

	triggerPress   []func(float64)
	triggerRelease []func(float64)
	position       []func(mgl64.Vec3)
	rotation       []func(mgl64.Quat)
	stick          []func(mgl64.Vec2)
}

func newCallbacks(slot Slot, logger *slog.Logger) *Callbacks {
	return &Callbacks{slot: slot, logger: logger}
}

// Slot returns the controller this sink belongs to.
func (c *Callbacks) Slot() Slot { return c.slot }

func (c *Callbacks) OnTriggerPress(fn func(value float64)) {
	c.triggerPress = append(c.triggerPress, fn)
}

func (c *Callbacks) OnTriggerRelease(fn func(value float64)) {
	c.triggerRelease = append(c.triggerRelease, fn)
}

func (c *Callbacks) OnPosition(fn func(position mgl64.Vec3)) {
	c.position = append(c.position, fn)
}

func (c *Callbacks) OnRotation(fn func(rotation mgl64.Quat)) {
	c.rotation = append(c.rotation, fn)
}

func (c *Callbacks) OnStick(fn func(stick mgl64.Vec2)) {
	c.stick = append(c.stick, fn)
}

// Subscribe registers l for all five event kinds of this slot.
func (c *Callbacks) Subscribe(l Listener) {
	slot := c.slot
	c.OnTriggerPress(func(v float64) { l.TriggerPressed(slot, v) })
	c.OnTriggerRelease(func(v float64) { l.TriggerReleased(slot, v) })
	c.OnPosition(func(p mgl64.Vec3) { l.PositionChanged(slot, p) })
	c.OnRotation(func(r mgl64.Quat) { l.RotationChanged(slot, r) })
	c.OnStick(func(s mgl64.Vec2) { l.StickMoved(slot, s) })
}

// Len returns the number of listeners registered for kind.
func (c *Callbacks) Len(kind EventKind) int {
	switch kind {
	case TriggerPress:
		return len(c.triggerPress)
	case TriggerRelease:
		return len(c.triggerRelease)
	case Position:
		return len(c.position)
	case Rotation:
		return len(c.rotation)
	case Stick:
		return len(c.stick)
	}
	return 0
}

func (c *Callbacks) broadcastTriggerPress(v float64) {
	for i, fn := range c.triggerPress {
		c.invoke(TriggerPress, i, func() { fn(v) })
	}
}

func (c *Callbacks) broadcastTriggerRelease(v float64) {
	for i, fn := range c.triggerRelease {
		c.invoke(TriggerRelease, i, func() { fn(v) })
	}
}

func (c *Callbacks) broadcastPosition(p mgl64.Vec3) {
	for i, fn := range c.position {
		c.invoke(Position, i, func() { fn(p) })
	}
}

func (c *Callbacks) broadcastRotation(r mgl64.Quat) {
	for i, fn := range c.rotation {
		c.invoke(Rotation, i, func() { fn(r) })
	}
}

func (c *Callbacks) broadcastStick(s mgl64.Vec2) {
	for i, fn := range c.stick {
		c.invoke(Stick, i, func() { fn(s) })
	}
}

func (c *Callbacks) invoke(kind EventKind, index int, call func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("listener failed", "slot", c.slot, "event", kind, "listener", index, "panic", r)
		}
	}()
	call()
}
