// Package publish forwards controller events to external consumers over
// MQTT and WebSocket.
package publish

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/nexusgame/hydra/apitypes"
	"github.com/nexusgame/hydra/hydra"
)

// Sink receives controller events in wire form. Send must not block.
type Sink interface {
	Send(ev apitypes.Event)
}

// NewEvent builds the wire form of an event.
func NewEvent(slot hydra.Slot, kind hydra.EventKind, value ...float64) apitypes.Event {
	return apitypes.Event{Slot: slot.String(), Kind: kind.String(), Value: value}
}

// Listener adapts sinks to hydra.Listener.
func Listener(sinks ...Sink) hydra.Listener { return listener(sinks) }

type listener []Sink

func (l listener) send(ev apitypes.Event) {
	for _, s := range l {
		s.Send(ev)
	}
}

func (l listener) TriggerPressed(slot hydra.Slot, v float64) {
	l.send(NewEvent(slot, hydra.TriggerPress, v))
}

func (l listener) TriggerReleased(slot hydra.Slot, v float64) {
	l.send(NewEvent(slot, hydra.TriggerRelease, v))
}

func (l listener) PositionChanged(slot hydra.Slot, p mgl64.Vec3) {
	l.send(NewEvent(slot, hydra.Position, p.X(), p.Y(), p.Z()))
}

func (l listener) RotationChanged(slot hydra.Slot, q mgl64.Quat) {
	l.send(NewEvent(slot, hydra.Rotation, q.X(), q.Y(), q.Z(), q.W))
}

func (l listener) StickMoved(slot hydra.Slot, s mgl64.Vec2) {
	l.send(NewEvent(slot, hydra.Stick, s.X(), s.Y()))
}
