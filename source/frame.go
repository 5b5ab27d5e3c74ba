// Package source provides hydra.Source implementations fed by remote feeders,
// serial devices and recorded sessions.
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nexusgame/hydra/hydra"
)

// FrameSize is the encoded size of a Frame.
const FrameSize = 1 + 10*4

// Frame is one raw controller sample tagged with its slot.
//
// Wire format: fixed 41 bytes, little-endian.
// slot:u8 trigger:f32 px:f32 py:f32 pz:f32 qx:f32 qy:f32 qz:f32 qw:f32 sx:f32 sy:f32
type Frame struct {
	Slot   hydra.Slot
	Sample hydra.Sample
}

// MarshalBinary encodes the frame to the fixed 41-byte wire format.
func (f Frame) MarshalBinary() ([]byte, error) {
	if !f.Slot.Valid() {
		return nil, fmt.Errorf("%w: %d", hydra.ErrInvalidSlot, int(f.Slot))
	}
	b := make([]byte, FrameSize)
	b[0] = byte(f.Slot)
	o := 1

	putF32 := func(v float64) {
		binary.LittleEndian.PutUint32(b[o:o+4], math.Float32bits(float32(v)))
		o += 4
	}

	s := f.Sample
	putF32(s.Trigger)
	putF32(s.Position.X())
	putF32(s.Position.Y())
	putF32(s.Position.Z())
	putF32(s.Rotation.X())
	putF32(s.Rotation.Y())
	putF32(s.Rotation.Z())
	putF32(s.Rotation.W)
	putF32(s.StickX)
	putF32(s.StickY)

	return b, nil
}

// UnmarshalBinary decodes a frame from the fixed 41-byte wire format.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return io.ErrUnexpectedEOF
	}
	slot := hydra.Slot(data[0])
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", hydra.ErrInvalidSlot, data[0])
	}
	o := 1

	getF32 := func() float64 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[o : o+4]))
		o += 4
		return float64(v)
	}

	f.Slot = slot
	f.Sample.Trigger = getF32()
	f.Sample.Position = mgl64.Vec3{getF32(), getF32(), getF32()}
	qx, qy, qz := getF32(), getF32(), getF32()
	f.Sample.Rotation = mgl64.Quat{W: getF32(), V: mgl64.Vec3{qx, qy, qz}}
	f.Sample.StickX = getF32()
	f.Sample.StickY = getF32()

	return nil
}
