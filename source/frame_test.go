package source_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusgame/hydra/hydra"
	"github.com/nexusgame/hydra/source"
)

func TestFrameEncoding(t *testing.T) {
	f := source.Frame{
		Slot: hydra.Right,
		Sample: hydra.Sample{
			Trigger:  0.5,
			Position: mgl64.Vec3{2, 4, 6},
			Rotation: mgl64.Quat{W: 1, V: mgl64.Vec3{0.25, -0.5, 0}},
			StickX:   -1,
			StickY:   0.75,
		},
	}

	b, err := f.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, source.FrameSize)

	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(b[1:5])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(b[29:33])), "w follows x y z")

	var got source.Frame
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, f, got)
}

func TestFrameDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "short", data: make([]byte, source.FrameSize-1), wantErr: io.ErrUnexpectedEOF},
		{name: "bad slot", data: append([]byte{7}, make([]byte, source.FrameSize-1)...), wantErr: hydra.ErrInvalidSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f source.Frame
			assert.ErrorIs(t, f.UnmarshalBinary(tt.data), tt.wantErr)
		})
	}

	_, err := source.Frame{Slot: hydra.SlotCount}.MarshalBinary()
	assert.ErrorIs(t, err, hydra.ErrInvalidSlot)
}

type rawCapture struct{ frames int }

func (r *rawCapture) Log(in bool, data []byte) { r.frames++ }

func TestReadFrames(t *testing.T) {
	var buf bytes.Buffer
	for _, f := range []source.Frame{
		{Slot: hydra.Left, Sample: hydra.Sample{Trigger: 0.25}},
		{Slot: hydra.Right, Sample: hydra.Sample{Trigger: 1}},
		{Slot: hydra.Left, Sample: hydra.Sample{Trigger: 0.75}},
	} {
		b, err := f.MarshalBinary()
		require.NoError(t, err)
		buf.Write(b)
	}

	store := source.NewStore()
	raw := &rawCapture{}
	require.NoError(t, source.ReadFrames(context.Background(), &buf, store, raw))
	assert.Equal(t, 3, raw.frames)

	l, ok := store.Controller(hydra.Left)
	require.True(t, ok)
	assert.Equal(t, 0.75, l.Trigger)
	r, ok := store.Controller(hydra.Right)
	require.True(t, ok)
	assert.Equal(t, 1.0, r.Trigger)
}

func TestReadFramesTruncated(t *testing.T) {
	store := source.NewStore()
	err := source.ReadFrames(context.Background(), bytes.NewReader(make([]byte, 10)), store, nil)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReadFramesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := source.NewStore()
	assert.NoError(t, source.ReadFrames(ctx, bytes.NewReader(make([]byte, source.FrameSize)), store, nil))
	_, ok := store.Controller(hydra.Left)
	assert.False(t, ok)
}
