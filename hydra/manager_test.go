package hydra_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusgame/hydra/hydra"
)

type fakeSource struct {
	samples        map[hydra.Slot]hydra.Sample
	managerEnabled []bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{samples: map[hydra.Slot]hydra.Sample{}}
}

func (f *fakeSource) Controller(slot hydra.Slot) (hydra.Sample, bool) {
	s, ok := f.samples[slot]
	return s, ok
}

func (f *fakeSource) SetControllerManagerEnabled(enabled bool) {
	f.managerEnabled = append(f.managerEnabled, enabled)
}

type event struct {
	slot  hydra.Slot
	kind  hydra.EventKind
	value any
}

type recorder struct{ events []event }

func (r *recorder) TriggerPressed(s hydra.Slot, v float64) {
	r.events = append(r.events, event{s, hydra.TriggerPress, v})
}
func (r *recorder) TriggerReleased(s hydra.Slot, v float64) {
	r.events = append(r.events, event{s, hydra.TriggerRelease, v})
}
func (r *recorder) PositionChanged(s hydra.Slot, p mgl64.Vec3) {
	r.events = append(r.events, event{s, hydra.Position, p})
}
func (r *recorder) RotationChanged(s hydra.Slot, q mgl64.Quat) {
	r.events = append(r.events, event{s, hydra.Rotation, q})
}
func (r *recorder) StickMoved(s hydra.Slot, v mgl64.Vec2) {
	r.events = append(r.events, event{s, hydra.Stick, v})
}

func (r *recorder) kinds() []hydra.EventKind {
	out := make([]hydra.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.kind)
	}
	return out
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newEnabled(t *testing.T, src *fakeSource, opts ...hydra.Option) (*hydra.Manager, *recorder) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]hydra.Option{hydra.WithLogger(testLogger(&buf))}, opts...)
	m := hydra.New(src, opts...)
	m.Enable()
	require.True(t, m.IsEnabled())
	rec := &recorder{}
	m.Subscribe(rec)
	return m, rec
}

func pressed(pos mgl64.Vec3) hydra.Sample {
	return hydra.Sample{
		Trigger:  0.95,
		Position: pos,
		Rotation: mgl64.Quat{W: 0.5, V: mgl64.Vec3{0.1, 0.2, 0.3}},
		StickX:   -0.25,
		StickY:   0.75,
	}
}

func TestConstruction(t *testing.T) {
	t.Run("with source", func(t *testing.T) {
		src := newFakeSource()
		m := hydra.New(src)
		assert.False(t, m.IsEnabled())
		assert.False(t, m.IsCalibrated())
		assert.True(t, m.CanCalibrate())
		assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.Offset())
		assert.Equal(t, []bool{true}, src.managerEnabled, "construction hands management back to the device layer")
	})

	t.Run("without source", func(t *testing.T) {
		m := hydra.New(nil)
		assert.False(t, m.IsEnabled())
		assert.False(t, m.IsCalibrated())
		assert.False(t, m.HasSource())
		assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.Offset())
	})

	t.Run("callbacks exist for every live slot only", func(t *testing.T) {
		m := hydra.New(nil)
		for _, s := range hydra.Slots() {
			cb := m.Callbacks(s)
			require.NotNil(t, cb)
			assert.Equal(t, s, cb.Slot())
		}
		assert.Nil(t, m.Callbacks(hydra.SlotUndefined))
		assert.Nil(t, m.Callbacks(hydra.SlotCount))
	})
}

func TestEnableWithoutSource(t *testing.T) {
	var buf bytes.Buffer
	m := hydra.New(nil, hydra.WithLogger(testLogger(&buf)))
	m.Enable()
	assert.False(t, m.IsEnabled())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "without a sample source")

	src := newFakeSource()
	m.AttachSource(src)
	m.Enable()
	assert.True(t, m.IsEnabled())
	assert.Equal(t, []bool{false}, src.managerEnabled)
}

func TestUpdateWhileDisabled(t *testing.T) {
	var buf bytes.Buffer
	src := newFakeSource()
	src.samples[hydra.Left] = pressed(mgl64.Vec3{1, 2, 3})
	m := hydra.New(src, hydra.WithLogger(testLogger(&buf)))
	rec := &recorder{}
	m.Subscribe(rec)

	m.Update(hydra.Left)

	assert.Empty(t, rec.events)
	assert.False(t, m.IsCalibrated())
	assert.Contains(t, buf.String(), "disabled hydra controllers")
}

func TestTriggerStateMachine(t *testing.T) {
	tests := []struct {
		name           string
		trigger        float64
		calibrated     bool
		canCalibrate   bool
		wantKinds      []hydra.EventKind
		wantCalibrated bool
	}{
		{
			name:      "below release emits release only",
			trigger:   0.01,
			wantKinds: []hydra.EventKind{hydra.TriggerRelease},
		},
		{
			name:           "below release while calibrated still skips pose",
			trigger:        0,
			calibrated:     true,
			wantKinds:      []hydra.EventKind{hydra.TriggerRelease},
			wantCalibrated: true,
		},
		{
			name:      "release threshold itself is dead zone",
			trigger:   0.05,
			wantKinds: []hydra.EventKind{},
		},
		{
			name:           "dead zone emits nothing",
			trigger:        0.5,
			calibrated:     true,
			wantKinds:      []hydra.EventKind{},
			wantCalibrated: true,
		},
		{
			name:           "press threshold boundary calibrates",
			trigger:        0.9,
			canCalibrate:   true,
			wantKinds:      []hydra.EventKind{},
			wantCalibrated: true,
		},
		{
			name:         "pressed without calibration permission emits press only",
			trigger:      1,
			canCalibrate: false,
			wantKinds:    []hydra.EventKind{hydra.TriggerPress},
		},
		{
			name:           "pressed and calibrated broadcasts in order",
			trigger:        0.9,
			calibrated:     true,
			canCalibrate:   true,
			wantKinds:      []hydra.EventKind{hydra.TriggerPress, hydra.Position, hydra.Rotation, hydra.Stick},
			wantCalibrated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			m, rec := newEnabled(t, src)

			if tt.calibrated {
				src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 100})
				m.Update(hydra.Left)
				require.True(t, m.IsCalibrated())
				rec.events = nil
			}
			m.SetCanCalibrate(tt.canCalibrate)

			s := pressed(mgl64.Vec3{2, 4, 6})
			s.Trigger = tt.trigger
			src.samples[hydra.Left] = s
			m.Update(hydra.Left)

			assert.Equal(t, tt.wantKinds, rec.kinds())
			assert.Equal(t, tt.wantCalibrated, m.IsCalibrated())
			for _, e := range rec.events {
				assert.Equal(t, hydra.Left, e.slot)
				if e.kind == hydra.TriggerPress || e.kind == hydra.TriggerRelease {
					assert.Equal(t, tt.trigger, e.value)
				}
			}
		})
	}
}

func TestCalibrationCapture(t *testing.T) {
	src := newFakeSource()
	m, rec := newEnabled(t, src)

	src.samples[hydra.Right] = pressed(mgl64.Vec3{30, -40, 200})
	m.Update(hydra.Right)

	assert.True(t, m.IsCalibrated())
	assert.InDelta(t, 0, m.Offset().X(), 1e-12)
	assert.InDelta(t, 0, m.Offset().Y(), 1e-12)
	assert.InDelta(t, 1.0, m.Offset().Z(), 1e-12)
	assert.Empty(t, rec.events, "no event on the calibration tick")

	// Calibrating through the right hand satisfies the left hand too.
	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 0})
	m.Update(hydra.Left)
	assert.Equal(t, []hydra.EventKind{hydra.TriggerPress, hydra.Position, hydra.Rotation, hydra.Stick}, rec.kinds())
}

func TestCalibrationIsOneShot(t *testing.T) {
	src := newFakeSource()
	m, _ := newEnabled(t, src)

	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 400})
	m.Update(hydra.Left)
	offset := m.Offset()

	for _, can := range []bool{true, false, true} {
		m.SetCanCalibrate(can)
		src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, -999})
		m.Update(hydra.Left)
		assert.Equal(t, offset, m.Offset())
	}
}

func TestBothPressedSameTickLeftCalibrates(t *testing.T) {
	src := newFakeSource()
	m, rec := newEnabled(t, src)

	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 100})
	src.samples[hydra.Right] = pressed(mgl64.Vec3{0, 0, 300})
	m.Tick()

	assert.InDelta(t, 0.5, m.Offset().Z(), 1e-12)
	require.NotEmpty(t, rec.events)
	for _, e := range rec.events {
		assert.Equal(t, hydra.Right, e.slot, "right hand broadcasts after left calibrated in the same tick")
	}
}

func TestPoseBroadcastValues(t *testing.T) {
	src := newFakeSource()
	m, rec := newEnabled(t, src, hydra.WithCanCalibrate(false))

	// Mark calibrated with a zero z reference, then restore the (0,0,1) offset
	// through Disable/Enable, which keeps the flag.
	m.SetCanCalibrate(true)
	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 0})
	m.Update(hydra.Left)
	m.Disable()
	m.Enable()
	require.True(t, m.IsCalibrated())
	require.Equal(t, mgl64.Vec3{0, 0, 1}, m.Offset())
	rec.events = nil

	s := pressed(mgl64.Vec3{2, 4, 6})
	src.samples[hydra.Left] = s
	m.Update(hydra.Left)

	require.Len(t, rec.events, 4)
	pos := rec.events[1].value.(mgl64.Vec3)
	assert.InDelta(t, 0.01, pos.X(), 1e-9)
	assert.InDelta(t, 0.02, pos.Y(), 1e-9)
	assert.InDelta(t, -0.97, pos.Z(), 1e-9)
	assert.Equal(t, s.Rotation, rec.events[2].value)
	assert.Equal(t, mgl64.Vec2{-0.25, 0.75}, rec.events[3].value)
}

func TestDisableKeepsCalibratedFlag(t *testing.T) {
	src := newFakeSource()
	m, _ := newEnabled(t, src)

	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 600})
	m.Update(hydra.Left)
	require.InDelta(t, 3.0, m.Offset().Z(), 1e-12)

	m.Disable()
	assert.False(t, m.IsEnabled())
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.Offset())
	assert.True(t, m.IsCalibrated(), "disable resets the offset but not the calibrated flag")
	assert.Equal(t, []bool{true, false, true}, src.managerEnabled)

	m.Enable()
	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 600})
	m.Update(hydra.Left)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.Offset(), "no recapture after re-enable")
}

func TestRecalibrate(t *testing.T) {
	src := newFakeSource()
	m, _ := newEnabled(t, src)

	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 200})
	m.Update(hydra.Left)
	m.Recalibrate()
	assert.False(t, m.IsCalibrated())
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.Offset())

	src.samples[hydra.Left] = pressed(mgl64.Vec3{0, 0, 800})
	m.Update(hydra.Left)
	assert.True(t, m.IsCalibrated())
	assert.InDelta(t, 4.0, m.Offset().Z(), 1e-12)
}

func TestMissingSampleSkipsSlot(t *testing.T) {
	src := newFakeSource()
	m, rec := newEnabled(t, src)
	m.Update(hydra.Right)
	assert.Empty(t, rec.events)
}

func TestInvalidSlotIgnored(t *testing.T) {
	src := newFakeSource()
	m, rec := newEnabled(t, src)
	assert.NotPanics(t, func() {
		m.Update(hydra.SlotCount)
		m.Update(hydra.SlotUndefined)
	})
	assert.Empty(t, rec.events)
}

func TestCustomSensitivity(t *testing.T) {
	sens, err := hydra.NewSensitivity(0.5, 0.2, 0.01)
	require.NoError(t, err)

	src := newFakeSource()
	m, rec := newEnabled(t, src, hydra.WithSensitivity(sens), hydra.WithCanCalibrate(false))

	src.samples[hydra.Left] = hydra.Sample{Trigger: 0.5}
	m.Update(hydra.Left)
	src.samples[hydra.Left] = hydra.Sample{Trigger: 0.3}
	m.Update(hydra.Left)
	src.samples[hydra.Left] = hydra.Sample{Trigger: 0.1}
	m.Update(hydra.Left)

	assert.Equal(t, []hydra.EventKind{hydra.TriggerPress, hydra.TriggerRelease}, rec.kinds())
}

func TestWorldPosition(t *testing.T) {
	got := hydra.WorldPosition(mgl64.Vec3{2, 4, 6}, 0.005, mgl64.Vec3{0, 0, 1})
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec3{0.01, 0.02, -0.97}, 1e-9))
}
