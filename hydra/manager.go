package hydra

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// Manager runs the per-tick controller pipeline: trigger evaluation, the
// one-shot calibration capture and the pose/analog broadcast.
//
// A Manager is not safe for concurrent use. Callers tick it from a single
// scheduler and serialise any other access.
type Manager struct {
	source       Source
	sensitivity  Sensitivity
	logger       *slog.Logger
	canCalibrate bool

	enabled     bool
	calibration Calibration
	callbacks   [SlotCount]*Callbacks
}

// Option configures a Manager.
type Option func(*Manager)

// WithSensitivity replaces the default sensitivity profile. Profiles not built
// by NewSensitivity, such as the zero value, leave the default in place.
func WithSensitivity(s Sensitivity) Option {
	return func(m *Manager) {
		if s.valid() {
			m.sensitivity = s
		}
	}
}

// WithLogger sets the logger used for lifecycle warnings and listener failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithCanCalibrate sets whether a pressed trigger may capture the reference offset.
func WithCanCalibrate(v bool) Option {
	return func(m *Manager) { m.canCalibrate = v }
}

// New builds a disabled, uncalibrated Manager. When src is non-nil the device
// layer is handed back its default controller management; Enable must be
// called explicitly to start processing.
func New(src Source, opts ...Option) *Manager {
	m := &Manager{
		sensitivity:  DefaultSensitivity(),
		logger:       slog.Default(),
		canCalibrate: true,
		calibration:  newCalibration(),
	}
	for _, o := range opts {
		o(m)
	}
	for _, s := range Slots() {
		m.callbacks[s] = newCallbacks(s, m.logger)
	}

	m.enabled = false
	m.calibration.calibrated = false

	m.source = src
	if src == nil {
		return m
	}
	m.Disable()
	return m
}

// AttachSource sets the device sample source. Detaching (nil) while enabled
// disables the Manager first.
func (m *Manager) AttachSource(src Source) {
	if src == nil && m.enabled {
		m.Disable()
	}
	m.source = src
}

func (m *Manager) HasSource() bool          { return m.source != nil }
func (m *Manager) IsEnabled() bool          { return m.enabled }
func (m *Manager) IsCalibrated() bool       { return m.calibration.calibrated }
func (m *Manager) CanCalibrate() bool       { return m.canCalibrate }
func (m *Manager) SetCanCalibrate(v bool)   { m.canCalibrate = v }
func (m *Manager) Sensitivity() Sensitivity { return m.sensitivity }
func (m *Manager) Calibration() Calibration { return m.calibration }

// Offset returns the current reference offset.
func (m *Manager) Offset() mgl64.Vec3 { return m.calibration.offset }

// Callbacks returns the event sink for slot, or nil for a non-live slot.
func (m *Manager) Callbacks(slot Slot) *Callbacks {
	if !slot.Valid() {
		return nil
	}
	return m.callbacks[slot]
}

// Subscribe registers l on every slot.
func (m *Manager) Subscribe(l Listener) {
	for _, s := range Slots() {
		m.callbacks[s].Subscribe(l)
	}
}

// Enable starts processing and claims the device layer. Without a source it
// only logs a warning.
func (m *Manager) Enable() {
	if m.source == nil {
		m.logger.Warn("attempting to enable hydra input without a sample source")
		return
	}
	m.enabled = true
	m.source.SetControllerManagerEnabled(false)
}

// Disable stops processing, restores the device layer's controller
// management and resets the reference offset. The calibrated flag is left
// untouched; use Recalibrate to clear it.
func (m *Manager) Disable() {
	m.enabled = false
	if m.source != nil {
		m.source.SetControllerManagerEnabled(true)
	}
	m.calibration.resetOffset()
}

// Recalibrate clears the calibration so the next pressed trigger captures a
// new reference offset.
func (m *Manager) Recalibrate() {
	m.calibration.reset()
}

// Tick updates every slot in the fixed order.
func (m *Manager) Tick() {
	for _, s := range Slots() {
		m.Update(s)
	}
}

// Update runs the pipeline once for slot. It is safe to call while disabled:
// the call is logged and ignored.
func (m *Manager) Update(slot Slot) {
	if !m.enabled {
		m.logger.Warn("attempting to update disabled hydra controllers", "slot", slot)
		return
	}
	if !slot.Valid() {
		m.logger.Warn("attempting to update invalid hydra controller", "slot", int(slot))
		return
	}
	sample, ok := m.source.Controller(slot)
	if !ok {
		m.logger.Debug("no sample available", "slot", slot)
		return
	}

	cb := m.callbacks[slot]
	if !m.updateTrigger(cb, sample) {
		return
	}
	if !m.calibration.calibrated {
		return
	}

	m.updatePosition(cb, sample)
	m.updateRotation(cb, sample)
	m.updateStick(cb, sample)
}

// updateTrigger reports whether the tick continues to the pose broadcast.
func (m *Manager) updateTrigger(cb *Callbacks, s Sample) bool {
	v := s.Trigger
	if v < m.sensitivity.triggerPress {
		if v < m.sensitivity.triggerRelease {
			cb.broadcastTriggerRelease(v)
		}
		return false
	}

	if m.canCalibrate && !m.calibration.calibrated {
		m.calibration.capture(s.Position, m.sensitivity.position)
		m.logger.Info("hydra calibrated", "slot", cb.slot, "offset", m.calibration.offset)
		return false
	}

	cb.broadcastTriggerPress(v)
	return true
}

func (m *Manager) updatePosition(cb *Callbacks, s Sample) {
	cb.broadcastPosition(WorldPosition(s.Position, m.sensitivity.position, m.calibration.offset))
}

func (m *Manager) updateRotation(cb *Callbacks, s Sample) {
	q := s.Rotation
	cb.broadcastRotation(mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X(), q.Y(), q.Z()}})
}

func (m *Manager) updateStick(cb *Callbacks, s Sample) {
	cb.broadcastStick(mgl64.Vec2{s.StickX, s.StickY})
}

// WorldPosition scales a raw position and subtracts the reference offset.
func WorldPosition(raw mgl64.Vec3, scale float64, offset mgl64.Vec3) mgl64.Vec3 {
	return raw.Mul(scale).Sub(offset)
}
