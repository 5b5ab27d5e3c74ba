package hydra

import "github.com/go-gl/mathgl/mgl64"

// initialOffset is the reference offset before any capture and after Disable.
var initialOffset = mgl64.Vec3{0, 0, 1}

// Calibration is the subsystem-wide reference frame shared by both slots.
type Calibration struct {
	calibrated bool
	offset     mgl64.Vec3
}

func newCalibration() Calibration {
	return Calibration{offset: initialOffset}
}

// Calibrated reports whether a reference offset has been captured.
func (c Calibration) Calibrated() bool { return c.calibrated }

// Offset returns the reference offset subtracted from scaled positions.
func (c Calibration) Offset() mgl64.Vec3 { return c.offset }

// capture records the z-axis reference from a raw position. x and y are zeroed.
func (c *Calibration) capture(raw mgl64.Vec3, scale float64) {
	c.offset = mgl64.Vec3{0, 0, raw.Z() * scale}
	c.calibrated = true
}

func (c *Calibration) resetOffset() { c.offset = initialOffset }

func (c *Calibration) reset() {
	c.calibrated = false
	c.offset = initialOffset
}
