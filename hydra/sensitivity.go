package hydra

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultTriggerPress   = 0.9
	DefaultTriggerRelease = 0.05
	DefaultPositionScale  = 0.005
)

// ErrInvalidSensitivity is returned by NewSensitivity for inconsistent thresholds.
var ErrInvalidSensitivity = errors.New("invalid sensitivity")

// Sensitivity holds the thresholds and scale used to interpret raw samples.
// The zero value is not usable; use DefaultSensitivity or NewSensitivity.
type Sensitivity struct {
	triggerPress   float64
	triggerRelease float64
	position       float64
}

// DefaultSensitivity returns the stock profile (press 0.9, release 0.05, scale 0.005).
func DefaultSensitivity() Sensitivity {
	return Sensitivity{
		triggerPress:   DefaultTriggerPress,
		triggerRelease: DefaultTriggerRelease,
		position:       DefaultPositionScale,
	}
}

// NewSensitivity validates and builds a profile. The release threshold must be
// strictly below the press threshold.
func NewSensitivity(press, release, position float64) (Sensitivity, error) {
	for _, v := range []float64{press, release, position} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sensitivity{}, fmt.Errorf("%w: non-finite value %v", ErrInvalidSensitivity, v)
		}
	}
	if release >= press {
		return Sensitivity{}, fmt.Errorf("%w: release threshold %v must be below press threshold %v", ErrInvalidSensitivity, release, press)
	}
	if position <= 0 {
		return Sensitivity{}, fmt.Errorf("%w: position scale must be positive, got %v", ErrInvalidSensitivity, position)
	}
	return Sensitivity{triggerPress: press, triggerRelease: release, position: position}, nil
}

func (s Sensitivity) valid() bool {
	return s.triggerRelease < s.triggerPress && s.position > 0
}

func (s Sensitivity) TriggerPress() float64   { return s.triggerPress }
func (s Sensitivity) TriggerRelease() float64 { return s.triggerRelease }
func (s Sensitivity) Position() float64       { return s.position }
