package hydra

import "github.com/go-gl/mathgl/mgl64"

// Sample is one raw reading of a controller, as supplied by the device layer.
type Sample struct {
	// Trigger is the analog trigger in [0,1].
	Trigger  float64
	Position mgl64.Vec3
	Rotation mgl64.Quat
	StickX   float64
	StickY   float64
}

// Source supplies raw samples and owns the device layer's default controller
// management, which the Manager claims while enabled.
type Source interface {
	// Controller returns the latest sample for slot. ok is false when the
	// device layer has nothing for that slot yet.
	Controller(slot Slot) (s Sample, ok bool)
	// SetControllerManagerEnabled toggles the device layer's own controller
	// management. The Manager disables it while it is enabled.
	SetControllerManagerEnabled(enabled bool)
}
