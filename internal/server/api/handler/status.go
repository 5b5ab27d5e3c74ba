package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nexusgame/hydra/apitypes"
	"github.com/nexusgame/hydra/hydra"
	"github.com/nexusgame/hydra/input"
	"github.com/nexusgame/hydra/internal/server/api"
)

// DeviceManagement is implemented by sources that report whether the device
// layer currently owns controller management.
type DeviceManagement interface {
	ControllerManagerEnabled() bool
}

// Controller groups the state handlers operate on. Devices may be nil.
type Controller struct {
	Input   *input.Manager
	Devices DeviceManagement
}

func (c Controller) status(h *hydra.Manager) apitypes.StatusResponse {
	s := h.Sensitivity()
	off := h.Offset()
	resp := apitypes.StatusResponse{
		Enabled:      h.IsEnabled(),
		HasSource:    h.HasSource(),
		Calibrated:   h.IsCalibrated(),
		CanCalibrate: h.CanCalibrate(),
		Offset:       [3]float64{off.X(), off.Y(), off.Z()},
		Sensitivity: apitypes.Sensitivity{
			TriggerPress:   s.TriggerPress(),
			TriggerRelease: s.TriggerRelease(),
			Position:       s.Position(),
		},
	}
	if c.Devices != nil {
		resp.DeviceManaged = c.Devices.ControllerManagerEnabled()
	}
	return resp
}

// apply runs fn under the input lock and writes the resulting status.
func (c Controller) apply(res *api.Response, fn func(h *hydra.Manager)) error {
	var resp apitypes.StatusResponse
	c.Input.Do(func(h *hydra.Manager) {
		if fn != nil {
			fn(h)
		}
		resp = c.status(h)
	})
	resp.Mode = c.Input.Mode().String()
	b, err := json.Marshal(resp)
	if err != nil {
		return api.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	res.JSON = string(b)
	return nil
}

// Status reports the lifecycle and calibration state.
func Status(c Controller) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return c.apply(res, nil)
	}
}
