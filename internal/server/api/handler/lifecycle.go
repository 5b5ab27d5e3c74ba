package handler

import (
	"fmt"
	"log/slog"

	"github.com/nexusgame/hydra/apitypes"
	"github.com/nexusgame/hydra/hydra"
	"github.com/nexusgame/hydra/input"
	"github.com/nexusgame/hydra/internal/server/api"
)

// Enable enables hydra input. Without an attached source the request is
// rejected; the manager itself only logs in that case.
func Enable(c Controller) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var noSource bool
		c.Input.Do(func(h *hydra.Manager) { noSource = !h.HasSource() })
		if noSource {
			return api.ErrConflict("no sample source attached")
		}
		return c.apply(res, (*hydra.Manager).Enable)
	}
}

// Disable disables hydra input and hands management back to the device layer.
func Disable(c Controller) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return c.apply(res, (*hydra.Manager).Disable)
	}
}

// Recalibrate clears calibration so the next trigger press captures a new offset.
func Recalibrate(c Controller) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return c.apply(res, (*hydra.Manager).Recalibrate)
	}
}

// AllowCalibration sets whether a trigger press may capture calibration.
// Payload: a boolean (true/false, on/off, yes/no, 1/0).
func AllowCalibration(c Controller) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return api.ErrBadRequest("missing payload")
		}
		allow, err := apitypes.ParseToggle(req.Payload)
		if err != nil {
			return api.ErrBadRequest(err.Error())
		}
		return c.apply(res, func(h *hydra.Manager) { h.SetCanCalibrate(allow) })
	}
}

// SetMode switches the active input backend.
func SetMode(c Controller) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		mode, err := input.ParseMode(req.Params["mode"])
		if err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid mode: %v", err))
		}
		c.Input.SetMode(mode)
		return c.apply(res, nil)
	}
}
