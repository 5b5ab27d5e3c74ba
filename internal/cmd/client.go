package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nexusgame/hydra/apiclient"
	"github.com/nexusgame/hydra/apitypes"
)

// ClientConfig addresses a running daemon.
type ClientConfig struct {
	Addr     string        `help:"Control API address of the daemon" default:"localhost:7341" env:"HYDRA_CLIENT_ADDR"`
	Password string        `help:"Control API password" env:"HYDRA_CLIENT_PASSWORD"`
	Timeout  time.Duration `help:"Request timeout" default:"5s" env:"HYDRA_CLIENT_TIMEOUT"`
}

func (c ClientConfig) client() *apiclient.Client {
	return apiclient.NewWithConfig(c.Addr, &apiclient.Config{
		DialTimeout:  c.Timeout,
		ReadTimeout:  c.Timeout,
		WriteTimeout: c.Timeout,
		Password:     c.Password,
	})
}

func (c ClientConfig) context() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

// stdout is where client commands print results.
var stdout io.Writer = os.Stdout

func printStatus(w io.Writer, s *apitypes.StatusResponse) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

type statusCall func(c *apiclient.Client, ctx context.Context) (*apitypes.StatusResponse, error)

func runStatusCall(cfg ClientConfig, logger *slog.Logger, name string, call statusCall) error {
	ctx, cancel := cfg.context()
	defer cancel()
	s, err := call(cfg.client(), ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("daemon answered", "command", name, "enabled", s.Enabled, "calibrated", s.Calibrated)
	return printStatus(stdout, s)
}

// Status prints the daemon state.
type Status struct {
	Client ClientConfig `embed:"" prefix:"client."`
}

func (s *Status) Run(logger *slog.Logger) error {
	return runStatusCall(s.Client, logger, "status", (*apiclient.Client).StatusCtx)
}

// Enable enables hydra input.
type Enable struct {
	Client ClientConfig `embed:"" prefix:"client."`
}

func (e *Enable) Run(logger *slog.Logger) error {
	return runStatusCall(e.Client, logger, "enable", (*apiclient.Client).EnableCtx)
}

// Disable disables hydra input.
type Disable struct {
	Client ClientConfig `embed:"" prefix:"client."`
}

func (d *Disable) Run(logger *slog.Logger) error {
	return runStatusCall(d.Client, logger, "disable", (*apiclient.Client).DisableCtx)
}

// Recalibrate clears calibration.
type Recalibrate struct {
	Client ClientConfig `embed:"" prefix:"client."`
}

func (r *Recalibrate) Run(logger *slog.Logger) error {
	return runStatusCall(r.Client, logger, "recalibrate", (*apiclient.Client).RecalibrateCtx)
}

// Mode switches the input mode.
type Mode struct {
	Mode   string       `arg:"" help:"Input mode" enum:"hydra,gamepad,keyboard"`
	Client ClientConfig `embed:"" prefix:"client."`
}

func (m *Mode) Run(logger *slog.Logger) error {
	return runStatusCall(m.Client, logger, "mode", func(c *apiclient.Client, ctx context.Context) (*apitypes.StatusResponse, error) {
		return c.SetModeCtx(ctx, m.Mode)
	})
}

// Calibration groups the calibration controls.
type Calibration struct {
	Allow CalibrationAllow `cmd:"" help:"Allow or forbid a trigger press from capturing calibration"`
}

// CalibrationAllow toggles whether calibration may be captured.
type CalibrationAllow struct {
	Allowed string       `arg:"" help:"true or false (on/off, yes/no also accepted)"`
	Client  ClientConfig `embed:"" prefix:"client."`
}

func (a *CalibrationAllow) Run(logger *slog.Logger) error {
	allow, err := apitypes.ParseToggle(a.Allowed)
	if err != nil {
		return fmt.Errorf("calibration allow: %w", err)
	}
	return runStatusCall(a.Client, logger, "calibration allow", func(c *apiclient.Client, ctx context.Context) (*apitypes.StatusResponse, error) {
		return c.AllowCalibrationCtx(ctx, allow)
	})
}
