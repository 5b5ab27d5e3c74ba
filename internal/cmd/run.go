package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nexusgame/hydra/hydra"
	"github.com/nexusgame/hydra/input"
	"github.com/nexusgame/hydra/internal/configpaths"
	"github.com/nexusgame/hydra/internal/log"
	"github.com/nexusgame/hydra/internal/publish"
	"github.com/nexusgame/hydra/internal/server/api"
	"github.com/nexusgame/hydra/internal/server/api/auth"
	"github.com/nexusgame/hydra/internal/server/api/handler"
	"github.com/nexusgame/hydra/source"
)

const keyFileName = "hydrad.key.txt"

// SourceConfig selects where samples come from. With "feed" only clients of
// the feed route deliver samples.
type SourceConfig struct {
	Kind   string              `help:"Sample source (feed, serial, replay)" enum:"feed,serial,replay" default:"feed" env:"HYDRA_SOURCE"`
	Serial source.SerialConfig `embed:"" prefix:"serial."`
	Replay string              `help:"Recording played when the source is replay" env:"HYDRA_SOURCE_REPLAY"`
	Loop   bool                `help:"Loop the replay recording" default:"true" env:"HYDRA_SOURCE_LOOP"`
}

// SensitivityConfig holds the trigger thresholds and position scale.
type SensitivityConfig struct {
	TriggerPress   float64 `help:"Trigger value at or above which the trigger counts as pressed" default:"0.9" env:"HYDRA_TRIGGER_PRESS"`
	TriggerRelease float64 `help:"Trigger value below which the trigger counts as released" default:"0.05" env:"HYDRA_TRIGGER_RELEASE"`
	Position       float64 `help:"Scale from device position units to world units" default:"0.005" env:"HYDRA_POSITION_SCALE"`
}

// Run is the daemon command.
type Run struct {
	Mode         string             `help:"Initial input mode (hydra, gamepad, keyboard)" enum:"hydra,gamepad,keyboard" default:"hydra" env:"HYDRA_MODE"`
	TickRate     int                `help:"Controller updates per second" default:"60" env:"HYDRA_TICK_RATE"`
	CanCalibrate bool               `help:"Allow a trigger press to capture calibration" default:"true" negatable:"" env:"HYDRA_CAN_CALIBRATE"`
	Sensitivity  SensitivityConfig  `embed:"" prefix:"sensitivity."`
	Source       SourceConfig       `embed:"" prefix:"source."`
	API          api.ServerConfig   `embed:"" prefix:"api."`
	MQTT         publish.MQTTConfig `embed:"" prefix:"mqtt."`
	Web          publish.WebConfig  `embed:"" prefix:"ws."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger, nil)
}

// Start runs the daemon until ctx is done. ready, when set, receives the
// bound control API address once it listens.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, ready func(addr string)) error {
	sens, err := hydra.NewSensitivity(r.Sensitivity.TriggerPress, r.Sensitivity.TriggerRelease, r.Sensitivity.Position)
	if err != nil {
		return err
	}
	mode, err := input.ParseMode(r.Mode)
	if err != nil {
		return err
	}
	if r.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", r.TickRate)
	}
	if r.API.Addr == "" {
		return errors.New("API server address must be set (default :7341)")
	}
	if err := resolvePassword(&r.API, logger); err != nil {
		return err
	}

	var rec *source.Recording
	if r.Source.Kind == "replay" {
		if rec, err = source.LoadRecording(r.Source.Replay); err != nil {
			return err
		}
	}

	store := source.NewStore()
	h := hydra.New(store,
		hydra.WithSensitivity(sens),
		hydra.WithLogger(logger),
		hydra.WithCanCalibrate(r.CanCalibrate),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var sinks []publish.Sink
	if r.MQTT.Broker != "" {
		m, err := publish.ConnectMQTT(r.MQTT, logger)
		if err != nil {
			return err
		}
		defer m.Close()
		sinks = append(sinks, m)
		logger.Info("publishing events over MQTT", "broker", r.MQTT.Broker, "prefix", r.MQTT.TopicPrefix)
	}
	if r.Web.Addr != "" {
		hub := publish.NewHub(r.Web.ClientSend, logger)
		sinks = append(sinks, hub)
		g.Go(func() error { return publish.ServeWeb(ctx, r.Web, hub, logger) })
	}
	if len(sinks) > 0 {
		h.Subscribe(publish.Listener(sinks...))
	}

	im := input.NewManager(h, mode, logger)

	apiSrv, err := api.New(r.API.Addr, r.API, logger)
	if err != nil {
		return err
	}
	registerRoutes(apiSrv.Router(), handler.Controller{Input: im, Devices: store}, store, rawLogger)
	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		cancel()
		_ = g.Wait()
		return err
	}
	defer apiSrv.Close()
	if ready != nil {
		ready(apiSrv.Addr())
	}

	switch r.Source.Kind {
	case "serial":
		g.Go(func() error { return source.RunSerial(ctx, r.Source.Serial, store, logger, rawLogger) })
	case "replay":
		logger.Info("replaying recording", "file", r.Source.Replay, "frames", len(rec.Samples), "loop", r.Source.Loop)
		g.Go(func() error { return rec.PlayInto(ctx, store, r.Source.Loop) })
	}

	g.Go(func() error { return im.Run(ctx, time.Second/time.Duration(r.TickRate)) })

	err = g.Wait()
	logger.Info("hydrad stopped")
	return err
}

func registerRoutes(r *api.Router, c handler.Controller, store *source.Store, raw log.RawLogger) {
	r.Register("ping", handler.Ping())
	r.Register("status", handler.Status(c))
	r.Register("enable", handler.Enable(c))
	r.Register("disable", handler.Disable(c))
	r.Register("recalibrate", handler.Recalibrate(c))
	r.Register("calibration/allow", handler.AllowCalibration(c))
	r.Register("mode/{mode}", handler.SetMode(c))
	r.RegisterStream("feed", handler.Feed(store, raw))
}

// resolvePassword loads the key file, or creates one, when authentication is
// requested without an explicit password.
func resolvePassword(cfg *api.ServerConfig, logger *slog.Logger) error {
	if cfg.Password != "" || !cfg.Auth {
		return nil
	}
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := filepath.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		cfg.Password = strings.TrimSpace(string(pwd))
		return nil
	}

	newPwd, err := auth.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return fmt.Errorf("failed to write new API password to file: %w", err)
	}
	cfg.Password = newPwd
	logger.Info("Generated API server password", "path", keyFilePath)
	logger.Info("Your hydrad API password is: " + newPwd)
	logger.Info("You can change this password at any time by editing the file")
	return nil
}
