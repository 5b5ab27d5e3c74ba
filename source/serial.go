package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jacobsa/go-serial/serial"

	"github.com/nexusgame/hydra/internal/log"
)

// SerialConfig describes a serial-attached feeder that writes frames.
type SerialConfig struct {
	Port     string `help:"Serial port delivering sample frames" env:"HYDRA_SOURCE_SERIAL_PORT"`
	BaudRate uint   `help:"Serial baud rate" default:"115200" env:"HYDRA_SOURCE_SERIAL_BAUD"`
}

// OpenSerial opens the configured serial port in 8N1 mode.
func OpenSerial(cfg SerialConfig) (io.ReadWriteCloser, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("serial source: no port configured")
	}
	opts := serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              cfg.BaudRate,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       FrameSize,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}
	return port, nil
}

// RunSerial opens the port and feeds frames into store until ctx is done or
// the port fails.
func RunSerial(ctx context.Context, cfg SerialConfig, store *Store, logger *slog.Logger, raw log.RawLogger) error {
	port, err := OpenSerial(cfg)
	if err != nil {
		return err
	}
	logger.Info("serial source opened", "port", cfg.Port, "baud", cfg.BaudRate)

	go func() {
		<-ctx.Done()
		_ = port.Close()
	}()
	defer port.Close()

	return ReadFrames(ctx, port, store, raw)
}
