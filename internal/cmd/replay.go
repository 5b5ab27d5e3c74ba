package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexusgame/hydra/source"
)

// Replay streams a recording into a running daemon over the feed route.
type Replay struct {
	File   string       `arg:"" help:"Recording to play (yaml)" type:"existingfile"`
	Loop   bool         `help:"Start over when the recording ends"`
	Client ClientConfig `embed:"" prefix:"client."`
}

func (r *Replay) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Stream(ctx, logger)
}

// Stream plays the recording until it ends or ctx is done.
func (r *Replay) Stream(ctx context.Context, logger *slog.Logger) error {
	rec, err := source.LoadRecording(r.File)
	if err != nil {
		return err
	}
	feed, err := r.Client.client().OpenFeed(ctx)
	if err != nil {
		return err
	}
	defer feed.Close()

	logger.Info("replaying", "file", r.File, "frames", len(rec.Samples), "interval", rec.Interval(), "loop", r.Loop)
	return rec.Play(ctx, r.Loop, feed.WriteFrame)
}
