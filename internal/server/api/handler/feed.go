package handler

import (
	"context"
	"log/slog"
	"net"

	"github.com/nexusgame/hydra/internal/log"
	"github.com/nexusgame/hydra/internal/server/api"
	"github.com/nexusgame/hydra/source"
)

// Feed returns a stream handler that decodes sample frames from the
// connection into store until the client disconnects.
func Feed(store *source.Store, raw log.RawLogger) api.StreamHandlerFunc {
	return func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error {
		defer conn.Close()
		logger.Info("feed connected")
		err := source.ReadFrames(ctx, conn, store, raw)
		logger.Info("feed disconnected")
		return err
	}
}
