package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/nexusgame/hydra/apitypes"
	"github.com/nexusgame/hydra/internal/server/api"
	"github.com/nexusgame/hydra/internal/version"
)

const serverName = "hydrad"

// Ping returns a handler answering with the server identity and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: serverName, Version: version.String()})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
