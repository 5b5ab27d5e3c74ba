// Package testing holds helpers shared by package tests.
package testing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nexusgame/hydra/hydra"
	"github.com/nexusgame/hydra/input"
	"github.com/nexusgame/hydra/internal/server/api"
	"github.com/nexusgame/hydra/internal/server/api/handler"
	"github.com/nexusgame/hydra/source"
)

// Daemon bundles the state a control API server operates on.
type Daemon struct {
	Store *source.Store
	Hydra *hydra.Manager
	Input *input.Manager
}

// Controller returns the handler view of d.
func (d *Daemon) Controller() handler.Controller {
	return handler.Controller{Input: d.Input, Devices: d.Store}
}

// NewDaemon builds a store-backed hydra manager in the given input mode.
func NewDaemon(mode input.Mode, opts ...hydra.Option) *Daemon {
	store := source.NewStore()
	h := hydra.New(store, opts...)
	return &Daemon{Store: store, Hydra: h, Input: input.NewManager(h, mode, slog.Default())}
}

// StartAPIServer starts an API server on a free port and calls register to
// let the caller add the handlers the test needs. The server is closed when
// the test ends.
func StartAPIServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) string {
	t.Helper()
	apiSrv, err := api.New("127.0.0.1:0", cfg, slog.Default())
	if err != nil {
		t.Fatalf("api new failed: %v", err)
	}
	if register != nil {
		register(apiSrv.Router())
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}
	t.Cleanup(apiSrv.Close)
	return apiSrv.Addr()
}

// ExecCmd dials the API server, sends cmd and returns the response line
// without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	_, _ = fmt.Fprintf(c, "%s\x00", cmd)
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	return strings.TrimSuffix(line, "\n")
}
