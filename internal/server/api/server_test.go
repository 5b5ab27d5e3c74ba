package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusgame/hydra/apitypes"
	"github.com/nexusgame/hydra/internal/server/api"
	"github.com/nexusgame/hydra/internal/server/api/auth"
)

func startServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) *api.Server {
	t.Helper()
	srv, err := api.New("127.0.0.1:0", cfg, slog.Default())
	require.NoError(t, err)
	register(srv.Router())
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Close)
	return srv
}

func roundTrip(t *testing.T, addr, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = fmt.Fprintf(c, "%s\x00", cmd)
	require.NoError(t, err)
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(c).ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestRouterMatch(t *testing.T) {
	r := api.NewRouter()
	r.Register("ping", func(*api.Request, *api.Response, *slog.Logger) error { return nil })
	r.Register("mode/{mode}", func(*api.Request, *api.Response, *slog.Logger) error { return nil })

	tests := []struct {
		name   string
		path   string
		found  bool
		params map[string]string
	}{
		{name: "static", path: "ping", found: true, params: map[string]string{}},
		{name: "placeholder", path: "mode/Hydra", found: true, params: map[string]string{"mode": "hydra"}},
		{name: "too many parts", path: "mode/hydra/x", found: false},
		{name: "unknown", path: "status", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, params := r.Match(tt.path)
			assert.Equal(t, tt.found, h != nil)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestServerDispatch(t *testing.T) {
	srv := startServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.Register("echo/{word}", func(req *api.Request, res *api.Response, _ *slog.Logger) error {
			res.JSON = fmt.Sprintf(`{"word":%q,"payload":%q}`, req.Params["word"], req.Payload)
			return nil
		})
		r.Register("fail", func(*api.Request, *api.Response, *slog.Logger) error {
			return api.ErrConflict("nope")
		})
		r.Register("crash", func(*api.Request, *api.Response, *slog.Logger) error {
			return errors.New("boom")
		})
	})

	tests := []struct {
		name   string
		cmd    string
		want   string
		status int
	}{
		{name: "params and payload", cmd: "echo/hi some payload", want: `{"word":"hi","payload":"some payload"}` + "\n"},
		{name: "api error", cmd: "fail", status: 409},
		{name: "plain error", cmd: "crash", status: 500},
		{name: "unknown path", cmd: "missing", status: 404},
		{name: "empty", cmd: "", status: 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := roundTrip(t, srv.Addr(), tt.cmd)
			if tt.status == 0 {
				assert.Equal(t, tt.want, line)
				return
			}
			var ae apitypes.ApiError
			require.NoError(t, json.Unmarshal([]byte(line), &ae))
			assert.Equal(t, tt.status, ae.Status)
		})
	}
}

func TestServerStreamGetsBufferedBytes(t *testing.T) {
	got := make(chan []byte, 1)
	srv := startServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.RegisterStream("feed", func(_ context.Context, conn net.Conn, _ map[string]string, _ *slog.Logger) error {
			b, err := io.ReadAll(conn)
			got <- b
			return err
		})
	})

	c, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	_, err = c.Write([]byte("feed\x00\x01\x02\x03"))
	require.NoError(t, err)
	require.NoError(t, c.(*net.TCPConn).CloseWrite())

	select {
	case b := <-got:
		assert.Equal(t, []byte{1, 2, 3}, b)
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not finish")
	}
	_ = c.Close()
}

func TestServerStreamCancelledOnClose(t *testing.T) {
	started := make(chan struct{})
	done := make(chan error, 1)
	srv, err := api.New("127.0.0.1:0", api.ServerConfig{}, slog.Default())
	require.NoError(t, err)
	srv.Router().RegisterStream("feed", func(ctx context.Context, conn net.Conn, _ map[string]string, _ *slog.Logger) error {
		close(started)
		_, err := io.ReadAll(conn)
		done <- ctx.Err()
		return err
	})
	require.NoError(t, srv.Start())

	c, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte("feed\x00"))
	require.NoError(t, err)
	<-started

	srv.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler not cancelled")
	}
}

func TestServerAuth(t *testing.T) {
	const password = "correct horse"
	srv := startServer(t, api.ServerConfig{Password: password}, func(r *api.Router) {
		r.Register("ping", func(_ *api.Request, res *api.Response, _ *slog.Logger) error {
			res.JSON = `{"ok":true}`
			return nil
		})
	})

	t.Run("plain request rejected", func(t *testing.T) {
		var ae apitypes.ApiError
		require.NoError(t, json.Unmarshal([]byte(roundTrip(t, srv.Addr(), "ping")), &ae))
		assert.Equal(t, 401, ae.Status)
	})

	dial := func(t *testing.T, pw string) (net.Conn, error) {
		key, err := auth.DeriveKey(pw)
		require.NoError(t, err)
		c, err := net.Dial("tcp", srv.Addr())
		require.NoError(t, err)
		_ = c.SetDeadline(time.Now().Add(2 * time.Second))
		cn, sn, err := auth.ClientHandshake(bufio.NewReader(c), c, key)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		return auth.WrapConn(c, auth.DeriveSessionKey(key, sn, cn))
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := dial(t, "wrong")
		var ae *apitypes.ApiError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, 401, ae.Status)
	})

	t.Run("authenticated request", func(t *testing.T) {
		c, err := dial(t, password)
		require.NoError(t, err)
		defer c.Close()
		_, err = c.Write([]byte("ping\x00"))
		require.NoError(t, err)
		line, err := bufio.NewReader(c).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "{\"ok\":true}\n", line)
	})
}
