package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/nexusgame/hydra/internal/server/api/auth"
)

// Config holds connection timeouts and the optional API password.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Password     string
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Responder answers requests on a mock transport with a raw response line.
type Responder func(path string, payload any, pathParams map[string]string) (string, error)

// Transport speaks the hydrad control protocol: one request per connection,
// terminated by \x00, answered by a single line before the daemon hangs up.
type Transport struct {
	addr string
	mock Responder
	cfg  Config
}

func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithPassword authenticates every connection with password.
func NewTransportWithPassword(addr, password string) *Transport {
	cfg := defaultConfig()
	cfg.Password = password
	return NewTransportWithConfig(addr, &cfg)
}

// NewTransportWithConfig uses cfg, or the defaults when cfg is nil.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	t := &Transport{addr: addr, cfg: defaultConfig()}
	if cfg != nil {
		t.cfg = *cfg
	}
	return t
}

// NewMockTransport returns a transport that never touches the network.
func NewMockTransport(responder Responder) *Transport {
	return &Transport{addr: "mock", mock: responder, cfg: defaultConfig()}
}

// Do is DoCtx with a background context.
func (t *Transport) Do(path string, payload any, pathParams map[string]string) (string, error) {
	return t.DoCtx(context.Background(), path, payload, pathParams)
}

// DoCtx sends one request and returns the response line without its newline.
// Byte slices and strings are sent verbatim, anything else as JSON.
func (t *Transport) DoCtx(ctx context.Context, path string, payload any, pathParams map[string]string) (string, error) {
	if t.mock != nil {
		return t.mock(path, payload, pathParams)
	}
	req := encodeRequest(fillPath(path, pathParams), payload)

	conn, err := t.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write(req); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	setDeadline(conn.SetReadDeadline, t.cfg.ReadTimeout)
	resp, err := io.ReadAll(conn)
	if err != nil && len(resp) == 0 {
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(string(resp), "\n"), nil
}

// dial opens a connection, securing it when a password is configured.
func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			slog.Warn("failed to set TCP_NODELAY", "error", err)
		}
	}
	setDeadline(conn.SetWriteDeadline, t.cfg.WriteTimeout)
	if t.cfg.Password == "" {
		return conn, nil
	}

	secured, err := t.authenticate(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return secured, nil
}

func (t *Transport) authenticate(conn net.Conn) (net.Conn, error) {
	key, err := auth.DeriveKey(t.cfg.Password)
	if err != nil {
		return nil, err
	}
	setDeadline(conn.SetReadDeadline, t.cfg.ReadTimeout)
	clientNonce, serverNonce, err := auth.ClientHandshake(bufio.NewReader(conn), conn, key)
	if err != nil {
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})
	return auth.WrapConn(conn, auth.DeriveSessionKey(key, serverNonce, clientNonce))
}

func setDeadline(set func(time.Time) error, d time.Duration) {
	if d > 0 {
		_ = set(time.Now().Add(d))
	}
}

func encodeRequest(path string, payload any) []byte {
	req := []byte(path)
	if body := payloadBytes(payload); len(body) > 0 {
		req = append(req, ' ')
		req = append(req, body...)
	}
	return append(req, '\x00')
}

func fillPath(pattern string, params map[string]string) string {
	for k, v := range params {
		pattern = strings.ReplaceAll(pattern, "{"+k+"}", url.PathEscape(v))
	}
	return strings.ToLower(pattern)
}

// payloadBytes drops payloads that fail to marshal.
func payloadBytes(v any) []byte {
	switch p := v.(type) {
	case nil:
		return nil
	case []byte:
		return p
	case string:
		return []byte(p)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
