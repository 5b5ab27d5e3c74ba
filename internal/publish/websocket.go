package publish

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nexusgame/hydra/apitypes"
)

const writeWait = time.Second

// WebConfig configures the WebSocket event endpoint.
type WebConfig struct {
	Addr       string `help:"WebSocket event listen address; empty disables it" env:"HYDRA_WS_ADDR"`
	Path       string `help:"WebSocket event path" default:"/events" env:"HYDRA_WS_PATH"`
	ClientSend int    `help:"Events buffered per client before it is dropped" default:"64" env:"HYDRA_WS_CLIENT_BUFFER"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to connected WebSocket clients. A client that falls
// ClientSend events behind is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
	bufSize  int

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewHub returns a hub buffering bufSize events per client.
func NewHub(bufSize int, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger.With("component", "websocket"),
		bufSize: bufSize,
		clients: map[*wsClient]struct{}{},
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", "error", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, h.bufSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("websocket client connected", "remote", r.RemoteAddr)

	go h.write(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", "error", err)
			}
			break
		}
	}
	h.remove(c)
	h.logger.Info("websocket client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) write(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Send queues ev for every client.
func (h *Hub) Send(ev apitypes.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("websocket client too slow, dropping")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeWeb serves hub on cfg.Addr until ctx is done.
func ServeWeb(ctx context.Context, cfg WebConfig, hub *Hub, logger *slog.Logger) error {
	path := cfg.Path
	if path == "" {
		path = "/events"
	}
	mux := http.NewServeMux()
	mux.Handle(path, hub)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("websocket events listening", "addr", cfg.Addr, "path", path)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
