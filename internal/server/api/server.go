package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nexusgame/hydra/internal/server/api/auth"
)

var wsRegex = regexp.MustCompile(`\s`)

// Server implements the control API: one null-terminated command per
// connection answered with a single JSON line, or a stream route that keeps
// the connection.
type Server struct {
	addr   string
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	key    []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a control API server. A non-empty config.Password enables
// authentication.
func New(addr string, config ServerConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Server{
		addr:   addr,
		logger: logger,
		config: config,
		router: NewRouter(),
	}
	if config.Password != "" {
		key, err := auth.DeriveKey(config.Password)
		if err != nil {
			return nil, fmt.Errorf("derive api key: %w", err)
		}
		a.key = key
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a, nil
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound address once started, else the configured one.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String(), "auth", a.key != nil)
	a.wg.Add(1)
	go a.serve()
	return nil
}

// Close stops the API server and cancels running stream handlers.
func (a *Server) Close() {
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	problemJSON, _ := json.Marshal(WrapError(err))
	fmt.Fprintf(w, "%s\n", problemJSON)
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// bufferedConn serves reads from the request reader so bytes buffered past
// the terminator reach stream handlers.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

func (a *Server) secure(conn net.Conn, r *bufio.Reader, logger *slog.Logger) (net.Conn, *bufio.Reader, error) {
	ok, err := auth.IsAuthHandshake(r)
	if err != nil {
		return nil, nil, fmt.Errorf("peek handshake: %w", err)
	}
	if !ok {
		a.writeError(conn, ErrUnauthorized("authentication required"))
		return nil, nil, errors.New("client did not authenticate")
	}
	clientNonce, serverNonce, err := auth.ServerHandshake(r, conn, a.key)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			a.writeError(conn, ErrUnauthorized("invalid password"))
		}
		return nil, nil, err
	}
	secured, err := auth.WrapConn(&bufferedConn{Conn: conn, r: r}, auth.DeriveSessionKey(a.key, serverNonce, clientNonce))
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("api client authenticated")
	return secured, bufio.NewReader(secured), nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(a.ctx)
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	var c net.Conn = conn
	r := bufio.NewReader(conn)
	if a.key != nil {
		var err error
		if c, r, err = a.secure(conn, r, connLogger); err != nil {
			connLogger.Error("api authentication failed", "error", err)
			return
		}
	}

	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(c, ErrBadRequest("empty request"))
		return
	}

	var path, payload string
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(c, ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Info("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(c, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(c, res.JSON)
		return
	}

	if sh, params := a.router.MatchStream(path); sh != nil {
		_ = conn.SetReadDeadline(time.Time{})
		go func() {
			<-connCtx.Done()
			_ = conn.Close()
		}()
		connLogger.Info("api stream begin", "path", path)
		if err := sh(connCtx, &bufferedConn{Conn: c, r: r}, params, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}

	connLogger.Error("api unknown path", "path", path)
	a.writeError(c, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}
