// Package log builds the daemon's slog.Logger.
//
// Console output is split by severity: errors on stderr, everything else on
// stdout. With a log file, the console gets a single stderr handler and the
// file receives every record at the configured level. Console records are
// text on a terminal and JSON otherwise.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// LevelTrace sits below Debug and is used for per-frame output.
const LevelTrace slog.Level = -8

var levels = map[string]slog.Level{
	"trace": LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to its slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	if l, ok := levels[strings.ToLower(s)]; ok {
		return l
	}
	return slog.LevelInfo
}

// MultiHandler hands each record to every handler that accepts its level.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m MultiHandler) derive(fn func(slog.Handler) slog.Handler) MultiHandler {
	out := make([]slog.Handler, 0, len(m.hs))
	for _, h := range m.hs {
		out = append(out, fn(h))
	}
	return MultiHandler{hs: out}
}

// LevelFilter forwards only the levels pass accepts.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if f.pass(r.Level) {
		return f.h.Handle(ctx, r)
	}
	return nil
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

func belowError(l slog.Level) bool   { return l < slog.LevelError }
func atLeastError(l slog.Level) bool { return l >= slog.LevelError }

// isTerminal is swapped in tests.
var isTerminal = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

func consoleHandler(f *os.File, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if isTerminal(f) {
		return slog.NewTextHandler(f, opts)
	}
	return slog.NewJSONHandler(f, opts)
}

// SetupLogger returns the daemon logger and the files it opened, which the
// caller closes on shutdown.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)

	if logFile == "" {
		return slog.New(MultiHandler{hs: []slog.Handler{
			LevelFilter{pass: belowError, h: consoleHandler(os.Stdout, level)},
			LevelFilter{pass: atLeastError, h: consoleHandler(os.Stderr, slog.LevelError)},
		}}), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	h := MultiHandler{hs: []slog.Handler{
		consoleHandler(os.Stderr, level),
		slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}),
	}}
	return slog.New(h), []io.Closer{f}, nil
}
