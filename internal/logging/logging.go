// Package logging holds the logger shared by every ScrapBoard package.
//
// By default nothing is logged. The CLI installs a handler at start-up with
// SetLogger; libraries embedding the engine may do the same.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger replaces the shared logger. Passing nil restores the silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the shared logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel maps the config spelling of a level onto slog.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
