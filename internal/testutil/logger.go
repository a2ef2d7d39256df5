// Package testutil provides shared helpers for tests.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// writerFunc adapts a function to io.Writer.
type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// NewTestLogger returns a debug-level slog logger routed through t.Log, so
// log lines surface only on failure or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	sink := writerFunc(func(p []byte) (int, error) {
		t.Helper()
		t.Log(string(bytes.TrimRight(p, "\n")))
		return len(p), nil
	})
	return slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
