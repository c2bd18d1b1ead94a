// Package observability provides logging, metrics and tracing hooks for
// listenable proxies.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// NewLogger creates a text logger writing to w (stderr when nil).
// The "error" attribute key is shortened to "err".
func NewLogger(level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog.Level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// LogProxyCreated logs proxy construction.
func LogProxyCreated(logger *slog.Logger, policy string, keys int) {
	if logger == nil {
		return
	}
	logger.Debug("proxy created",
		slog.String("policy", policy),
		slog.Int("keys", keys),
	)
}

// LogAccess logs an intercepted operation.
func LogAccess(logger *slog.Logger, op, key string, success bool) {
	if logger == nil {
		return
	}
	logger.Debug("container access",
		slog.String("op", op),
		slog.String("key", key),
		slog.Bool("success", success),
	)
}

// LogAccessDenied logs a key rejected by the admission policy.
func LogAccessDenied(logger *slog.Logger, op, key string) {
	if logger == nil {
		return
	}
	logger.Info("access denied by policy",
		slog.String("op", op),
		slog.String("key", key),
	)
}

// LogDispatchError logs a listener failure surfaced to the caller.
func LogDispatchError(logger *slog.Logger, category, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("listener failed",
		slog.String("category", category),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
