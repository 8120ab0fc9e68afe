package app

import (
	"io"
	"log/slog"
)

// newLogger builds the session's private slog.Logger writing to the app's
// output sink. Nothing here touches slog's process-global default: every
// App owns its logger, so several sessions in one process (the test
// harness runs them concurrently) log to their own sinks without
// interfering.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(levelStr)}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

// parseLevel maps a configured level name onto slog's scale, falling back
// to info for anything unrecognized.
func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
