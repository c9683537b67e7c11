package geoblob

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with geoblob-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLane adds a lane field to the logger.
func (l *Logger) WithLane(lane int) *Logger {
	return &Logger{
		Logger: l.Logger.With("lane", lane),
	}
}

// LogBatch logs the completion of one batch on a lane.
func (l *Logger) LogBatch(ctx context.Context, lane, rows, failed int, duration time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"lane", lane,
			"rows", rows,
			"failed", failed,
			"duration", duration,
		)
	} else {
		l.DebugContext(ctx, "batch completed",
			"lane", lane,
			"rows", rows,
			"duration", duration,
		)
	}
}

// LogRowError logs a row that was replaced by NULL.
func (l *Logger) LogRowError(ctx context.Context, err *RowError) {
	l.DebugContext(ctx, "row failed",
		"row", err.Row,
		"lane", err.Lane,
		"error", err.cause,
	)
}

// LogReset logs a lane arena reset.
func (l *Logger) LogReset(ctx context.Context, lane int, bytesUsed uint64, nodes int) {
	l.DebugContext(ctx, "lane reset",
		"lane", lane,
		"bytes_used", bytesUsed,
		"nodes", nodes,
	)
}

// LogMap logs the completion of a Map or Extent call.
func (l *Logger) LogMap(ctx context.Context, op string, rows, failed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, op+" completed",
			"rows", rows,
			"failed", failed,
		)
	}
}
