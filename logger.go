package palcalc

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger with palcalc-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewConsoleLogger creates a colorized Logger for interactive terminals.
func NewConsoleLogger(level slog.Level) *Logger {
	return NewLogger(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithAttempt adds an attempt field to the logger.
func (l *Logger) WithAttempt(attempt int) *Logger {
	return &Logger{
		Logger: l.Logger.With("attempt", attempt),
	}
}

// WithColors adds the effective palette size to the logger.
func (l *Logger) WithColors(colors int) *Logger {
	return &Logger{
		Logger: l.Logger.With("colors", colors),
	}
}

// LogAttempt logs a finished clustering attempt.
func (l *Logger) LogAttempt(ctx context.Context, steps int, converged bool, score float64, best bool, elapsed time.Duration) {
	l.DebugContext(ctx, "attempt completed",
		"steps", steps,
		"converged", converged,
		"score", score,
		"best", best,
		"elapsed", elapsed,
	)
}

// LogRun logs a whole calculation.
func (l *Logger) LogRun(ctx context.Context, distinct int, pixels uint64, attempts int, best float64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "palette calculation failed",
			"distinct", distinct,
			"pixels", humanize.Comma(int64(pixels)),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "palette calculated",
		"distinct", distinct,
		"pixels", humanize.Comma(int64(pixels)),
		"attempts", attempts,
		"score", best,
		"elapsed", elapsed,
	)
}

// LogLoad logs the result of loading a batch of images.
// peakMemory is the largest decoded-image reservation held at once.
func (l *Logger) LogLoad(ctx context.Context, files int, bytes, peakMemory int64, distinct int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "image loading failed",
			"files", files,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "images loaded",
		"files", files,
		"read", humanize.IBytes(uint64(max(bytes, 0))),
		"peak_memory", humanize.IBytes(uint64(max(peakMemory, 0))),
		"distinct", humanize.Comma(int64(distinct)),
		"elapsed", elapsed,
	)
}

// LogSnapshot logs a histogram snapshot read or write.
func (l *Logger) LogSnapshot(ctx context.Context, name string, op string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op,
		"name", name,
	)
}
