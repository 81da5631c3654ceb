package tilesindex

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with tilesindex-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
// A nil w writes to stderr.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
// A nil w writes to stderr.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithRunID tags every record with the id of one indexing run.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithTileset adds the root tileset name.
func (l *Logger) WithTileset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("tileset", name),
	}
}

// WithProperty adds an indexed property name.
func (l *Logger) WithProperty(property string) *Logger {
	return &Logger{
		Logger: l.Logger.With("property", property),
	}
}

// LogFeatureDropped logs a tile feature that has no id value.
func (l *Logger) LogFeatureDropped(ctx context.Context, uri string, batchID int, idProperty string) {
	l.WarnContext(ctx, "feature without id dropped",
		"uri", uri,
		"batch_id", batchID,
		"id_property", idProperty,
	)
}

// LogFeaturesRead logs the outcome of the tileset walk.
func (l *Logger) LogFeaturesRead(ctx context.Context, read, unique int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reading features failed",
			"features_read", read,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "features read",
			"features_read", read,
			"unique_features", unique,
		)
	}
}

// LogIndexWritten logs one index artifact.
func (l *Logger) LogIndexWritten(ctx context.Context, property string, t string, url string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "writing index failed",
			"property", property,
			"type", t,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index written",
			"property", property,
			"type", t,
			"url", url,
		)
	}
}

// LogRun logs the end of an indexing run.
func (l *Logger) LogRun(ctx context.Context, rows, indexes int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "indexing failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "indexing completed",
			"rows", rows,
			"indexes", indexes,
			"duration", duration,
		)
	}
}
