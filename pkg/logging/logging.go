// Package logging provides the structured audit log this service guarantees:
// one line per strategy attempt and one per overall acquisition outcome, each
// carrying a category, an action, and optional content identifier, metadata
// and duration fields.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Field names shared by every audit line.
const (
	FieldCategory  = "category"
	FieldAction    = "action"
	FieldContentID = "contentId"
	FieldStrategy  = "strategy"
	FieldDuration  = "duration"
)

// Categories used by the acquisition subsystem.
const (
	CategoryAcquisition = "acquisition"
	CategoryStorage     = "storage"
	CategoryFeed        = "feed"
)

// New constructs a slog logger writing JSON or text to w. Level accepts
// "debug", "info", "warn" and "error"; anything else falls back to info.
func New(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Default returns a text logger on stdout at info level.
func Default() *slog.Logger {
	return New(os.Stdout, "info", "text")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Attempt emits one audit line for a single strategy attempt.
func Attempt(logger *slog.Logger, contentID, strategy string, success bool, errMsg string, elapsed time.Duration) {
	if logger == nil {
		return
	}

	attrs := []any{
		slog.String(FieldCategory, CategoryAcquisition),
		slog.String(FieldAction, "strategy_attempt"),
		slog.String(FieldContentID, contentID),
		slog.String(FieldStrategy, strategy),
		slog.Bool("success", success),
		slog.Duration(FieldDuration, elapsed),
	}

	if success {
		logger.Info("strategy attempt succeeded", attrs...)
		return
	}
	attrs = append(attrs, slog.String("error", errMsg))
	logger.Info("strategy attempt failed", attrs...)
}

// Outcome emits one audit line for the overall result of an acquisition call.
func Outcome(logger *slog.Logger, contentID string, success bool, strategy string, wordCount, attempts int, elapsed time.Duration) {
	if logger == nil {
		return
	}

	attrs := []any{
		slog.String(FieldCategory, CategoryAcquisition),
		slog.String(FieldAction, "acquisition_complete"),
		slog.String(FieldContentID, contentID),
		slog.Bool("success", success),
		slog.Int("attempts", attempts),
		slog.Duration(FieldDuration, elapsed),
	}

	if success {
		attrs = append(attrs,
			slog.String(FieldStrategy, strategy),
			slog.Int("wordCount", wordCount),
		)
		logger.Info("transcript acquired", attrs...)
		return
	}
	logger.Warn("transcript unavailable", attrs...)
}
