package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/muesli/termenv"

	charmlog "github.com/charmbracelet/log"

	"github.com/gzhole/skillhook/internal/config"
)

// NewHandler returns the diagnostics handler for a validated log format.
// The text format is rendered by charm log with the terminal's colour profile.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case config.FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case config.FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	}

	l := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		Formatter:       charmlog.TextFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.StampMilli,
		Prefix:          "skillhook",
	})
	l.SetColorProfile(termenv.ColorProfile())

	return l
}
