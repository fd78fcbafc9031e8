package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/gzhole/skillhook/internal/config"
)

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer

	log := slog.New(NewHandler(&buf, slog.LevelInfo, config.FormatJSON))
	log.Debug("hidden")
	log.Info("shown", slog.String("tier", "project"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"tier":"project"`) {
		t.Errorf("expected JSON attribute, got: %s", out)
	}
}

func TestNewHandler_Formats(t *testing.T) {
	for _, format := range config.LogFormats {
		var buf bytes.Buffer

		log := slog.New(NewHandler(&buf, slog.LevelWarn, format))
		log.Info("quiet")
		log.Warn("pattern skipped", slog.String("skill", "react"))

		out := buf.String()
		if strings.Contains(out, "quiet") {
			t.Errorf("%s: info line should be filtered: %s", format, out)
		}
		if !strings.Contains(out, "pattern skipped") || !strings.Contains(out, "react") {
			t.Errorf("%s: expected warning with attribute, got: %s", format, out)
		}
	}
}
