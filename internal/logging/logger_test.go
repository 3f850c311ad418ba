package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	return slog.New(&prettyHandler{writer: &buf, level: lvl}), &buf
}

func TestPrettyHandlerRendersComponentPrefix(t *testing.T) {
	logger, buf := newBufferLogger(t)

	NewComponentLogger(logger, "pipeline").Info("phase started", String("phase", "downloading"))

	out := buf.String()
	if !strings.Contains(out, "INFO pipeline: phase started") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "phase=downloading") {
		t.Fatalf("missing attribute in output: %q", out)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	logger, buf := newBufferLogger(t)

	logger.Info("cache write", String("title", "Morning News"))

	if !strings.Contains(buf.String(), `title="Morning News"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestPrettyHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(&prettyHandler{writer: &buf, level: lvl})

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Fatalf("info record leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "should be kept") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop handler should report disabled")
	}
	logger.Error("ignored", Error(nil))
}
