package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newBufferHandler(level slog.Level) (*bytes.Buffer, slog.Handler) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	return &buf, newConsoleHandler(&buf, lvl, false)
}

func TestConsoleHandlerFormatsRecord(t *testing.T) {
	buf, handler := newBufferHandler(slog.LevelInfo)
	logger := slog.New(handler)

	logger.Info("session started", slog.Int64("session_id", 7), slog.String("owner", "maria"))
	line := buf.String()

	if !strings.Contains(line, "INFO") {
		t.Fatalf("expected level label in %q", line)
	}
	if !strings.Contains(line, "session started") {
		t.Fatalf("expected message in %q", line)
	}
	if !strings.Contains(line, "session_id=7") || !strings.Contains(line, "owner=maria") {
		t.Fatalf("expected attrs in %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected trailing newline in %q", line)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	buf, handler := newBufferHandler(slog.LevelInfo)
	slog.New(handler).Info("paused", slog.String("observation", "waiting on parts"))

	if !strings.Contains(buf.String(), `observation="waiting on parts"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestConsoleHandlerGroupsAndAttrs(t *testing.T) {
	buf, handler := newBufferHandler(slog.LevelInfo)
	logger := slog.New(handler).With(slog.String("component", "tracker")).WithGroup("req")

	logger.Info("done", slog.String("id", "abc"))
	line := buf.String()

	if !strings.Contains(line, "component=tracker") {
		t.Fatalf("expected inherited attr in %q", line)
	}
	if !strings.Contains(line, "req.id=abc") {
		t.Fatalf("expected group-prefixed attr in %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	buf, handler := newBufferHandler(slog.LevelWarn)
	logger := slog.New(handler)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info record suppressed, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("expected warn record emitted, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewJSONFormatWritesFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "shopclock.log")

	logger, err := New(Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("session finished", slog.Int64("total_seconds", 2400))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	if record["msg"] != "session finished" {
		t.Fatalf("unexpected msg: %#v", record)
	}
	if record["level"] != "info" {
		t.Fatalf("unexpected level: %#v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", record)
	}
	if record["total_seconds"] != float64(2400) {
		t.Fatalf("unexpected total_seconds: %#v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestAttrStringFormatsTimeAndDuration(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if got := attrString(slog.TimeValue(stamp)); got != "2026-03-14T09:00:00Z" {
		t.Fatalf("unexpected time formatting: %q", got)
	}
	if got := attrString(slog.DurationValue(90 * time.Second)); got != "1m30s" {
		t.Fatalf("unexpected duration formatting: %q", got)
	}
}
