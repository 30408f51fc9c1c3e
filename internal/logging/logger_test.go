package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autopost/internal/config"
)

func newBufferedConsole(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newConsoleHandler(buf, levelVar)), buf
}

func TestConsoleHandlerPrefixesComponent(t *testing.T) {
	logger, buf := newBufferedConsole(slog.LevelInfo)
	NewComponentLogger(logger, "pipeline").Info("run started",
		String("run_id", "abc123"),
		Int("count", 2),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO pipeline: run started") {
		t.Fatalf("line = %q", line)
	}
	if !strings.Contains(line, "run_id=abc123") || !strings.Contains(line, "count=2") {
		t.Fatalf("attributes missing from line %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	logger, buf := newBufferedConsole(slog.LevelInfo)
	logger.Info("upload failed", String("reason", "access denied"))

	if !strings.Contains(buf.String(), `reason="access denied"`) {
		t.Fatalf("line = %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	logger, buf := newBufferedConsole(slog.LevelWarn)
	logger.Info("should be dropped")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Fatalf("info line leaked past warn level: %q", out)
	}
	if !strings.Contains(out, "WARN should appear") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestJSONHandlerRenamesCoreKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newJSONHandler(buf, levelVar, false))

	logger.Info("run completed", Int("status_code", 200))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["msg"] != "run completed" {
		t.Fatalf("msg = %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("level = %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("ts key missing")
	}
	if payload["status_code"] != float64(200) {
		t.Fatalf("status_code = %v", payload["status_code"])
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("daemon started")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "autopost.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "daemon started") {
		t.Fatalf("log file contents = %q", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
