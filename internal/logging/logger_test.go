package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"hawaii-climate/internal/config"
)

func TestNew_prodWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "hawaii-climate")

	logger.Info("hello", "route", "/api/v1.0/stations")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{
		"msg":     "hello",
		"app":     "hawaii-climate",
		"version": "1.2.3",
		"env":     "prod",
		"route":   "/api/v1.0/stations",
	} {
		if rec[key] != want {
			t.Errorf("%s = %v; want %q", key, rec[key], want)
		}
	}
}

func TestNew_respectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}, "1.0.0", "hawaii-climate")

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestNew_devUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}, "dev", "hawaii-climate")

	logger.Debug("sql", "op", "query")

	out := buf.String()
	if !strings.Contains(out, "sql") || !strings.Contains(out, "hawaii-climate") {
		t.Fatalf("dev output = %q; want message and app attr", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("dev output should not be JSON: %q", out)
	}
}
