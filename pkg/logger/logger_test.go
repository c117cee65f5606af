package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  slog.Level
		valid bool
	}{
		{in: "debug", want: slog.LevelDebug, valid: true},
		{in: " DEBUG ", want: slog.LevelDebug, valid: true},
		{in: "info", want: slog.LevelInfo, valid: true},
		{in: "warn", want: slog.LevelWarn, valid: true},
		{in: "warning", want: slog.LevelWarn, valid: true},
		{in: "error", want: slog.LevelError, valid: true},
		{in: "", want: slog.LevelInfo, valid: true},
		{in: "verbose", want: slog.LevelInfo, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got := ValidLevel(tt.in); got != tt.valid {
				t.Errorf("ValidLevel(%q) = %v, want %v", tt.in, got, tt.valid)
			}
		})
	}
}

func TestNewStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger(&buf, "waydo", "v1.2.3", "warn")

	l.Info("hidden")
	l.Warn("shown", "path", "/tmp/waydo.sock")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d records, want 1: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}

	for key, want := range map[string]string{
		"msg":     "shown",
		"module":  "waydo",
		"version": "v1.2.3",
		"path":    "/tmp/waydo.sock",
	} {
		if rec[key] != want {
			t.Errorf("%s = %v, want %q", key, rec[key], want)
		}
	}
	if _, ok := rec["source"]; ok {
		t.Error("source should only be added at debug level")
	}
}

func TestDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	NewStructuredLogger(&buf, "waydo", "dev", "debug").Debug("trace")

	if !strings.Contains(buf.String(), `"source"`) {
		t.Errorf("debug record missing source: %s", buf.String())
	}
}

func TestSetDefaultLoggerFromEnv(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv(EnvVarLogLevel, "error")

	var buf bytes.Buffer
	SetDefaultLogger(&buf, "waydo", "dev", "")

	slog.Warn("dropped")
	slog.Error("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("LOG_LEVEL not applied: %s", out)
	}
}

func TestNewLogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger(&buf, "waydo", "dev", "info")

	NewLogLogger(l, slog.LevelError).Print("http: TLS handshake error")

	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("log.Logger output not at error level: %s", buf.String())
	}
}

func TestOpenOutput(t *testing.T) {
	for _, path := range []string{"", "stderr"} {
		w, closeFn, err := OpenOutput(path)
		if err != nil {
			t.Fatalf("OpenOutput(%q) error = %v", path, err)
		}
		if w != os.Stderr {
			t.Errorf("OpenOutput(%q) is not stderr", path)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close stderr output: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "waydo.log")
	w, closeFn, err := OpenOutput(path)
	if err != nil {
		t.Fatal(err)
	}
	NewStructuredLogger(w, "waydo", "dev", "info").Info("to file")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file content = %q", data)
	}

	if _, _, err := OpenOutput(filepath.Join(t.TempDir(), "missing", "waydo.log")); err == nil {
		t.Error("OpenOutput() into a missing directory should fail")
	}
}
