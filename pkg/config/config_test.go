package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.SocketPath != "/tmp/waydo.sock" {
		t.Errorf("expected socket_path=/tmp/waydo.sock, got %s", cfg.SocketPath)
	}
	if cfg.Geometry.CenterRadius != 24 || cfg.Geometry.Root.Distance != 120 || cfg.Geometry.Submenu.Deadzone != 30 {
		t.Errorf("unexpected geometry defaults: %+v", cfg.Geometry)
	}
	if !reflect.DeepEqual(cfg.Dispatch.Compositor, []string{"niri", "msg", "action"}) {
		t.Errorf("expected niri compositor, got %v", cfg.Dispatch.Compositor)
	}
	if cfg.Dispatch.DeferDelay != 80*time.Millisecond {
		t.Errorf("expected defer_delay=80ms, got %v", cfg.Dispatch.DeferDelay)
	}
	if cfg.Host.Kind != HostTerminal {
		t.Errorf("expected host.kind=terminal, got %s", cfg.Host.Kind)
	}
	if cfg.Metrics.Port != 0 {
		t.Errorf("expected metrics disabled, got port %d", cfg.Metrics.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waydo.yaml")
	content := `
socket_path: /run/user/1000/waydo.sock
log_level: debug
menu_file: /etc/waydo/menu.yaml
geometry:
  center_radius: 30
  root:
    distance: 150
    item_radius: 50
    deadzone: 32
dispatch:
  compositor: [swaymsg]
  deferred_prefixes: [screenshot, exec grim]
  defer_delay: 120ms
  chord_delay: 10ms
host:
  kind: headless
  sound: true
metrics:
  port: 9876
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.SocketPath != "/run/user/1000/waydo.sock" {
		t.Errorf("socket_path = %s", cfg.SocketPath)
	}
	if cfg.Geometry.Root.Distance != 150 || cfg.Geometry.CenterRadius != 30 {
		t.Errorf("geometry = %+v", cfg.Geometry)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Geometry.Submenu.Distance != 108 {
		t.Errorf("submenu distance = %v, want default 108", cfg.Geometry.Submenu.Distance)
	}
	if cfg.Dispatch.Keyboard != "ydotool" {
		t.Errorf("keyboard = %s, want default ydotool", cfg.Dispatch.Keyboard)
	}
	if !reflect.DeepEqual(cfg.Dispatch.Compositor, []string{"swaymsg"}) {
		t.Errorf("compositor = %v", cfg.Dispatch.Compositor)
	}
	if !reflect.DeepEqual(cfg.Dispatch.DeferredPrefixes, []string{"screenshot", "exec grim"}) {
		t.Errorf("deferred_prefixes = %v", cfg.Dispatch.DeferredPrefixes)
	}
	if cfg.Dispatch.DeferDelay != 120*time.Millisecond || cfg.Dispatch.ChordDelay != 10*time.Millisecond {
		t.Errorf("delays = %v, %v", cfg.Dispatch.DeferDelay, cfg.Dispatch.ChordDelay)
	}
	if cfg.Host.Kind != HostHeadless || !cfg.Host.Sound {
		t.Errorf("host = %+v", cfg.Host)
	}
	if cfg.Host.CellWidth != DefaultCellWidth {
		t.Errorf("cell_width = %d, want default", cfg.Host.CellWidth)
	}
	if cfg.Metrics.Port != 9876 || cfg.Metrics.Host != "127.0.0.1" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load(empty) error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("empty document should yield defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "unknown field", content: "sockets: /tmp/x\n"},
		{name: "malformed yaml", content: "socket_path: [\n"},
		{name: "bad duration", content: "dispatch:\n  defer_delay: soon\n"},
		{name: "bad log level", content: "log_level: loud\n", invalid: true},
		{name: "bad host", content: "host:\n  kind: gtk\n", invalid: true},
		{name: "empty socket", content: "socket_path: \"\"\n", invalid: true},
		{name: "negative deadzone", content: "geometry:\n  submenu:\n    distance: 100\n    item_radius: 40\n    deadzone: -1\n", invalid: true},
		{name: "zero center", content: "geometry:\n  center_radius: 0\n", invalid: true},
		{name: "empty compositor", content: "dispatch:\n  compositor: []\n", invalid: true},
		{name: "zero timeout", content: "dispatch:\n  timeout: 0s\n", invalid: true},
		{name: "port out of range", content: "metrics:\n  port: 70000\n", invalid: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(test.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := errors.Is(err, ErrInvalid); got != test.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err: %v)", got, test.invalid, err)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want ErrNotExist", err)
	}
}

func TestResolvedLogOutput(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		output string
		want   string
	}{
		{name: "terminal default", kind: HostTerminal, want: DefaultTerminalLogOutput},
		{name: "headless default", kind: HostHeadless, want: "stderr"},
		{name: "explicit", kind: HostTerminal, output: "stderr", want: "stderr"},
		{name: "file", kind: HostHeadless, output: "/var/log/waydo.log", want: "/var/log/waydo.log"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			cfg.Host.Kind = test.kind
			cfg.LogOutput = test.output
			if got := cfg.ResolvedLogOutput(); got != test.want {
				t.Errorf("ResolvedLogOutput() = %q, want %q", got, test.want)
			}
		})
	}
}
