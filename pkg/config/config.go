// Package config loads waydo configuration.
//
// Configuration comes from one optional YAML file given with --config.
// Every field has a default, so an empty or missing section keeps the
// stock behavior; command line flags override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mchmarny/waydo/pkg/dispatch"
	"github.com/mchmarny/waydo/pkg/geometry"
	"github.com/mchmarny/waydo/pkg/logger"
	"github.com/mchmarny/waydo/pkg/server"
	"github.com/mchmarny/waydo/pkg/toggle"
)

// Host kinds.
const (
	HostTerminal = "terminal"
	HostHeadless = "headless"
)

const (
	// DefaultCellWidth and DefaultCellHeight convert terminal cells to
	// pixel coordinates.
	DefaultCellWidth  = 8
	DefaultCellHeight = 16

	// DefaultTerminalLogOutput receives logs while the terminal host owns
	// the screen.
	DefaultTerminalLogOutput = "/tmp/waydo.log"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the waydo daemon configuration.
type Config struct {
	// SocketPath is the toggle socket.
	// Default: /tmp/waydo.sock
	SocketPath string `yaml:"socket_path"`

	// LogLevel is one of debug, info, warn, error. Empty defers to LOG_LEVEL.
	LogLevel string `yaml:"log_level"`

	// LogOutput is "stderr" or a file path. Empty picks stderr, or
	// /tmp/waydo.log for the terminal host.
	LogOutput string `yaml:"log_output"`

	// MenuFile is a YAML menu definition. Empty uses the built-in menu.
	MenuFile string `yaml:"menu_file"`

	// Geometry holds the ring layout parameters.
	Geometry geometry.Geometry `yaml:"geometry"`

	// Dispatch configures how actions reach the executors.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Host selects and configures the overlay host.
	Host HostConfig `yaml:"host"`

	// Metrics configures the status server.
	Metrics MetricsConfig `yaml:"metrics"`
}

// DispatchConfig configures command dispatch.
type DispatchConfig struct {
	// KeyPrefix marks key sequence commands.
	// Default: key-
	KeyPrefix string `yaml:"key_prefix"`

	// Compositor is the command prefix compositor actions are appended to.
	// Default: [niri, msg, action]
	Compositor []string `yaml:"compositor"`

	// Keyboard is the ydotool compatible binary.
	// Default: ydotool
	Keyboard string `yaml:"keyboard"`

	// DeferredPrefixes lists commands that run after DeferDelay.
	// Default: [screenshot]
	DeferredPrefixes []string `yaml:"deferred_prefixes"`

	// DeferDelay lets the overlay disappear before deferred commands.
	// Default: 80ms
	DeferDelay time.Duration `yaml:"defer_delay"`

	// ChordDelay separates the chords of a key sequence.
	// Default: 30ms
	ChordDelay time.Duration `yaml:"chord_delay"`

	// Timeout bounds a single executor invocation.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`
}

// HostConfig configures the overlay host.
type HostConfig struct {
	// Kind is terminal or headless.
	// Default: terminal
	Kind string `yaml:"kind"`

	// CellWidth and CellHeight are the pixel size of one terminal cell.
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`

	// Sound plays a short tone on every activation.
	Sound bool `yaml:"sound"`
}

// MetricsConfig configures the HTTP status server.
type MetricsConfig struct {
	// Host is the listen interface.
	// Default: 127.0.0.1
	Host string `yaml:"host"`

	// Port of the status server. 0 disables it.
	// Default: 0
	Port int `yaml:"port"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SocketPath: toggle.DefaultSocketPath,
		Geometry:   geometry.DefaultGeometry(),
		Dispatch: DispatchConfig{
			KeyPrefix:        dispatch.DefaultKeyPrefix,
			Compositor:       dispatch.DefaultCompositorArgv(),
			Keyboard:         dispatch.DefaultKeyboardBinary,
			DeferredPrefixes: dispatch.DefaultDeferredPrefixes(),
			DeferDelay:       dispatch.DefaultDeferDelay,
			ChordDelay:       dispatch.DefaultChordDelay,
			Timeout:          dispatch.DefaultTimeout,
		},
		Host: HostConfig{
			Kind:       HostTerminal,
			CellWidth:  DefaultCellWidth,
			CellHeight: DefaultCellHeight,
		},
		Metrics: MetricsConfig{
			Host: server.DefaultHost,
		},
	}
}

// LoadFile reads path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Load decodes YAML from r over the defaults and validates the result.
// Unknown fields are rejected. An empty document yields the defaults.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.SocketPath == "" {
		fail("socket_path is required")
	}
	if !logger.ValidLevel(c.LogLevel) {
		fail("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	g := c.Geometry
	if g.CenterRadius <= 0 {
		fail("geometry.center_radius must be positive")
	}
	for name, ring := range map[string]geometry.Ring{"root": g.Root, "submenu": g.Submenu} {
		if ring.Distance <= 0 || ring.ItemRadius <= 0 {
			fail("geometry.%s distance and item_radius must be positive", name)
		}
		if ring.Deadzone < 0 {
			fail("geometry.%s.deadzone must not be negative", name)
		}
	}

	d := c.Dispatch
	if len(d.Compositor) == 0 || d.Compositor[0] == "" {
		fail("dispatch.compositor needs a program")
	}
	if d.Keyboard == "" {
		fail("dispatch.keyboard is required")
	}
	if d.DeferDelay < 0 || d.ChordDelay < 0 {
		fail("dispatch delays must not be negative")
	}
	if d.Timeout <= 0 {
		fail("dispatch.timeout must be positive")
	}

	switch c.Host.Kind {
	case HostTerminal, HostHeadless:
	default:
		fail("host.kind %q is not one of %s, %s", c.Host.Kind, HostTerminal, HostHeadless)
	}
	if c.Host.CellWidth <= 0 || c.Host.CellHeight <= 0 {
		fail("host cell size must be positive")
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		fail("metrics.port %d out of range", c.Metrics.Port)
	}

	return errors.Join(errs...)
}

// ResolvedLogOutput returns where logs go for this configuration.
func (c *Config) ResolvedLogOutput() string {
	if c.LogOutput != "" {
		return c.LogOutput
	}
	if c.Host.Kind == HostTerminal {
		return DefaultTerminalLogOutput
	}
	return logger.OutputStderr
}
