package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvVarLogLevel is the environment variable name for setting the log level.
	EnvVarLogLevel = "LOG_LEVEL"

	// OutputStderr selects standard error as the log destination.
	OutputStderr = "stderr"
)

// NewStructuredLogger creates a JSON logger writing to w at the given level.
// Defined module name and version are included in the logger's context.
// AddSource is enabled for debug level logging only.
// Parameters:
//   - w: Destination for log records.
//   - module: The name of the module/application using the logger.
//   - version: The version of the module/application (e.g., "v1.0.0").
//   - level: The log level as a string (e.g., "debug", "info", "warn", "error").
func NewStructuredLogger(w io.Writer, module, version, level string) *slog.Logger {
	lev := ParseLogLevel(level)
	addSource := lev <= slog.LevelDebug

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lev,
		AddSource: addSource,
	})).With("module", module, "version", version)
}

// NewLogLogger adapts l to a standard library log.Logger that records
// every line at level. It is used for http.Server error logs.
func NewLogLogger(l *slog.Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(l.Handler(), level)
}

// SetDefaultLogger creates a structured logger and installs it as the
// slog default. An empty level falls back to the LOG_LEVEL environment
// variable.
func SetDefaultLogger(w io.Writer, module, version, level string) *slog.Logger {
	if strings.TrimSpace(level) == "" {
		level = os.Getenv(EnvVarLogLevel)
	}

	l := NewStructuredLogger(w, module, version, level)
	slog.SetDefault(l)
	return l
}

// OpenOutput resolves a log destination. An empty path or "stderr" is
// standard error; anything else is a file opened for appending. The
// returned close function is a no-op for standard error.
func OpenOutput(path string) (io.Writer, func() error, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == OutputStderr {
		return os.Stderr, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log output %s: %w", path, err)
	}
	return f, f.Close, nil
}

// ParseLogLevel converts a string representation of a log level into a slog.Level.
// Parameters:
//   - level: The log level as a string (e.g., "debug", "info", "warn", "error").
//
// Returns:
//   - slog.Level corresponding to the input string. Defaults to slog.LevelInfo for unrecognized strings.
func ParseLogLevel(level string) slog.Level {
	lev, _ := lookupLevel(level)
	return lev
}

// ValidLevel reports whether level names a known log level. The empty
// string is valid and means the default.
func ValidLevel(level string) bool {
	if strings.TrimSpace(level) == "" {
		return true
	}
	_, ok := lookupLevel(level)
	return ok
}

func lookupLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
