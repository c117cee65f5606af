// waydo is a pointer driven radial menu for Wayland compositors.
//
// Usage:
//
//	waydo [flags] [daemon|toggle]
//
// "daemon" runs the menu and listens on the toggle socket. "toggle" (the
// default) asks a running daemon to show or hide the menu; bind it to a
// compositor key or mouse button.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/mchmarny/waydo/pkg/config"
	"github.com/mchmarny/waydo/pkg/daemon"
	"github.com/mchmarny/waydo/pkg/logger"
	"github.com/mchmarny/waydo/pkg/toggle"
)

const (
	name = "waydo"

	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var (
	version = "v0.0.0"  // Set at build time via -ldflags "-X main.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X main.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X main.date=date"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath  string
	socket      string
	logLevel    string
	logOutput   string
	hostKind    string
	metricsPort int
	showVersion bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options

	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flagSet.StringVar(&opts.socket, "socket", "", "toggle socket path (default "+toggle.DefaultSocketPath+")")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default $"+logger.EnvVarLogLevel+" or info)")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "log destination: stderr or a file path")
	flagSet.StringVar(&opts.hostKind, "host", "", "overlay host: terminal or headless")
	flagSet.IntVar(&opts.metricsPort, "metrics-port", 0, "status server port, 0 disables it")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout, flagSet)
			return exitOK
		}
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		printUsage(stderr, flagSet)
		return exitUsage
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "%s %s (commit %s, built %s)\n", name, version, commit, date)
		return exitOK
	}

	rest := flagSet.Args()
	if len(rest) > 1 {
		printUsage(stderr, flagSet)
		return exitUsage
	}

	command := "toggle"
	if len(rest) == 1 {
		command = rest[0]
	}
	if command != "toggle" && command != "daemon" {
		printUsage(stderr, flagSet)
		return exitUsage
	}

	cfg, err := loadConfig(flagSet, &opts)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return exitError
	}

	switch command {
	case "toggle":
		if err := toggle.Send(ctx, cfg.SocketPath); err != nil {
			fmt.Fprintf(stderr, "%s: toggle failed: %v\n", name, err)
			return exitError
		}

	case "daemon":
		if err := runDaemon(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return exitError
		}
	}
	return exitOK
}

// loadConfig reads the config file, if any, and applies flags that were
// set explicitly on the command line.
func loadConfig(flagSet *pflag.FlagSet, opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flagSet.Changed("socket") {
		cfg.SocketPath = opts.socket
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flagSet.Changed("log-output") {
		cfg.LogOutput = opts.logOutput
	}
	if flagSet.Changed("host") {
		cfg.Host.Kind = opts.hostKind
	}
	if flagSet.Changed("metrics-port") {
		cfg.Metrics.Port = opts.metricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	w, closeLog, err := logger.OpenOutput(cfg.ResolvedLogOutput())
	if err != nil {
		return err
	}
	defer closeLog()

	l := logger.SetDefaultLogger(w, name, version, cfg.LogLevel)
	l.Debug("build info", "commit", commit, "date", date)

	d, err := daemon.New(cfg,
		daemon.WithLogger(l),
		daemon.WithVersion(version),
	)
	if err != nil {
		return err
	}

	return d.Run(ctx)
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage:
  %[1]s [flags] [daemon|toggle]

Commands:
  daemon   run the menu and listen for toggle requests
  toggle   show or hide the menu of a running daemon (default)

Flags:
`, name)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
	flagSet.SetOutput(io.Discard)
}
