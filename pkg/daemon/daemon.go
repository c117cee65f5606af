// Package daemon runs the menu: it owns the navigation state machine and
// connects it to the toggle socket, the overlay host, the executors and
// the status server.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/waydo/pkg/clock"
	"github.com/mchmarny/waydo/pkg/config"
	"github.com/mchmarny/waydo/pkg/dispatch"
	"github.com/mchmarny/waydo/pkg/feedback"
	"github.com/mchmarny/waydo/pkg/host"
	"github.com/mchmarny/waydo/pkg/host/headless"
	"github.com/mchmarny/waydo/pkg/host/terminal"
	"github.com/mchmarny/waydo/pkg/menu"
	"github.com/mchmarny/waydo/pkg/metric"
	"github.com/mchmarny/waydo/pkg/nav"
	"github.com/mchmarny/waydo/pkg/server"
	"github.com/mchmarny/waydo/pkg/toggle"
)

// ErrNotRunning is reported by Healthy while the event loop is stopped.
var ErrNotRunning = errors.New("event loop not running")

// Dispatch results recorded in waydo_dispatch_total.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Daemon wires the menu engine to its surroundings.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	version    string
	tree       *menu.Tree
	host       host.Host
	compositor dispatch.Compositor
	keyboard   dispatch.Keyboard
	player     feedback.Player
	clock      clock.Clock
	registry   *prometheus.Registry
	metrics    *metric.Set

	machine *nav.Machine
	view    atomic.Pointer[nav.View]
	running atomic.Bool
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Daemon) { d.logger = l }
}

// WithVersion sets the version reported at startup.
func WithVersion(v string) Option {
	return func(d *Daemon) { d.version = v }
}

// WithTree uses tree instead of the configured menu.
func WithTree(tree *menu.Tree) Option {
	return func(d *Daemon) { d.tree = tree }
}

// WithHost uses h instead of the configured host kind.
func WithHost(h host.Host) Option {
	return func(d *Daemon) { d.host = h }
}

// WithExecutors replaces the exec backed compositor and keyboard.
func WithExecutors(c dispatch.Compositor, k dispatch.Keyboard) Option {
	return func(d *Daemon) {
		d.compositor = c
		d.keyboard = k
	}
}

// WithPlayer sets the activation feedback player.
func WithPlayer(p feedback.Player) Option {
	return func(d *Daemon) { d.player = p }
}

// WithClock sets the clock used for deferred dispatch.
func WithClock(c clock.Clock) Option {
	return func(d *Daemon) { d.clock = c }
}

// WithRegistry sets the Prometheus registry the daemon counters live on.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(d *Daemon) { d.registry = reg }
}

// New builds a Daemon from cfg. The menu file, when configured, is loaded
// and validated here so definition errors surface before anything binds.
func New(cfg *config.Config, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:     cfg,
		logger:  slog.Default(),
		version: "dev",
		clock:   clock.Real(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.tree == nil {
		tree, err := loadTree(cfg.MenuFile)
		if err != nil {
			return nil, err
		}
		d.tree = tree
	}
	if d.host == nil {
		d.host = newHost(cfg, d.logger)
	}
	if d.compositor == nil {
		d.compositor = dispatch.NewCommandCompositor(cfg.Dispatch.Compositor)
	}
	if d.keyboard == nil {
		d.keyboard = dispatch.NewCommandKeyboard(cfg.Dispatch.Keyboard)
	}
	if d.player == nil {
		d.player = feedback.Nop{}
		if cfg.Host.Sound {
			d.player = feedback.NewTone(d.logger)
		}
	}
	if d.registry == nil {
		d.registry = metric.NewRegistry()
	}
	d.metrics = metric.NewSet(d.registry)

	dispatcher := dispatch.New(d.compositor, d.keyboard,
		dispatch.WithClock(d.clock),
		dispatch.WithLogger(d.logger),
		dispatch.WithObserver(d.observeDispatch),
		dispatch.WithKeyPrefix(cfg.Dispatch.KeyPrefix),
		dispatch.WithDeferred(cfg.Dispatch.DeferredPrefixes, cfg.Dispatch.DeferDelay),
		dispatch.WithChordDelay(cfg.Dispatch.ChordDelay),
		dispatch.WithTimeout(cfg.Dispatch.Timeout),
	)

	d.machine = nav.New(d.tree, dispatcher,
		nav.WithGeometry(cfg.Geometry),
		nav.WithLogger(d.logger),
	)
	d.publish()

	return d, nil
}

func loadTree(path string) (*menu.Tree, error) {
	if path == "" {
		return menu.Default(), nil
	}
	tree, err := menu.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading menu: %w", err)
	}
	return tree, nil
}

func newHost(cfg *config.Config, logger *slog.Logger) host.Host {
	if cfg.Host.Kind == config.HostHeadless {
		return headless.New()
	}
	return terminal.New(
		terminal.WithCellSize(cfg.Host.CellWidth, cfg.Host.CellHeight),
		terminal.WithLogger(logger),
	)
}

// Run binds the toggle socket and serves until ctx is canceled or the
// host is closed by the user. A bind failure is returned before the host
// starts, so a terminal host never takes over the screen for a daemon
// that cannot receive toggles.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.player.Close()

	listener, err := toggle.Listen(d.cfg.SocketPath,
		toggle.WithLogger(d.logger),
		toggle.WithObserver(func(result string) { d.metrics.Toggles.Increment(result) }),
	)
	if err != nil {
		return err
	}

	d.logger.Info("starting waydo",
		"version", d.version,
		"socket", listener.Path(),
		"menus", d.tree.Len(),
		"metrics_port", d.cfg.Metrics.Port)

	toggles := make(chan struct{}, 1)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listener.Serve(gCtx, toggles)
	})

	g.Go(func() error {
		return d.loop(gCtx, toggles)
	})

	g.Go(func() error {
		return d.host.Run(gCtx)
	})

	if d.cfg.Metrics.Port > 0 {
		srv := d.StatusServer()
		g.Go(func() error {
			return srv.Serve(gCtx)
		})
	}

	err = g.Wait()
	if errors.Is(err, host.ErrQuit) {
		err = nil
	}
	d.logger.Info("waydo stopped", "error", err)
	return err
}

// loop is the only goroutine that touches the Machine.
func (d *Daemon) loop(ctx context.Context, toggles <-chan struct{}) error {
	d.running.Store(true)
	defer d.running.Store(false)

	events := d.host.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-toggles:
			d.apply(nav.Event{Kind: nav.EventToggle})
		case ev := <-events:
			d.apply(ev)
		}
	}
}

func (d *Daemon) apply(ev nav.Event) {
	tr := d.machine.Handle(ev)
	if tr == nav.TransitionNone {
		return
	}

	if tr != nav.TransitionMoved {
		d.metrics.Transitions.Increment(string(tr))
	}
	if tr.Activation() {
		d.player.Click()
	}

	v := d.publish()
	d.host.Present(v)
}

func (d *Daemon) publish() nav.View {
	v := d.machine.View()
	d.view.Store(&v)
	return v
}

func (d *Daemon) observeDispatch(executor string, err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	d.metrics.Dispatches.Increment(executor, result)
}

// View returns the most recently published render snapshot.
func (d *Daemon) View() nav.View {
	return *d.view.Load()
}

// Healthy reports whether the event loop is running.
func (d *Daemon) Healthy(_ context.Context) error {
	if !d.running.Load() {
		return ErrNotRunning
	}
	return nil
}

// Registry returns the registry holding the daemon counters.
func (d *Daemon) Registry() *prometheus.Registry { return d.registry }

// StateHandler serves the current View as JSON.
func (d *Daemon) StateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d.View()); err != nil {
			d.logger.Error("failed to write state response", "error", err)
		}
	})
}

// StatusServer returns the HTTP status server for this daemon.
func (d *Daemon) StatusServer() *server.Server {
	return server.New(
		server.WithHost(d.cfg.Metrics.Host),
		server.WithPort(d.cfg.Metrics.Port),
		server.WithLogger(d.logger),
		server.WithHealthCheck(d),
		server.WithPrometheusMetrics(d.registry),
		server.WithHandler("/menu", d.tree.Handler()),
		server.WithHandler("/state", d.StateHandler()),
	)
}
