// Package terminal is a full-screen overlay host drawn with tcell. Mouse
// cells are mapped to pixel coordinates so the ring geometry works the
// same as on a graphical surface.
package terminal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/mchmarny/waydo/pkg/host"
	"github.com/mchmarny/waydo/pkg/nav"
)

const (
	// DefaultCellWidth and DefaultCellHeight are the assumed pixel size
	// of one terminal cell.
	DefaultCellWidth  = 8
	DefaultCellHeight = 16

	eventBuffer = 64
)

var _ host.Host = (*Host)(nil)

// Host draws the menu in a terminal and reports mouse input.
type Host struct {
	screen tcell.Screen
	grid   grid
	logger *slog.Logger

	events chan nav.Event
	views  chan nav.View

	// Owned by Run.
	pressed bool
	last    nav.View
}

// Option configures a Host.
type Option func(*Host)

// WithScreen uses s instead of the process terminal.
func WithScreen(s tcell.Screen) Option {
	return func(h *Host) { h.screen = s }
}

// WithCellSize sets the pixel size of one cell.
func WithCellSize(w, h int) Option {
	return func(t *Host) {
		if w > 0 && h > 0 {
			t.grid = grid{cellW: w, cellH: h}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// New returns a terminal Host. The screen is opened by Run.
func New(opts ...Option) *Host {
	h := &Host{
		grid:   grid{cellW: DefaultCellWidth, cellH: DefaultCellHeight},
		logger: slog.Default(),
		events: make(chan nav.Event, eventBuffer),
		views:  make(chan nav.View, 1),
		last:   nav.View{Phase: nav.Hidden, Hovered: -1},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Events returns pointer events in pixel coordinates.
func (h *Host) Events() <-chan nav.Event { return h.events }

// Present schedules v for drawing. Only the latest undrawn view is kept.
func (h *Host) Present(v nav.View) {
	for {
		select {
		case h.views <- v:
			return
		default:
		}
		select {
		case <-h.views:
		default:
		}
	}
}

// Run opens the screen and serves it until ctx is canceled or the user
// presses Ctrl-C. The terminal is restored before Run returns.
func (h *Host) Run(ctx context.Context) error {
	screen := h.screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		screen = s
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	h.draw(screen)

	done := make(chan struct{})
	defer close(done)

	input := make(chan tcell.Event, eventBuffer)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case input <- ev:
			case <-done:
				return
			}
		}
	}()

	h.logger.Info("terminal host started", "cell_width", h.grid.cellW, "cell_height", h.grid.cellH)

	for {
		select {
		case <-ctx.Done():
			return nil

		case v := <-h.views:
			h.last = v
			h.draw(screen)

		case ev := <-input:
			if err := h.handle(ctx, screen, ev); err != nil {
				return err
			}
		}
	}
}

func (h *Host) handle(ctx context.Context, screen tcell.Screen, ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()
		h.draw(screen)

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC:
			h.logger.Info("terminal host closed by user")
			return host.ErrQuit
		case tcell.KeyEscape:
			h.emit(ctx, nav.Event{Kind: nav.EventHide})
		}

	case *tcell.EventMouse:
		if out, ok := h.translate(ev); ok {
			h.emit(ctx, out)
		}
	}
	return nil
}

// translate turns a tcell mouse event into a pointer event. A click is
// reported when the primary button is released.
func (h *Host) translate(ev *tcell.EventMouse) (nav.Event, bool) {
	x, y := ev.Position()
	pos := h.grid.pixel(x, y)

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.Button1 != 0:
		h.pressed = true
		return nav.Event{Kind: nav.EventPointerMove, Pos: pos}, true
	case buttons == tcell.ButtonNone && h.pressed:
		h.pressed = false
		return nav.Event{Kind: nav.EventClick, Pos: pos}, true
	case buttons == tcell.ButtonNone:
		return nav.Event{Kind: nav.EventPointerMove, Pos: pos}, true
	default:
		// Wheel and secondary buttons are not menu input.
		return nav.Event{}, false
	}
}

// emit forwards ev to the daemon. Motion is dropped when the daemon is
// behind; clicks and hides wait.
func (h *Host) emit(ctx context.Context, ev nav.Event) {
	if ev.Kind == nav.EventPointerMove {
		select {
		case h.events <- ev:
		default:
		}
		return
	}

	select {
	case h.events <- ev:
	case <-ctx.Done():
	}
}

func (h *Host) draw(screen tcell.Screen) {
	render(screen, h.grid, h.last)
	screen.Show()
}
