package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mchmarny/waydo/pkg/clock"
	"github.com/mchmarny/waydo/pkg/menu"
)

const (
	// DefaultKeyPrefix marks commands that are synthetic key sequences.
	DefaultKeyPrefix = "key-"

	// DefaultDeferDelay gives the overlay time to disappear before a
	// deferred command (a screenshot) runs.
	DefaultDeferDelay = 80 * time.Millisecond

	// DefaultChordDelay separates consecutive chords of a key sequence.
	DefaultChordDelay = 30 * time.Millisecond

	// DefaultTimeout bounds a single executor invocation.
	DefaultTimeout = 5 * time.Second

	// ExecutorCompositor and ExecutorKeyboard label executor results.
	ExecutorCompositor = "compositor"
	ExecutorKeyboard   = "keyboard"
)

// DefaultDeferredPrefixes returns the command prefixes run after the
// defer delay.
func DefaultDeferredPrefixes() []string {
	return []string{"screenshot"}
}

// Observer is told about every executor invocation and its result.
type Observer func(executor string, err error)

// Dispatcher turns action commands into executor calls. Executor errors
// are logged and reported to the observer, never returned.
type Dispatcher struct {
	compositor Compositor
	keyboard   Keyboard
	clock      clock.Clock
	logger     *slog.Logger
	observer   Observer
	keyPrefix  string
	deferred   []string
	deferDelay time.Duration
	chordDelay time.Duration
	timeout    time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the clock used for deferred commands and chord spacing.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithObserver registers a callback for executor results.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// WithKeyPrefix sets the prefix that marks key sequences.
// If not specified, DefaultKeyPrefix ("key-") is used.
func WithKeyPrefix(prefix string) Option {
	return func(d *Dispatcher) { d.keyPrefix = prefix }
}

// WithDeferred sets which command prefixes are delayed and by how much.
func WithDeferred(prefixes []string, delay time.Duration) Option {
	return func(d *Dispatcher) {
		d.deferred = prefixes
		d.deferDelay = delay
	}
}

// WithChordDelay sets the gap between chords of a key sequence.
func WithChordDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.chordDelay = delay }
}

// WithTimeout bounds each executor call.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// New returns a Dispatcher sending compositor actions to c and key
// sequences to k.
func New(c Compositor, k Keyboard, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		compositor: c,
		keyboard:   k,
		clock:      clock.Real(),
		logger:     slog.Default(),
		keyPrefix:  DefaultKeyPrefix,
		deferred:   DefaultDeferredPrefixes(),
		deferDelay: DefaultDeferDelay,
		chordDelay: DefaultChordDelay,
		timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch fires a.Command. Deferred commands are scheduled and return
// immediately; everything else runs before Dispatch returns, except the
// second and later chords of a key sequence.
func (d *Dispatcher) Dispatch(a menu.Action) {
	command := strings.TrimSpace(a.Command)
	if command == "" {
		d.logger.Warn("ignoring empty command")
		return
	}

	if d.isDeferred(command) {
		d.logger.Debug("deferring command", "command", command, "delay", d.deferDelay)
		d.clock.AfterFunc(d.deferDelay, func() { d.run(command) })
		return
	}

	d.run(command)
}

func (d *Dispatcher) isDeferred(command string) bool {
	for _, prefix := range d.deferred {
		if prefix != "" && strings.HasPrefix(command, prefix) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) run(command string) {
	if d.keyPrefix != "" && strings.HasPrefix(command, d.keyPrefix) {
		d.sendKeys(strings.TrimPrefix(command, d.keyPrefix))
		return
	}

	tokens := strings.Fields(command)
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.compositor.Execute(ctx, tokens)
	d.report(ExecutorCompositor, command, err)
}

// sendKeys presses each space separated chord in turn. A chord with an
// unknown key is skipped on its own; the rest of the sequence still fires.
func (d *Dispatcher) sendKeys(sequence string) {
	chords := strings.Fields(sequence)
	if len(chords) == 0 {
		d.logger.Warn("ignoring empty key sequence")
		return
	}

	for i, text := range chords {
		chord, err := ParseChord(text)
		if err != nil {
			d.logger.Debug("skipping chord", "chord", text, "error", err)
			continue
		}

		if i == 0 {
			d.press(text, chord)
			continue
		}
		d.clock.AfterFunc(time.Duration(i)*d.chordDelay, func() { d.press(text, chord) })
	}
}

func (d *Dispatcher) press(text string, chord Chord) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.keyboard.PressChord(ctx, chord.Modifiers, chord.Key)
	d.report(ExecutorKeyboard, text, err)
}

func (d *Dispatcher) report(executor, command string, err error) {
	if err != nil {
		d.logger.Warn("command failed",
			"executor", executor,
			"command", command,
			"error", err)
	} else {
		d.logger.Debug("command executed",
			"executor", executor,
			"command", command)
	}

	if d.observer != nil {
		d.observer(executor, err)
	}
}
