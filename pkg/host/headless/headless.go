// Package headless provides a host with no display. Pointer events are
// injected programmatically and presented views are only recorded.
package headless

import (
	"context"
	"sync"

	"github.com/mchmarny/waydo/pkg/host"
	"github.com/mchmarny/waydo/pkg/nav"
)

const defaultBuffer = 64

var _ host.Host = (*Host)(nil)

// Host is a display-less host.
type Host struct {
	events    chan nav.Event
	onPresent func(nav.View)

	mu        sync.Mutex
	last      nav.View
	presented int
}

// Option configures a Host.
type Option func(*Host)

// WithPresentHook calls f with every presented view.
func WithPresentHook(f func(nav.View)) Option {
	return func(h *Host) { h.onPresent = f }
}

// New returns a headless Host.
func New(opts ...Option) *Host {
	h := &Host{
		events: make(chan nav.Event, defaultBuffer),
		last:   nav.View{Phase: nav.Hidden, Hovered: -1},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Events returns the injected event stream.
func (h *Host) Events() <-chan nav.Event { return h.events }

// Send injects ev as if it came from the pointer.
func (h *Host) Send(ctx context.Context, ev nav.Event) error {
	select {
	case h.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Present records v.
func (h *Host) Present(v nav.View) {
	h.mu.Lock()
	h.last = v
	h.presented++
	hook := h.onPresent
	h.mu.Unlock()

	if hook != nil {
		hook(v)
	}
}

// Last returns the most recently presented view.
func (h *Host) Last() nav.View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Presented returns how many views have been presented.
func (h *Host) Presented() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presented
}

// Run blocks until ctx is canceled.
func (h *Host) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
