package nav

import (
	"log/slog"

	"github.com/mchmarny/waydo/pkg/geometry"
	"github.com/mchmarny/waydo/pkg/menu"
)

// Dispatcher fires a selected action. Implementations must not block
// for long and must not call back into the Machine.
type Dispatcher interface {
	Dispatch(a menu.Action)
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(a menu.Action)

// Dispatch calls f(a).
func (f DispatchFunc) Dispatch(a menu.Action) { f(a) }

// Machine owns the navigation state and applies events to it. It is not
// safe for concurrent use: one goroutine feeds it every event.
type Machine struct {
	tree       *menu.Tree
	geom       geometry.Geometry
	dispatcher Dispatcher
	logger     *slog.Logger
	state      State
}

// Option configures a Machine.
type Option func(*Machine)

// WithGeometry sets the ring layout parameters.
// If not specified, geometry.DefaultGeometry() is used.
func WithGeometry(g geometry.Geometry) Option {
	return func(m *Machine) { m.geom = g }
}

// WithLogger sets the logger used for transition debug output.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New returns a hidden Machine navigating tree and firing actions
// through d.
func New(tree *menu.Tree, d Dispatcher, opts ...Option) *Machine {
	m := &Machine{
		tree:       tree,
		geom:       geometry.DefaultGeometry(),
		dispatcher: d,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.Clone()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.state.Phase()
}

// Handle applies ev and reports the resulting transition.
func (m *Machine) Handle(ev Event) Transition {
	var tr Transition

	switch ev.Kind {
	case EventPointerMove:
		tr = m.PointerMove(ev.Pos)
	case EventClick:
		tr = m.Click(ev.Pos)
	case EventToggle:
		tr = m.Toggle()
	case EventShow:
		tr = m.Show()
	case EventHide:
		tr = m.Hide()
	default:
		tr = TransitionNone
	}

	if tr != TransitionNone && tr != TransitionMoved {
		m.logger.Debug("navigation transition",
			"event", ev.Kind.String(),
			"transition", string(tr),
			"phase", m.state.Phase().String(),
			"depth", len(m.state.Path))
	}

	return tr
}

// Show starts a new session. The next pointer event anchors the root.
func (m *Machine) Show() Transition {
	m.state = State{Visible: true}
	return TransitionShown
}

// Hide ends the session and resets the state. Hiding twice is the same
// as hiding once.
func (m *Machine) Hide() Transition {
	wasVisible := m.state.Visible
	m.state = State{}
	if !wasVisible {
		return TransitionNone
	}
	return TransitionHidden
}

// Toggle hides a visible menu and shows a hidden one.
func (m *Machine) Toggle() Transition {
	if m.state.Visible {
		return m.Hide()
	}
	return m.Show()
}

// PointerMove anchors a fresh session or records the hover position.
func (m *Machine) PointerMove(p geometry.Point) Transition {
	if !m.state.Visible {
		return TransitionNone
	}
	if !m.state.Anchored {
		m.anchor(p)
		return TransitionAnchored
	}
	m.state.Pointer = p
	return TransitionMoved
}

// Click handles a completed click at p.
func (m *Machine) Click(p geometry.Point) Transition {
	if !m.state.Visible {
		return TransitionNone
	}
	if !m.state.Anchored {
		m.anchor(p)
		return TransitionAnchored
	}

	m.state.Pointer = p
	center := m.state.Center

	if m.geom.InCenter(center, p) {
		if len(m.state.Path) == 0 {
			return m.Hide()
		}
		m.ascend()
		return TransitionAscended
	}

	items := m.tree.CurrentItems(m.state.Path)
	ring := m.geom.RingAt(len(m.state.Path))
	points := ring.Layout(len(items), center)

	idx, ok := geometry.HitTest(p, center, points, ring.Deadzone)
	if !ok {
		return TransitionNone
	}

	it := items[idx]
	switch it.Kind {
	case menu.KindAction:
		m.activate(it.Action)
		return TransitionActivated

	case menu.KindSubmenu:
		if it.Default != nil && ring.InnerBand(center, p) {
			quick := *it.Default
			quick.Close = true
			m.activate(quick)
			return TransitionQuickActivated
		}
		if it.Default != nil {
			m.activate(*it.Default)
			if !m.state.Visible {
				return TransitionActivated
			}
		}
		m.descend(idx, points[idx])
		return TransitionDescended
	}

	return TransitionNone
}

func (m *Machine) anchor(p geometry.Point) {
	m.state.Anchored = true
	m.state.Anchor = p
	m.state.Center = p
	m.state.Pointer = p
}

func (m *Machine) descend(idx int, next geometry.Point) {
	m.state.CenterStack = append(m.state.CenterStack, m.state.Center)
	m.state.Path = append(m.state.Path, idx)
	m.state.Center = next
}

func (m *Machine) ascend() {
	m.state.Path = m.state.Path[:len(m.state.Path)-1]

	n := len(m.state.CenterStack)
	if n == 0 {
		m.state.Center = m.state.Anchor
		return
	}
	m.state.Center = m.state.CenterStack[n-1]
	m.state.CenterStack = m.state.CenterStack[:n-1]
}

// activate hides first when the action closes the menu, then fires it.
func (m *Machine) activate(a menu.Action) {
	if a.Close {
		m.Hide()
	}
	if m.dispatcher != nil {
		m.dispatcher.Dispatch(a)
	}
}
