package nav

import "github.com/mchmarny/waydo/pkg/geometry"

// EventKind identifies what an Event carries.
type EventKind int

const (
	// EventPointerMove is a pointer motion at Pos.
	EventPointerMove EventKind = iota

	// EventClick is a completed click (button release) at Pos.
	EventClick

	// EventToggle flips visibility.
	EventToggle

	// EventShow starts a new session.
	EventShow

	// EventHide ends the current session.
	EventHide
)

// String returns the lower-case name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventPointerMove:
		return "pointer_move"
	case EventClick:
		return "click"
	case EventToggle:
		return "toggle"
	case EventShow:
		return "show"
	case EventHide:
		return "hide"
	default:
		return "unknown"
	}
}

// Event is an input to the Machine. Hosts produce pointer and click
// events; the toggle listener produces toggles.
type Event struct {
	Kind EventKind
	Pos  geometry.Point
}

// PointerMove returns a pointer motion event.
func PointerMove(x, y float64) Event {
	return Event{Kind: EventPointerMove, Pos: geometry.Pt(x, y)}
}

// Click returns a click event.
func Click(x, y float64) Event {
	return Event{Kind: EventClick, Pos: geometry.Pt(x, y)}
}

// Transition reports what a Machine call did.
type Transition string

const (
	TransitionNone           Transition = "none"
	TransitionShown          Transition = "shown"
	TransitionHidden         Transition = "hidden"
	TransitionAnchored       Transition = "anchored"
	TransitionMoved          Transition = "moved"
	TransitionDescended      Transition = "descended"
	TransitionAscended       Transition = "ascended"
	TransitionActivated      Transition = "activated"
	TransitionQuickActivated Transition = "quick_activated"
)

// Activation reports whether the transition fired an action.
func (t Transition) Activation() bool {
	return t == TransitionActivated || t == TransitionQuickActivated
}
