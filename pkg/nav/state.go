package nav

import (
	"fmt"

	"github.com/mchmarny/waydo/pkg/geometry"
)

// Phase is the coarse navigation state derived from State.
type Phase int

const (
	// Hidden means the overlay is not shown.
	Hidden Phase = iota

	// AwaitingAnchor means the overlay is shown but no pointer event has
	// fixed the root center yet.
	AwaitingAnchor

	// AtRoot means the root ring is active.
	AtRoot

	// InSubmenu means a ring below the root is active.
	InSubmenu
)

// String returns the snake_case name of the phase.
func (p Phase) String() string {
	switch p {
	case Hidden:
		return "hidden"
	case AwaitingAnchor:
		return "awaiting_anchor"
	case AtRoot:
		return "at_root"
	case InSubmenu:
		return "in_submenu"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name produced by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{Hidden, AwaitingAnchor, AtRoot, InSubmenu} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is the mutable navigation state of one overlay session.
// CenterStack always has one entry per Path element: the center that
// was active before descending to that level.
type State struct {
	Visible     bool
	Anchored    bool
	Anchor      geometry.Point
	Center      geometry.Point
	Pointer     geometry.Point
	Path        []int
	CenterStack []geometry.Point
}

// Phase derives the coarse phase from the state flags.
func (s State) Phase() Phase {
	switch {
	case !s.Visible:
		return Hidden
	case !s.Anchored:
		return AwaitingAnchor
	case len(s.Path) == 0:
		return AtRoot
	default:
		return InSubmenu
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Path = append([]int(nil), s.Path...)
	c.CenterStack = append([]geometry.Point(nil), s.CenterStack...)
	return c
}
