package nav

import (
	"github.com/mchmarny/waydo/pkg/geometry"
	"github.com/mchmarny/waydo/pkg/menu"
)

// View is a render snapshot of the machine. Hosts draw from it and the
// status server serves it as JSON.
type View struct {
	Phase        Phase          `json:"phase"`
	Anchor       geometry.Point `json:"anchor"`
	Center       geometry.Point `json:"center"`
	Depth        int            `json:"depth"`
	Breadcrumb   string         `json:"breadcrumb,omitempty"`
	CenterRadius float64        `json:"center_radius"`
	Hovered      int            `json:"hovered"`
	Items        []ViewItem     `json:"items,omitempty"`
}

// ViewItem is one ring item of a View.
type ViewItem struct {
	Label   string         `json:"label"`
	Color   string         `json:"color,omitempty"`
	Pos     geometry.Point `json:"pos"`
	Radius  float64        `json:"radius"`
	Submenu bool           `json:"submenu,omitempty"`
	Hovered bool           `json:"hovered,omitempty"`
}

// Visible reports whether the overlay should be on screen.
func (v View) Visible() bool {
	return v.Phase != Hidden
}

// Anchored reports whether the view has a ring to draw.
func (v View) Anchored() bool {
	return v.Phase == AtRoot || v.Phase == InSubmenu
}

// View returns the current render snapshot. Items are only populated
// once the session is anchored. Hovered is the index the pointer would
// select, or -1.
func (m *Machine) View() View {
	s := &m.state
	v := View{
		Phase:        s.Phase(),
		Anchor:       s.Anchor,
		Center:       s.Center,
		Depth:        len(s.Path),
		CenterRadius: m.geom.CenterRadius,
		Hovered:      -1,
	}
	if !v.Anchored() {
		return v
	}

	v.Breadcrumb = m.tree.Breadcrumb(s.Path)

	items := m.tree.CurrentItems(s.Path)
	ring := m.geom.RingAt(len(s.Path))
	points := ring.Layout(len(items), s.Center)

	if !m.geom.InCenter(s.Center, s.Pointer) {
		if idx, ok := geometry.HitTest(s.Pointer, s.Center, points, ring.Deadzone); ok {
			v.Hovered = idx
		}
	}

	v.Items = make([]ViewItem, len(items))
	for i, it := range items {
		v.Items[i] = ViewItem{
			Label:   it.Label,
			Color:   it.Color,
			Pos:     points[i],
			Radius:  ring.ItemRadius,
			Submenu: it.Kind == menu.KindSubmenu,
			Hovered: i == v.Hovered,
		}
	}

	return v
}
