package geometry

const (
	// DefaultCenterRadius is the radius of the center (close/back) control.
	DefaultCenterRadius = 24.0

	// DefaultRootDistance is the distance from the anchor to root ring items.
	DefaultRootDistance = 120.0

	// DefaultRootItemRadius is the drawn radius of a root ring item.
	DefaultRootItemRadius = 43.0

	// DefaultRootDeadzone suppresses selection near the root center.
	DefaultRootDeadzone = 25.0

	// DefaultSubmenuDistance is the distance from a submenu center to its items.
	DefaultSubmenuDistance = 108.0

	// DefaultSubmenuItemRadius is the drawn radius of a submenu ring item.
	DefaultSubmenuItemRadius = 44.0

	// DefaultSubmenuDeadzone suppresses selection near a submenu center.
	DefaultSubmenuDeadzone = 30.0
)

// Ring holds the layout parameters of one ring of items.
type Ring struct {
	// Distance from the ring center to each item center.
	Distance float64 `json:"distance" yaml:"distance"`

	// ItemRadius is the drawn radius of each item.
	ItemRadius float64 `json:"item_radius" yaml:"item_radius"`

	// Deadzone is the radius around the ring center that selects nothing.
	Deadzone float64 `json:"deadzone" yaml:"deadzone"`
}

// Layout places n items around center using the ring distance.
func (r Ring) Layout(n int, center Point) []Point {
	return RingLayout(n, center, r.Distance)
}

// InnerBand reports whether p lies inside the band between the ring
// center and the inner edge of its items.
func (r Ring) InnerBand(center, p Point) bool {
	inner := r.Distance - r.ItemRadius
	if inner <= 0 {
		return false
	}
	return Dist2(p, center) <= inner*inner
}

// Geometry is the full set of layout parameters for a menu session.
type Geometry struct {
	// CenterRadius is the radius of the center control.
	CenterRadius float64 `json:"center_radius" yaml:"center_radius"`

	// Root is used for the root ring.
	Root Ring `json:"root" yaml:"root"`

	// Submenu is used for every ring below the root.
	Submenu Ring `json:"submenu" yaml:"submenu"`
}

// DefaultGeometry returns the stock layout parameters.
func DefaultGeometry() Geometry {
	return Geometry{
		CenterRadius: DefaultCenterRadius,
		Root: Ring{
			Distance:   DefaultRootDistance,
			ItemRadius: DefaultRootItemRadius,
			Deadzone:   DefaultRootDeadzone,
		},
		Submenu: Ring{
			Distance:   DefaultSubmenuDistance,
			ItemRadius: DefaultSubmenuItemRadius,
			Deadzone:   DefaultSubmenuDeadzone,
		},
	}
}

// RingAt returns the ring used at the given depth (0 = root).
func (g Geometry) RingAt(depth int) Ring {
	if depth <= 0 {
		return g.Root
	}
	return g.Submenu
}

// InCenter reports whether p hits the center control of a ring at center.
func (g Geometry) InCenter(center, p Point) bool {
	return Dist2(p, center) <= g.CenterRadius*g.CenterRadius
}
