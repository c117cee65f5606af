package geometry

import "math"

// Point is a position in the overlay's pointer coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p offset by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Dist2 returns the squared euclidean distance between a and b.
func Dist2(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// RingLayout places n items evenly around center at distance dist.
// Item 0 sits straight up from center and the rest follow clockwise
// (screen coordinates, y grows downward). Returns nil for n <= 0.
func RingLayout(n int, center Point, dist float64) []Point {
	if n <= 0 {
		return nil
	}

	step := 2 * math.Pi / float64(n)
	points := make([]Point, n)
	for i := range points {
		a := -math.Pi/2 + float64(i)*step
		points[i] = Point{
			X: center.X + dist*math.Cos(a),
			Y: center.Y + dist*math.Sin(a),
		}
	}

	// cos(-π/2) is not exactly zero in floating point; pin the first item
	// to the vertical axis so "up" is exact.
	points[0].X = center.X

	return points
}

// HitTest returns the index of the point nearest to pointer. Pointers
// closer to center than deadzone select nothing. Ties go to the lower
// index.
func HitTest(pointer, center Point, points []Point, deadzone float64) (int, bool) {
	if Dist2(pointer, center) < deadzone*deadzone {
		return -1, false
	}

	best := -1
	bestDist := 0.0
	for i, p := range points {
		d := Dist2(pointer, p)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}

	return best, best >= 0
}
