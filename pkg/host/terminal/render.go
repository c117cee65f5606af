package terminal

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/mchmarny/waydo/pkg/geometry"
	"github.com/mchmarny/waydo/pkg/nav"
)

const (
	anchorHint       = "click to place the menu"
	breadcrumbOffset = 42.0 // pixels above the ring center
)

const (
	glyphCloseCtl = '×'
	glyphBackCtl  = '‹'
	glyphRootDot  = '•'
	glyphSubmenu  = '›'
)

var (
	styleItem     = tcell.StyleDefault.Background(tcell.NewRGBColor(38, 38, 38)).Foreground(tcell.ColorWhite)
	styleHovered  = tcell.StyleDefault.Background(tcell.NewRGBColor(96, 96, 96)).Foreground(tcell.ColorWhite).Bold(true)
	styleCloseCtl = tcell.StyleDefault.Background(tcell.NewRGBColor(191, 51, 51)).Foreground(tcell.ColorWhite).Bold(true)
	styleBackCtl  = tcell.StyleDefault.Background(tcell.NewRGBColor(56, 122, 209)).Foreground(tcell.ColorWhite).Bold(true)
	styleRootDot  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleText     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHint     = tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
)

// grid converts between pixel and cell coordinates.
type grid struct {
	cellW, cellH int
}

// pixel returns the pixel at the center of cell (x, y).
func (g grid) pixel(x, y int) geometry.Point {
	return geometry.Pt(
		float64(x*g.cellW)+float64(g.cellW)/2,
		float64(y*g.cellH)+float64(g.cellH)/2,
	)
}

// cell returns the cell containing pixel p.
func (g grid) cell(p geometry.Point) (int, int) {
	return int(math.Floor(p.X / float64(g.cellW))), int(math.Floor(p.Y / float64(g.cellH)))
}

// render draws v onto s. It does not call Show.
func render(s tcell.Screen, g grid, v nav.View) {
	s.Clear()

	switch {
	case !v.Visible():
		return
	case !v.Anchored():
		w, h := s.Size()
		drawText(s, (w-len([]rune(anchorHint)))/2, h/2, anchorHint, styleHint)
		return
	}

	// Discs first, then labels, so a neighbouring disc never covers a label.
	styles := make([]tcell.Style, len(v.Items))
	for i, it := range v.Items {
		styles[i] = itemStyle(it)
		fillCircle(s, g, it.Pos, it.Radius, styles[i])
	}
	for i, it := range v.Items {
		label := it.Label
		if it.Submenu {
			label = trimSubmenuMarker(label) + string(glyphSubmenu)
		}
		cx, cy := g.cell(it.Pos)
		drawText(s, cx-len([]rune(label))/2, cy, label, styles[i])
	}

	center, glyph := styleCloseCtl, glyphCloseCtl
	if v.Depth > 0 {
		center, glyph = styleBackCtl, glyphBackCtl
	}
	fillCircle(s, g, v.Center, v.CenterRadius, center)
	cx, cy := g.cell(v.Center)
	s.SetContent(cx, cy, glyph, nil, center)

	if v.Depth > 0 {
		x, y := g.cell(v.Anchor)
		s.SetContent(x, y, glyphRootDot, nil, styleRootDot)
	}

	if v.Breadcrumb != "" {
		bx, by := g.cell(v.Center.Add(0, -breadcrumbOffset))
		drawText(s, bx-len([]rune(v.Breadcrumb))/2, by, v.Breadcrumb, styleText)
	}
}

func itemStyle(it nav.ViewItem) tcell.Style {
	if it.Hovered {
		return styleHovered
	}
	if it.Color != "" {
		if c := tcell.GetColor(it.Color); c != tcell.ColorDefault {
			return styleItem.Background(c)
		}
	}
	return styleItem
}

// fillCircle paints every cell whose center lies within r pixels of c.
// A circle smaller than one cell still paints the cell holding c.
func fillCircle(s tcell.Screen, g grid, c geometry.Point, r float64, style tcell.Style) {
	x0, y0 := g.cell(c.Add(-r, -r))
	x1, y1 := g.cell(c.Add(r, r))
	w, h := s.Size()

	for y := max(y0, 0); y <= min(y1, h-1); y++ {
		for x := max(x0, 0); x <= min(x1, w-1); x++ {
			if geometry.Dist2(g.pixel(x, y), c) <= r*r {
				s.SetContent(x, y, ' ', nil, style)
			}
		}
	}

	cx, cy := g.cell(c)
	if cx >= 0 && cy >= 0 && cx < w && cy < h {
		s.SetContent(cx, cy, ' ', nil, style)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	w, h := s.Size()
	if y < 0 || y >= h {
		return
	}
	for _, r := range text {
		if x >= 0 && x < w {
			s.SetContent(x, y, r, nil, style)
		}
		x++
	}
}

// trimSubmenuMarker drops the trailing " >" labels use to mark submenus;
// the terminal draws its own marker.
func trimSubmenuMarker(label string) string {
	for len(label) > 0 && (label[len(label)-1] == '>' || label[len(label)-1] == ' ') {
		label = label[:len(label)-1]
	}
	return label
}
