package marker

import "github.com/ha1tch/chartmarkers/pkg/canvas"

const arrowCoeff = 1.0

type arrowShape struct {
	up bool
}

func (a arrowShape) String() string {
	if a.up {
		return "arrowUp"
	}
	return "arrowDown"
}

// arrowPolygon returns the arrow outline: a head spanning the full arrow
// width on the anchor line and a stem of half that width.
func arrowPolygon(up bool, cx, cy, size float64) []canvas.Point {
	arrowSize := shapeSize(size, arrowCoeff)
	half := (arrowSize - 1) / 2
	halfBase := (ceiledOdd(arrowSize/2) - 1) / 2

	dir := 1.0 // head above the anchor
	if !up {
		dir = -1
	}
	return []canvas.Point{
		{X: cx - half, Y: cy},
		{X: cx, Y: cy - dir*half},
		{X: cx + half, Y: cy},
		{X: cx + halfBase, Y: cy},
		{X: cx + halfBase, Y: cy + dir*half},
		{X: cx - halfBase, Y: cy + dir*half},
		{X: cx - halfBase, Y: cy},
	}
}

func (a arrowShape) draw(s canvas.Surface, it *Item, _ HoverID) {
	pts := arrowPolygon(a.up, it.X, it.Y, it.Size)
	s.BeginPath()
	s.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.LineTo(p.X, p.Y)
	}
	s.ClosePath()
	s.Fill()
}

// hitTest uses the bounding box of the drawn polygon.
func (a arrowShape) hitTest(it *Item, x, y float64) bool {
	return boundsOf(arrowPolygon(a.up, it.X, it.Y, it.Size)).Contains(x, y)
}

func (arrowShape) ownsLabel() bool { return false }
