package marker

import "github.com/ha1tch/chartmarkers/pkg/canvas"

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Center
	W, H float64 // Full width and height
}

// rectFromCorner builds a Rect from its top-left corner and size.
func rectFromCorner(left, top, w, h float64) Rect {
	return Rect{X: left + w/2, Y: top + h/2, W: w, H: h}
}

// boundsOf returns the bounding rectangle of points.
func boundsOf(points []canvas.Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return rectFromCorner(minX, minY, maxX-minX, maxY-minY)
}

func (r Rect) Left() float64   { return r.X - r.W/2 }
func (r Rect) Top() float64    { return r.Y - r.H/2 }
func (r Rect) Right() float64  { return r.X + r.W/2 }
func (r Rect) Bottom() float64 { return r.Y + r.H/2 }

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left() && x <= r.Right() && y >= r.Top() && y <= r.Bottom()
}
