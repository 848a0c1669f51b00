package marker

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
)

// Shape is the closed set of marker shapes. The interface has unexported
// methods, so the only implementations are the variables below and every
// variant must provide drawing, hit-testing and label placement to compile.
type Shape interface {
	// String returns the wire name, e.g. "arrowUp".
	String() string

	draw(s canvas.Surface, it *Item, hovered HoverID)
	hitTest(it *Item, x, y float64) bool
	// ownsLabel reports whether the shape draws the label itself.
	ownsLabel() bool
}

// Shape variants.
var (
	ArrowUp   Shape = arrowShape{up: true}
	ArrowDown Shape = arrowShape{up: false}
	Circle    Shape = circleShape{}
	Square    Shape = squareShape{}
	PnL       Shape = pnlShape{}
)

// Shapes lists every variant in declaration order.
var Shapes = []Shape{ArrowUp, ArrowDown, Circle, Square, PnL}

// ParseShape returns the shape with the given wire name.
func ParseShape(name string) (Shape, error) {
	for _, s := range Shapes {
		if s.String() == name {
			return s, nil
		}
	}
	return nil, errors.Errorf("unknown marker shape %q", name)
}

// Shape size limits, in pixels, applied before the per-shape coefficient.
const (
	minShapeSize = 12
	maxShapeSize = 30
)

// shapeSize clamps size to the drawable range, scales it and rounds up to
// an odd pixel count so shapes centre on a pixel.
func shapeSize(size, coeff float64) float64 {
	return ceiledOdd(math.Min(math.Max(size, minShapeSize), maxShapeSize) * coeff)
}

func ceiledOdd(x float64) float64 {
	c := math.Ceil(x)
	if math.Mod(c, 2) == 0 {
		return c - 1
	}
	return c
}
