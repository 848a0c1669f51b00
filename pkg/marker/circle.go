package marker

import (
	"math"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
)

const circleCoeff = 0.8

type circleShape struct{}

func (circleShape) String() string { return "circle" }

func circleRadius(size float64) float64 {
	return (shapeSize(size, circleCoeff) - 1) / 2
}

func (circleShape) draw(s canvas.Surface, it *Item, _ HoverID) {
	s.BeginPath()
	s.Arc(it.X, it.Y, circleRadius(it.Size), 0, 2*math.Pi, false)
	s.Fill()
}

func (circleShape) hitTest(it *Item, x, y float64) bool {
	return math.Hypot(it.X-x, it.Y-y) <= circleRadius(it.Size)
}

func (circleShape) ownsLabel() bool { return false }
