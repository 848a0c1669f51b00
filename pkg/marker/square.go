package marker

import "github.com/ha1tch/chartmarkers/pkg/canvas"

const squareCoeff = 0.7

type squareShape struct{}

func (squareShape) String() string { return "square" }

func squareRect(cx, cy, size float64) Rect {
	side := shapeSize(size, squareCoeff)
	half := (side - 1) / 2
	return rectFromCorner(cx-half, cy-half, side, side)
}

func (squareShape) draw(s canvas.Surface, it *Item, _ HoverID) {
	r := squareRect(it.X, it.Y, it.Size)
	s.FillRect(r.Left(), r.Top(), r.W, r.H)
}

func (squareShape) hitTest(it *Item, x, y float64) bool {
	return squareRect(it.X, it.Y, it.Size).Contains(x, y)
}

func (squareShape) ownsLabel() bool { return false }
