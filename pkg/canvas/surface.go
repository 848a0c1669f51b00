// Package canvas defines the drawing surface used by the marker renderer and
// ships raster, SVG and recording implementations of it.
//
// The surface mirrors the primitive set of an HTML canvas 2D context: path
// construction, fill, stroke, clip, rectangles, text and a save/restore state
// stack. Coordinates are float pixels with Y increasing downward.
package canvas

import "image/color"

// TextBaseline selects the vertical anchor used by FillText.
type TextBaseline int

const (
	BaselineAlphabetic TextBaseline = iota // Default: y is the glyph baseline
	BaselineTop                            // y is the top of the em box
	BaselineMiddle                         // y is the middle of the em box
	BaselineBottom                         // y is the bottom of the em box
)

// TextAlign selects the horizontal anchor used by FillText.
type TextAlign int

const (
	AlignLeft   TextAlign = iota // Default: x is the left edge
	AlignCenter                  // x is the horizontal centre
	AlignRight                   // x is the right edge
)

// TextMeasurer returns the advance width of text in the current font.
type TextMeasurer interface {
	MeasureText(text string) float64
}

// Surface is a 2D drawing target.
type Surface interface {
	TextMeasurer

	// Save pushes the drawing state (styles, font, clip) onto a stack.
	Save()
	// Restore pops the state pushed by the matching Save. Unbalanced calls are ignored.
	Restore()

	BeginPath()
	ClosePath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticCurveTo(cpx, cpy, x, y float64)
	// Arc adds a circular arc to the current path. Angles are in radians,
	// measured clockwise from the positive X axis.
	Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool)

	Fill()
	Stroke()
	// Clip intersects the current clip region with the current path.
	Clip()
	// FillRect fills a rectangle without touching the current path.
	FillRect(x, y, w, h float64)

	SetFillStyle(c color.Color)
	SetStrokeStyle(c color.Color)
	SetLineWidth(w float64)
	SetFont(f Font)
	SetTextBaseline(b TextBaseline)
	SetTextAlign(a TextAlign)
	FillText(text string, x, y float64)
}
