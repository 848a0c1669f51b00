// Package marker renders chart markers and finds the marker under a pointer.
//
// A frame is a slice of Items in chronological order plus a visible index
// range. The host pushes a new frame with SetData, resolves the pointer with
// HitTest (threading the previous result back in for hysteresis) and paints
// with Draw, passing the hovered id so that marker is painted last.
package marker

import "image/color"

// Text is a marker label. X, Width and Height are recomputed by the
// renderer before every draw; Y is supplied by the caller.
type Text struct {
	Content string
	X       float64
	Y       float64
	Width   float64
	Height  float64
}

// Item is one marker, already projected to pixel coordinates.
type Item struct {
	X, Y float64

	// Size scales arrow, circle and square shapes. For PnL it is the
	// progress fraction shown inside the badge. Zero hides the marker.
	Size float64

	Shape      Shape // one of ArrowUp, ArrowDown, Circle, Square, PnL
	Color      color.Color
	InternalID int    // unique within a frame, stable across frames
	ExternalID string // caller identity reported by HitTest, may be empty
	Text       *Text
	EndCoord   *float64 // secondary x for range markers; unused by current shapes
}

// DefaultColor is used for items without a Color.
var DefaultColor color.Color = color.White

func (it *Item) color() color.Color {
	if it.Color == nil {
		return DefaultColor
	}
	return it.Color
}

// VisibleRange is a half-open index interval [From, To) into the items.
type VisibleRange struct {
	From, To int
}

// HoverResult identifies the marker found under the pointer.
type HoverResult struct {
	InternalID int
	ExternalID string
}

// ID returns the hover id for r; a nil result yields no hover.
func (r *HoverResult) ID() HoverID {
	if r == nil {
		return HoverID{}
	}
	return Hovered(r.InternalID)
}

// HoverID is an optional internal id. The zero value means nothing is hovered.
type HoverID struct {
	id    int
	valid bool
}

// Hovered returns a HoverID naming id.
func Hovered(id int) HoverID {
	return HoverID{id: id, valid: true}
}

// Get returns the id and whether one is set.
func (h HoverID) Get() (int, bool) {
	return h.id, h.valid
}

// Is reports whether h names id.
func (h HoverID) Is(id int) bool {
	return h.valid && h.id == id
}

// OtherThan reports whether some marker other than id is hovered.
func (h HoverID) OtherThan(id int) bool {
	return h.valid && h.id != id
}
