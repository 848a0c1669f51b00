package marker

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
)

var log = logrus.WithField("component", "marker")

// Anchor dot drawn under every marker.
const (
	anchorOuterRadius = 4
	anchorInnerRadius = 3
)

var (
	anchorOuter = canvas.MustParseColor("#0E0E0F")
	anchorInner = canvas.MustParseColor("#ECE028")
)

// Renderer owns the current marker snapshot and font configuration.
// It is not safe for concurrent use; callers drive it from one goroutine
// per frame: SetData, SetParams, HitTest, then Draw.
type Renderer struct {
	items   []Item
	visible *VisibleRange
	index   map[int]int // internal id -> position in items

	fontSize   float64
	fontFamily string
	font       canvas.Font
	textWidths *TextWidthCache
}

// NewRenderer returns a renderer with no items. SetParams must be called
// before the first Draw for labels to be laid out with the intended font.
func NewRenderer() *Renderer {
	return &Renderer{
		fontSize:   -1,
		textWidths: NewTextWidthCache(DefaultTextWidthCacheSize),
	}
}

// SetData replaces the snapshot. A nil visible range means nothing is visible.
// The items slice is retained and its Text fields are updated by Draw.
func (r *Renderer) SetData(items []Item, visible *VisibleRange) {
	r.items = items
	r.visible = visible
	r.index = make(map[int]int, len(items))
	for i := range items {
		r.index[items[i].InternalID] = i
	}
}

// SetParams sets the label font. Changing either value drops every cached
// text width.
func (r *Renderer) SetParams(fontSize float64, fontFamily string) {
	if fontSize == r.fontSize && fontFamily == r.fontFamily {
		return
	}
	r.fontSize = fontSize
	r.fontFamily = fontFamily
	r.font = canvas.MakeFont(fontSize, fontFamily)
	r.textWidths.Reset()
	log.WithField("font", r.font.String()).Debug("font changed, text width cache reset")
}

// Items returns the current snapshot.
func (r *Renderer) Items() []Item { return r.items }

// Font returns the active label font.
func (r *Renderer) Font() canvas.Font { return r.font }

// window returns the visible index interval, or ok=false when the range is
// missing or does not fit the items.
func (r *Renderer) window() (from, to int, ok bool) {
	if r.visible == nil {
		return 0, 0, false
	}
	from, to = r.visible.From, r.visible.To
	if from < 0 || from > to || to > len(r.items) {
		return 0, 0, false
	}
	return from, to, true
}

// visibleIndex returns the position of id if that item is inside the window.
func (r *Renderer) visibleIndex(id int, from, to int) (int, bool) {
	i, ok := r.index[id]
	if !ok || i < from || i >= to {
		return 0, false
	}
	return i, true
}

// HitTest returns the marker under (x, y), or nil. The previous result, if
// it still matches, wins over any other overlapping marker; otherwise the
// last marker in the window wins.
func (r *Renderer) HitTest(x, y float64, previous *HoverResult) *HoverResult {
	from, to, ok := r.window()
	if !ok {
		return nil
	}

	skip := -1
	if previous != nil {
		if i, ok := r.visibleIndex(previous.InternalID, from, to); ok {
			if hits(&r.items[i], x, y) {
				return resultFor(&r.items[i])
			}
			skip = i
		}
	}

	for i := to - 1; i >= from; i-- {
		if i == skip {
			continue
		}
		if hits(&r.items[i], x, y) {
			return resultFor(&r.items[i])
		}
	}
	return nil
}

func hits(it *Item, x, y float64) bool {
	if it.Size == 0 {
		return false
	}
	return it.Shape.hitTest(it, x, y)
}

func resultFor(it *Item) *HoverResult {
	return &HoverResult{InternalID: it.InternalID, ExternalID: it.ExternalID}
}

// Draw paints the visible markers onto s. The marker named by hovered is
// painted after all others; an id that is not in the window is ignored.
func (r *Renderer) Draw(s canvas.Surface, hovered HoverID) {
	from, to, ok := r.window()
	if !ok {
		return
	}

	s.Save()
	defer s.Restore()

	s.SetFont(r.font)
	s.SetTextBaseline(canvas.BaselineMiddle)
	r.layoutText(s, from, to)

	for _, i := range r.paintOrder(from, to, hovered) {
		r.drawItem(s, &r.items[i], hovered)
	}
}

// paintOrder lists the window in index order with the hovered marker, if
// present, moved to the end.
func (r *Renderer) paintOrder(from, to int, hovered HoverID) []int {
	order := make([]int, 0, to-from)
	last := -1
	if id, ok := hovered.Get(); ok {
		if i, ok := r.visibleIndex(id, from, to); ok {
			last = i
		} else {
			log.WithField("id", id).Debug("hovered marker not visible, skipping hover pass")
		}
	}
	for i := from; i < to; i++ {
		if i != last {
			order = append(order, i)
		}
	}
	if last >= 0 {
		order = append(order, last)
	}
	return order
}

// layoutText recomputes label geometry for the window with the current font.
func (r *Renderer) layoutText(m canvas.TextMeasurer, from, to int) {
	for i := from; i < to; i++ {
		it := &r.items[i]
		if it.Text == nil {
			continue
		}
		w := r.textWidths.Measure(m, it.Text.Content)
		it.Text.Width = w
		it.Text.Height = r.font.Size
		it.Text.X = it.X - w/2
	}
}

func (r *Renderer) drawItem(s canvas.Surface, it *Item, hovered HoverID) {
	drawAnchor(s, it.X, it.Y)
	if it.Size == 0 {
		return
	}

	s.SetFillStyle(it.color())
	it.Shape.draw(s, it, hovered)

	if it.Text == nil || it.Shape.ownsLabel() {
		return
	}
	s.SetFillStyle(it.color())
	s.SetTextAlign(canvas.AlignLeft)
	s.FillText(it.Text.Content, it.Text.X, it.Text.Y)
}

func drawAnchor(s canvas.Surface, x, y float64) {
	s.BeginPath()
	s.Arc(x, y, anchorOuterRadius, 0, 2*math.Pi, false)
	s.SetFillStyle(anchorOuter)
	s.Fill()

	s.BeginPath()
	s.Arc(x, y, anchorInnerRadius, 0, 2*math.Pi, false)
	s.SetFillStyle(anchorInner)
	s.Fill()
}
