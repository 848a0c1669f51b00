package overlay

import (
	"image/color"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
)

// truetype fonts are parsed once per family and shared by every Surface.
var (
	ttfMu    sync.Mutex
	ttfFonts = map[string]*truetype.Font{}
)

func truetypeFont(family string) *truetype.Font {
	name := canvas.ResolveFamily(family)

	ttfMu.Lock()
	defer ttfMu.Unlock()
	if f, ok := ttfFonts[name]; ok {
		return f
	}
	f, err := truetype.Parse(canvas.ResolveTTF(name))
	if err != nil {
		log.WithError(err).WithField("family", name).Warn("cannot parse font")
		return nil
	}
	ttfFonts[name] = f
	return f
}

func toDrawing(c color.Color) drawing.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return drawing.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

type surfaceState struct {
	fill      color.Color
	stroke    color.Color
	lineWidth float64
	font      canvas.Font
	baseline  canvas.TextBaseline
	align     canvas.TextAlign

	// clip is the bounding box of the active clip region; nil means unclipped.
	clip *clipRect
}

type clipRect struct {
	minX, minY, maxX, maxY float64
}

func (c *clipRect) intersect(o clipRect) *clipRect {
	out := clipRect{
		minX: math.Max(c.minX, o.minX),
		minY: math.Max(c.minY, o.minY),
		maxX: math.Min(c.maxX, o.maxX),
		maxY: math.Min(c.maxY, o.maxY),
	}
	return &out
}

// Surface draws onto a go-chart Renderer. go-chart works in integer pixels
// and has no clipping, so paths are rounded when replayed and a clip only
// trims FillRect to the clip path's bounding box.
type Surface struct {
	r     chart.Renderer
	path  canvas.Path
	st    surfaceState
	stack []surfaceState
}

var _ canvas.Surface = (*Surface)(nil)

// NewSurface wraps r.
func NewSurface(r chart.Renderer) *Surface {
	return &Surface{
		r: r,
		st: surfaceState{
			fill:      color.Black,
			stroke:    color.Black,
			lineWidth: 1,
			font:      canvas.MakeFont(10, "sans-serif"),
		},
	}
}

func (s *Surface) Save() {
	s.stack = append(s.stack, s.st)
}

func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.st = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *Surface) BeginPath()          { s.path.Reset() }
func (s *Surface) ClosePath()          { s.path.Close() }
func (s *Surface) MoveTo(x, y float64) { s.path.MoveTo(x, y) }
func (s *Surface) LineTo(x, y float64) { s.path.LineTo(x, y) }

func (s *Surface) QuadraticCurveTo(cpx, cpy, x, y float64) {
	s.path.QuadTo(cpx, cpy, x, y)
}

func (s *Surface) Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool) {
	s.path.Arc(x, y, radius, startAngle, endAngle, anticlockwise)
}

// replay sends the flattened current path to the renderer.
func (s *Surface) replay(closeAll bool) bool {
	sps := s.path.Flatten()
	if len(sps) == 0 {
		return false
	}
	for _, sp := range sps {
		s.r.MoveTo(px(sp.Points[0].X), px(sp.Points[0].Y))
		for _, p := range sp.Points[1:] {
			s.r.LineTo(px(p.X), px(p.Y))
		}
		if closeAll || sp.Closed {
			s.r.Close()
		}
	}
	return true
}

func (s *Surface) Fill() {
	if s.clippedOut() {
		return
	}
	s.r.SetStrokeWidth(0)
	s.r.SetFillColor(toDrawing(s.st.fill))
	if s.replay(true) {
		s.r.Fill()
	}
}

func (s *Surface) Stroke() {
	if s.clippedOut() {
		return
	}
	s.r.SetStrokeColor(toDrawing(s.st.stroke))
	s.r.SetStrokeWidth(s.st.lineWidth)
	if s.replay(false) {
		s.r.Stroke()
	}
}

// clippedOut reports whether the current path lies entirely outside the clip.
func (s *Surface) clippedOut() bool {
	if s.st.clip == nil {
		return false
	}
	minX, minY, maxX, maxY, ok := s.path.Bounds()
	if !ok {
		return true
	}
	c := s.st.clip
	return maxX < c.minX || minX > c.maxX || maxY < c.minY || minY > c.maxY
}

func (s *Surface) Clip() {
	minX, minY, maxX, maxY, ok := s.path.Bounds()
	if !ok {
		// Empty clip: nothing is drawable until Restore.
		minX, minY, maxX, maxY = 0, 0, -1, -1
	}
	box := clipRect{minX: minX, minY: minY, maxX: maxX, maxY: maxY}
	if s.st.clip != nil {
		s.st.clip = s.st.clip.intersect(box)
		return
	}
	s.st.clip = &box
}

func (s *Surface) FillRect(x, y, w, h float64) {
	x0, y0, x1, y1 := x, y, x+w, y+h
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if c := s.st.clip; c != nil {
		x0, y0 = math.Max(x0, c.minX), math.Max(y0, c.minY)
		x1, y1 = math.Min(x1, c.maxX), math.Min(y1, c.maxY)
	}
	if x1 <= x0 || y1 <= y0 {
		return
	}

	s.r.SetStrokeWidth(0)
	s.r.SetFillColor(toDrawing(s.st.fill))
	s.r.MoveTo(px(x0), px(y0))
	s.r.LineTo(px(x1), px(y0))
	s.r.LineTo(px(x1), px(y1))
	s.r.LineTo(px(x0), px(y1))
	s.r.Close()
	s.r.Fill()
}

func (s *Surface) SetFillStyle(c color.Color)           { s.st.fill = c }
func (s *Surface) SetStrokeStyle(c color.Color)         { s.st.stroke = c }
func (s *Surface) SetLineWidth(w float64)               { s.st.lineWidth = w }
func (s *Surface) SetFont(f canvas.Font)                { s.st.font = f }
func (s *Surface) SetTextBaseline(b canvas.TextBaseline) { s.st.baseline = b }
func (s *Surface) SetTextAlign(a canvas.TextAlign)      { s.st.align = a }

// applyFont configures the renderer for the current font. go-chart sizes
// text in points at the renderer DPI; canvas fonts are in pixels.
func (s *Surface) applyFont() {
	if f := truetypeFont(s.st.font.Family); f != nil {
		s.r.SetFont(f)
	}
	dpi := s.r.GetDPI()
	if dpi <= 0 {
		dpi = chart.DefaultDPI
	}
	s.r.SetFontSize(s.st.font.Size * 72 / dpi)
}

func (s *Surface) MeasureText(text string) float64 {
	s.applyFont()
	return float64(s.r.MeasureText(text).Width())
}

func (s *Surface) FillText(text string, x, y float64) {
	s.applyFont()
	box := s.r.MeasureText(text)

	switch s.st.align {
	case canvas.AlignCenter:
		x -= float64(box.Width()) / 2
	case canvas.AlignRight:
		x -= float64(box.Width())
	}
	// go-chart draws on the alphabetic baseline and measures ascent only.
	switch s.st.baseline {
	case canvas.BaselineTop:
		y += float64(box.Height())
	case canvas.BaselineMiddle:
		y += float64(box.Height()) / 2
	}

	if c := s.st.clip; c != nil && (x > c.maxX || y < c.minY || x+float64(box.Width()) < c.minX || y-float64(box.Height()) > c.maxY) {
		return
	}
	s.r.SetFontColor(toDrawing(s.st.fill))
	s.r.Text(text, px(x), px(y))
}

func px(v float64) int {
	return int(math.Round(v))
}
