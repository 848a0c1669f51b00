package canvas

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"strings"
)

// SVGOptions controls the SVG surface.
type SVGOptions struct {
	Width      int         // canvas width in pixels
	Height     int         // canvas height in pixels
	Background color.Color // nil: no background rect
	Fonts      *FontSet    // text measurement; nil uses DefaultFontSet
}

type svgState struct {
	fill      color.Color
	stroke    color.Color
	lineWidth float64
	font      Font
	baseline  TextBaseline
	align     TextAlign
	clipID    string
}

// SVG is a Surface that records drawing as an SVG document.
// Text is measured with Go fonts so layout matches the raster surface.
type SVG struct {
	opts  SVGOptions
	fonts *FontSet

	defs strings.Builder
	body strings.Builder

	path     Path
	st       svgState
	stack    []svgState
	nextClip int
}

var _ Surface = (*SVG)(nil)

// NewSVG creates an empty SVG surface.
func NewSVG(opts SVGOptions) *SVG {
	if opts.Fonts == nil {
		opts.Fonts = DefaultFontSet()
	}
	return &SVG{
		opts:  opts,
		fonts: opts.Fonts,
		st: svgState{
			fill:      color.Black,
			stroke:    color.Black,
			lineWidth: 1,
			font:      MakeFont(10, "sans-serif"),
		},
	}
}

// String returns the complete SVG document.
func (s *SVG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.opts.Width, s.opts.Height, s.opts.Width, s.opts.Height)
	if s.defs.Len() > 0 {
		sb.WriteString("<defs>\n")
		sb.WriteString(s.defs.String())
		sb.WriteString("</defs>\n")
	}
	if s.opts.Background != nil {
		fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" %s/>`+"\n",
			s.opts.Width, s.opts.Height, paintAttr("fill", s.opts.Background))
	}
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteTo writes the SVG document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func (s *SVG) Save() {
	s.stack = append(s.stack, s.st)
}

func (s *SVG) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.st = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *SVG) BeginPath()          { s.path.Reset() }
func (s *SVG) ClosePath()          { s.path.Close() }
func (s *SVG) MoveTo(x, y float64) { s.path.MoveTo(x, y) }
func (s *SVG) LineTo(x, y float64) { s.path.LineTo(x, y) }

func (s *SVG) QuadraticCurveTo(cpx, cpy, x, y float64) {
	s.path.QuadTo(cpx, cpy, x, y)
}

func (s *SVG) Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool) {
	s.path.Arc(x, y, radius, startAngle, endAngle, anticlockwise)
}

func (s *SVG) Fill() {
	if s.path.Empty() {
		return
	}
	fmt.Fprintf(&s.body, `<path d="%s" %s%s/>`+"\n", s.path.SVGData(), paintAttr("fill", s.st.fill), s.clipAttr())
}

func (s *SVG) Stroke() {
	if s.path.Empty() {
		return
	}
	fmt.Fprintf(&s.body, `<path d="%s" fill="none" %s stroke-width="%s" stroke-linejoin="round"%s/>`+"\n",
		s.path.SVGData(), paintAttr("stroke", s.st.stroke), num(s.st.lineWidth), s.clipAttr())
}

func (s *SVG) Clip() {
	s.nextClip++
	id := fmt.Sprintf("clip%d", s.nextClip)
	parent := ""
	if s.st.clipID != "" {
		parent = fmt.Sprintf(` clip-path="url(#%s)"`, s.st.clipID)
	}
	fmt.Fprintf(&s.defs, `<clipPath id="%s"%s><path d="%s"/></clipPath>`+"\n", id, parent, s.path.SVGData())
	s.st.clipID = id
}

func (s *SVG) FillRect(x, y, w, h float64) {
	fmt.Fprintf(&s.body, `<rect x="%s" y="%s" width="%s" height="%s" %s%s/>`+"\n",
		num(x), num(y), num(w), num(h), paintAttr("fill", s.st.fill), s.clipAttr())
}

func (s *SVG) SetFillStyle(c color.Color)      { s.st.fill = c }
func (s *SVG) SetStrokeStyle(c color.Color)    { s.st.stroke = c }
func (s *SVG) SetLineWidth(w float64)          { s.st.lineWidth = w }
func (s *SVG) SetFont(f Font)                  { s.st.font = f }
func (s *SVG) SetTextBaseline(b TextBaseline)  { s.st.baseline = b }
func (s *SVG) SetTextAlign(a TextAlign)        { s.st.align = a }
func (s *SVG) MeasureText(text string) float64 { return s.fonts.Measure(s.st.font, text) }

func (s *SVG) FillText(text string, x, y float64) {
	ascent, descent := s.fonts.Metrics(s.st.font)
	x += alignOffset(s.st.align, s.MeasureText(text))
	y += baselineOffset(s.st.baseline, ascent, descent)
	fmt.Fprintf(&s.body, `<text x="%s" y="%s" font-family="%s" font-size="%s" %s%s>%s</text>`+"\n",
		num(x), num(y), html.EscapeString(s.st.font.Family), num(s.st.font.Size),
		paintAttr("fill", s.st.fill), s.clipAttr(), html.EscapeString(text))
}

func (s *SVG) clipAttr() string {
	if s.st.clipID == "" {
		return ""
	}
	return fmt.Sprintf(` clip-path="url(#%s)"`, s.st.clipID)
}

// paintAttr renders a fill or stroke colour with a separate opacity, which
// SVG 1.1 viewers understand better than rgba().
func paintAttr(kind string, c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	attr := fmt.Sprintf(`%s="#%02x%02x%02x"`, kind, n.R, n.G, n.B)
	if n.A != 255 {
		attr += fmt.Sprintf(` %s-opacity="%s"`, kind, num(float64(n.A)/255))
	}
	return attr
}
