package canvas

import (
	"fmt"
	"image/color"
	"io"
	"strings"
)

// Op is one recorded surface call.
type Op struct {
	Name string
	Args []float64
	Text string
	Fill color.NRGBA // fill style at the time of the call
}

func (op Op) String() string {
	var sb strings.Builder
	sb.WriteString(op.Name)
	sb.WriteByte('(')
	for i, a := range op.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(num(a))
	}
	if op.Text != "" {
		if len(op.Args) > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", op.Text)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Recorder is a Surface that records calls instead of drawing.
type Recorder struct {
	Ops []Op

	// Measure computes text widths. Nil estimates 0.6 em per byte.
	Measure func(f Font, text string) float64

	fill  color.Color
	font  Font
	stack []recorderState
}

type recorderState struct {
	fill color.Color
	font Font
}

var _ Surface = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{fill: color.Black, font: MakeFont(10, "sans-serif")}
}

func (r *Recorder) record(name string, text string, args ...float64) {
	r.Ops = append(r.Ops, Op{
		Name: name,
		Args: args,
		Text: text,
		Fill: color.NRGBAModel.Convert(r.fill).(color.NRGBA),
	})
}

// Named returns the recorded ops with the given name, in call order.
func (r *Recorder) Named(name string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Name == name {
			out = append(out, op)
		}
	}
	return out
}

// Reset discards recorded ops.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// WriteTo writes one op per line.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, op := range r.Ops {
		n, err := fmt.Fprintf(w, "%s fill=%s\n", op, FormatColor(op.Fill))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (r *Recorder) Save() {
	r.stack = append(r.stack, recorderState{fill: r.fill, font: r.font})
	r.record("Save", "")
}

func (r *Recorder) Restore() {
	if n := len(r.stack); n > 0 {
		r.fill, r.font = r.stack[n-1].fill, r.stack[n-1].font
		r.stack = r.stack[:n-1]
	}
	r.record("Restore", "")
}

func (r *Recorder) BeginPath()          { r.record("BeginPath", "") }
func (r *Recorder) ClosePath()          { r.record("ClosePath", "") }
func (r *Recorder) MoveTo(x, y float64) { r.record("MoveTo", "", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.record("LineTo", "", x, y) }
func (r *Recorder) Fill()               { r.record("Fill", "") }
func (r *Recorder) Stroke()             { r.record("Stroke", "") }
func (r *Recorder) Clip()               { r.record("Clip", "") }

func (r *Recorder) QuadraticCurveTo(cpx, cpy, x, y float64) {
	r.record("QuadraticCurveTo", "", cpx, cpy, x, y)
}

func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool) {
	ccw := 0.0
	if anticlockwise {
		ccw = 1
	}
	r.record("Arc", "", x, y, radius, startAngle, endAngle, ccw)
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.record("FillRect", "", x, y, w, h)
}

func (r *Recorder) SetFillStyle(c color.Color) {
	r.fill = c
	r.record("SetFillStyle", FormatColor(c))
}

func (r *Recorder) SetStrokeStyle(c color.Color) {
	r.record("SetStrokeStyle", FormatColor(c))
}

func (r *Recorder) SetLineWidth(w float64) {
	r.record("SetLineWidth", "", w)
}

func (r *Recorder) SetFont(f Font) {
	r.font = f
	r.record("SetFont", f.String())
}

func (r *Recorder) SetTextBaseline(b TextBaseline) {
	r.record("SetTextBaseline", "", float64(b))
}

func (r *Recorder) SetTextAlign(a TextAlign) {
	r.record("SetTextAlign", "", float64(a))
}

func (r *Recorder) FillText(text string, x, y float64) {
	r.record("FillText", text, x, y)
}

// MeasureText is not recorded; it does not paint.
func (r *Recorder) MeasureText(text string) float64 {
	if r.Measure != nil {
		return r.Measure(r.font, text)
	}
	return float64(len(text)) * r.font.Size * 0.6
}

// Font returns the current font.
func (r *Recorder) Font() Font {
	return r.font
}
