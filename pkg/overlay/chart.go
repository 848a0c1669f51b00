package overlay

import (
	"image/color"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
)

// ChartOptions describes a price chart with a marker overlay.
type ChartOptions struct {
	Title      string
	Width      int
	Height     int
	Format     string // "png" or "svg"
	Background color.Color
	LineColor  color.Color

	Times  []time.Time
	Prices []float64

	Markers    []Marker
	FontSize   float64
	FontFamily string

	// Pointer, when set, is hit-tested against the markers and the result
	// is drawn hovered. Previous carries hover from an earlier frame.
	Pointer  *canvas.Point
	Previous *marker.HoverResult
}

// DefaultChartOptions returns sensible defaults for chart rendering.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width:      800,
		Height:     400,
		Format:     "png",
		Background: canvas.MustParseColor("#0E0E0F"),
		LineColor:  canvas.MustParseColor("#5D6B6A"),
		FontSize:   12,
		FontFamily: canvas.DefaultFontFamily,
	}
}

func (o ChartOptions) build(markers *Series) chart.Chart {
	def := DefaultChartOptions()
	if o.Background == nil {
		o.Background = def.Background
	}
	if o.LineColor == nil {
		o.LineColor = def.LineColor
	}
	bg := chart.Style{FillColor: toDrawing(o.Background)}
	axis := chart.Style{
		FontColor:   toDrawing(color.NRGBA{0x9B, 0xA3, 0xA2, 0xFF}),
		StrokeColor: toDrawing(color.NRGBA{0x2C, 0x31, 0x30, 0xFF}),
	}

	series := []chart.Series{}
	if len(o.Times) > 0 {
		series = append(series, chart.TimeSeries{
			Name:    "price",
			XValues: o.Times,
			YValues: o.Prices,
			Style: chart.Style{
				StrokeColor: toDrawing(o.LineColor),
				StrokeWidth: 1.5,
			},
		})
	}
	series = append(series, markers)

	return chart.Chart{
		Title:      o.Title,
		Width:      o.Width,
		Height:     o.Height,
		Background: bg,
		Canvas:     bg,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
			Style:          axis,
		},
		YAxis: chart.YAxis{Style: axis},
		Series: series,
	}
}

// RenderChart draws a price line with markers and returns the hover used.
// With a pointer the chart is laid out twice: the first pass projects the
// markers so the pointer can be resolved, the second draws the hover.
func RenderChart(w io.Writer, o ChartOptions) (*marker.HoverResult, error) {
	if len(o.Times) != len(o.Prices) {
		return nil, errors.Errorf("got %d times and %d prices", len(o.Times), len(o.Prices))
	}
	if len(o.Times) == 0 && len(o.Markers) == 0 {
		return nil, errors.New("nothing to chart")
	}

	provider := chart.PNG
	switch o.Format {
	case "png", "":
	case "svg":
		provider = chart.SVG
	default:
		return nil, errors.Errorf("unknown chart format %q", o.Format)
	}

	s := NewSeries("markers", o.Markers)
	if o.FontSize > 0 {
		s.FontSize = o.FontSize
	}
	if o.FontFamily != "" {
		s.FontFamily = o.FontFamily
	}

	hover := o.Previous
	if o.Pointer != nil {
		layout := o.build(s)
		if err := layout.Render(provider, io.Discard); err != nil {
			return nil, errors.Wrap(err, "layout chart")
		}
		hover = s.HitTest(o.Pointer.X, o.Pointer.Y, hover)
	}
	s.Hover = hover.ID()

	c := o.build(s)
	if err := c.Render(provider, w); err != nil {
		return nil, errors.Wrap(err, "render chart")
	}
	return hover, nil
}
