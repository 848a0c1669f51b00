// Package overlay draws chart markers on top of go-chart charts.
//
// Markers are placed by time and price. Series projects them with the
// chart's ranges on every render and hands the result to a marker.Renderer,
// so hit-testing uses the geometry of the last rendered frame.
package overlay

import (
	"image/color"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
)

var log = logrus.WithField("component", "overlay")

// DefaultLabelOffset is the distance from a marker to its label centre.
const DefaultLabelOffset = 18

// Marker is a marker in data coordinates.
type Marker struct {
	Time       time.Time
	Price      float64
	Size       float64
	Shape      marker.Shape
	Color      color.Color
	ID         int
	ExternalID string
	Label      string
	// LabelOffset moves the label below the marker; zero uses DefaultLabelOffset.
	LabelOffset float64
	End         *time.Time
}

var (
	_ chart.Series         = (*Series)(nil)
	_ chart.ValuesProvider = (*Series)(nil)
)

// Series is a chart.Series of markers. Markers must be sorted by Time.
type Series struct {
	Name    string
	Style   chart.Style
	YAxis   chart.YAxisType
	Markers []Marker

	FontSize   float64
	FontFamily string

	// Hover is drawn on top of every other marker.
	Hover marker.HoverID

	renderer *marker.Renderer
}

// NewSeries returns a series with the default label font.
func NewSeries(name string, markers []Marker) *Series {
	return &Series{
		Name:       name,
		Markers:    markers,
		FontSize:   12,
		FontFamily: canvas.DefaultFontFamily,
		renderer:   marker.NewRenderer(),
	}
}

func (s *Series) GetName() string          { return s.Name }
func (s *Series) GetStyle() chart.Style    { return s.Style }
func (s *Series) GetYAxis() chart.YAxisType { return s.YAxis }

// Len implements chart.ValuesProvider so markers take part in range fitting.
func (s *Series) Len() int { return len(s.Markers) }

// GetValues returns the x (unix nanoseconds) and y of marker i.
func (s *Series) GetValues(i int) (float64, float64) {
	m := s.Markers[i]
	return chart.TimeToFloat64(m.Time), m.Price
}

func (s *Series) Validate() error {
	seen := make(map[int]bool, len(s.Markers))
	for i, m := range s.Markers {
		if m.Shape == nil {
			return errors.Errorf("%s: marker %d has no shape", s.Name, i)
		}
		if seen[m.ID] {
			return errors.Errorf("%s: duplicate marker id %d", s.Name, m.ID)
		}
		seen[m.ID] = true
		if i > 0 && m.Time.Before(s.Markers[i-1].Time) {
			return errors.Errorf("%s: marker %d is out of order", s.Name, i)
		}
	}
	return nil
}

// Project maps the markers to pixel items for a canvas box and ranges and
// returns the index window whose times fall inside the x range.
func (s *Series) Project(box chart.Box, xr, yr chart.Range) ([]marker.Item, *marker.VisibleRange) {
	items := make([]marker.Item, len(s.Markers))
	for i, m := range s.Markers {
		x := float64(box.Left + xr.Translate(chart.TimeToFloat64(m.Time)))
		y := float64(box.Bottom - yr.Translate(m.Price))

		it := marker.Item{
			X:          x,
			Y:          y,
			Size:       m.Size,
			Shape:      m.Shape,
			Color:      m.Color,
			InternalID: m.ID,
			ExternalID: m.ExternalID,
		}
		if m.Label != "" {
			off := m.LabelOffset
			if off == 0 {
				off = DefaultLabelOffset
			}
			it.Text = &marker.Text{Content: m.Label, Y: y + off}
		}
		if m.End != nil {
			end := float64(box.Left + xr.Translate(chart.TimeToFloat64(*m.End)))
			it.EndCoord = &end
		}
		items[i] = it
	}

	from := sort.Search(len(s.Markers), func(i int) bool {
		return chart.TimeToFloat64(s.Markers[i].Time) >= xr.GetMin()
	})
	to := sort.Search(len(s.Markers), func(i int) bool {
		return chart.TimeToFloat64(s.Markers[i].Time) > xr.GetMax()
	})
	if to < from {
		to = from
	}
	return items, &marker.VisibleRange{From: from, To: to}
}

// Render implements chart.Series.
func (s *Series) Render(r chart.Renderer, box chart.Box, xr, yr chart.Range, _ chart.Style) {
	if s.renderer == nil {
		s.renderer = marker.NewRenderer()
	}
	items, visible := s.Project(box, xr, yr)
	s.renderer.SetParams(s.FontSize, s.FontFamily)
	s.renderer.SetData(items, visible)

	log.WithFields(logrus.Fields{
		"series":  s.Name,
		"visible": visible.To - visible.From,
	}).Debug("rendering markers")
	s.renderer.Draw(NewSurface(r), s.Hover)
}

// HitTest resolves the marker under a pixel position of the last render.
func (s *Series) HitTest(x, y float64, previous *marker.HoverResult) *marker.HoverResult {
	if s.renderer == nil {
		return nil
	}
	return s.renderer.HitTest(x, y, previous)
}
