package overlay

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
)

func at(sec int) time.Time {
	return time.Unix(int64(sec), 0)
}

func testMarkers() []Marker {
	var ms []Marker
	for i := 0; i < 8; i++ {
		ms = append(ms, Marker{
			Time:  at(i),
			Price: 50,
			Size:  20,
			Shape: marker.Circle,
			Color: canvas.MustParseColor("#26a69a"),
			ID:    i + 1,
			Label: "m",
		})
	}
	return ms
}

// Ranges chosen so every projection is exact: one second is 100 px and
// a price of 50 lands at y=200.
func testFrame() (chart.Box, chart.Range, chart.Range) {
	box := chart.Box{Top: 0, Left: 10, Right: 810, Bottom: 400}
	xr := &chart.ContinuousRange{Min: chart.TimeToFloat64(at(1)), Max: chart.TimeToFloat64(at(5)), Domain: 400}
	yr := &chart.ContinuousRange{Min: 0, Max: 100, Domain: 400}
	return box, xr, yr
}

func TestSeriesValues(t *testing.T) {
	s := NewSeries("m", testMarkers())
	assert.Equal(t, 8, s.Len())
	x, y := s.GetValues(3)
	assert.Equal(t, chart.TimeToFloat64(at(3)), x)
	assert.Equal(t, 50.0, y)
	assert.NoError(t, s.Validate())
}

func TestSeriesValidate(t *testing.T) {
	ms := testMarkers()
	ms[2].ID = 1
	assert.Error(t, NewSeries("dup", ms).Validate())

	ms = testMarkers()
	ms[2].Time = at(0)
	assert.Error(t, NewSeries("order", ms).Validate())

	ms = testMarkers()
	ms[0].Shape = nil
	assert.Error(t, NewSeries("shape", ms).Validate())
}

func TestSeriesProject(t *testing.T) {
	s := NewSeries("m", testMarkers())
	box, xr, yr := testFrame()

	items, visible := s.Project(box, xr, yr)
	require.Len(t, items, 8)
	assert.Equal(t, &marker.VisibleRange{From: 1, To: 6}, visible)

	assert.Equal(t, 110.0, items[2].X)
	assert.Equal(t, 200.0, items[2].Y)
	require.NotNil(t, items[2].Text)
	assert.Equal(t, 200.0+DefaultLabelOffset, items[2].Text.Y)
	assert.Nil(t, items[2].EndCoord)
}

func TestSeriesRenderAndHitTest(t *testing.T) {
	s := NewSeries("m", testMarkers())
	assert.Nil(t, s.HitTest(110, 200, nil))

	box, xr, yr := testFrame()
	r, err := chart.SVG(900, 450)
	require.NoError(t, err)
	s.Render(r, box, xr, yr, chart.Style{})

	got := s.HitTest(110, 200, nil)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.InternalID)

	// Markers outside the x range are not hit-testable.
	assert.Nil(t, s.HitTest(-90, 200, nil))
	assert.Nil(t, s.HitTest(510, 200, nil))
	got = s.HitTest(410, 200, nil)
	require.NotNil(t, got)
	assert.Equal(t, 6, got.InternalID)

	var buf bytes.Buffer
	require.NoError(t, r.Save(&buf))
	assert.Contains(t, buf.String(), "<path")
}

func TestSurfaceClipTrimsFillRect(t *testing.T) {
	r, err := chart.SVG(100, 100)
	require.NoError(t, err)
	s := NewSurface(r)

	s.Save()
	s.BeginPath()
	s.MoveTo(10, 10)
	s.LineTo(20, 10)
	s.LineTo(20, 20)
	s.LineTo(10, 20)
	s.ClosePath()
	s.Clip()
	require.NotNil(t, s.st.clip)
	assert.Equal(t, clipRect{10, 10, 20, 20}, *s.st.clip)

	// A path entirely outside the clip is dropped.
	s.BeginPath()
	s.MoveTo(50, 50)
	s.LineTo(60, 60)
	assert.True(t, s.clippedOut())
	s.Restore()
	assert.Nil(t, s.st.clip)
	assert.False(t, s.clippedOut())
}

func TestSurfaceMeasureText(t *testing.T) {
	r, err := chart.PNG(100, 100)
	require.NoError(t, err)
	s := NewSurface(r)
	s.SetFont(canvas.MakeFont(12, "Go"))
	short := s.MeasureText("ab")
	long := s.MeasureText("abcdefgh")
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
}

func TestRenderChart(t *testing.T) {
	o := DefaultChartOptions()
	o.Format = "svg"
	for i := 0; i < 8; i++ {
		o.Times = append(o.Times, at(i))
		o.Prices = append(o.Prices, 40+float64(i))
	}
	o.Markers = testMarkers()
	o.Markers[3].Shape = marker.PnL
	o.Markers[3].Size = 0.5
	o.Markers[3].Label = "+5%"

	var buf bytes.Buffer
	hover, err := RenderChart(&buf, o)
	require.NoError(t, err)
	assert.Nil(t, hover)
	assert.True(t, strings.HasPrefix(buf.String(), "<svg"))

	// Far from every marker: the pointer resolves to nothing.
	o.Pointer = &canvas.Point{X: 1, Y: 1}
	buf.Reset()
	hover, err = RenderChart(&buf, o)
	require.NoError(t, err)
	assert.Nil(t, hover)

	// Without a pointer the previous hover is kept.
	o.Pointer = nil
	o.Previous = &marker.HoverResult{InternalID: 4}
	hover, err = RenderChart(&bytes.Buffer{}, o)
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Equal(t, 4, hover.InternalID)
}

func TestRenderChartErrors(t *testing.T) {
	o := DefaultChartOptions()
	_, err := RenderChart(&bytes.Buffer{}, o)
	assert.Error(t, err)

	o.Times = []time.Time{at(0)}
	_, err = RenderChart(&bytes.Buffer{}, o)
	assert.Error(t, err)

	o.Prices = []float64{1}
	o.Format = "gif"
	_, err = RenderChart(&bytes.Buffer{}, o)
	assert.Error(t, err)
}
