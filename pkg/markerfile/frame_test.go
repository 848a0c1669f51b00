package markerfile

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
)

const sampleJSON = `{
  "width": 320,
  "height": 160,
  "font": {"size": 12, "family": "Go"},
  "pointer": {"x": 101, "y": 100},
  "items": [
    {"x": 100, "y": 100, "size": 20, "shape": "circle", "color": "#26a69a", "id": 1, "externalId": "buy-1",
     "text": {"content": "B", "y": 120}},
    {"x": 102, "y": 100, "size": 20, "shape": "square", "color": "#ef5350", "id": 2},
    {"x": 200, "y": 100, "size": 0.4, "shape": "pnl", "color": "#ffffff", "id": 3,
     "text": {"content": "+1.2%", "y": 0}}
  ]
}`

const sampleYAML = `
width: 320
height: 160
visibleRange: {from: 1, to: 3}
hover: 1
items:
  - {x: 100, y: 100, size: 20, shape: circle, id: 1}
  - {x: 102, y: 100, size: 20, shape: arrowUp, id: 2}
  - {x: 200, y: 100, size: 10, shape: pnl, id: 3}
`

func TestParseJSON(t *testing.T) {
	f, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 320, f.Width)
	assert.Nil(t, f.VisibleRange)
	require.Len(t, f.Items, 3)

	items, err := f.Markers()
	require.NoError(t, err)
	assert.Equal(t, marker.Circle, items[0].Shape)
	assert.Equal(t, "buy-1", items[0].ExternalID)
	require.NotNil(t, items[0].Text)
	assert.Equal(t, 120.0, items[0].Text.Y)
	assert.Equal(t, marker.PnL, items[2].Shape)

	assert.Equal(t, &marker.VisibleRange{From: 0, To: 3}, f.Visible())
	assert.Nil(t, f.Previous())
}

func TestParseYAML(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, &marker.VisibleRange{From: 1, To: 3}, f.Visible())
	require.NotNil(t, f.Previous())
	assert.Equal(t, 1, f.Previous().InternalID)

	items, err := f.Markers()
	require.NoError(t, err)
	assert.Equal(t, marker.ArrowUp, items[1].Shape)
	assert.Nil(t, items[1].Color)
}

func TestMarkersRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"unknown shape": `{"items":[{"x":0,"y":0,"size":1,"shape":"line","id":1}]}`,
		"bad color":     `{"items":[{"x":0,"y":0,"size":1,"shape":"circle","color":"#zz","id":1}]}`,
		"duplicate id":  `{"items":[{"shape":"circle","id":1},{"shape":"square","id":1}]}`,
		"negative size": `{"items":[{"shape":"circle","size":-1,"id":1}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := Parse([]byte(doc), FormatJSON)
			require.NoError(t, err)
			_, err = f.Markers()
			assert.Error(t, err)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("{"), FormatJSON)
	assert.Error(t, err)
	_, err = Parse([]byte("{}"), Format("toml"))
	assert.Error(t, err)
}

func TestLoadAndRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Items, 3)

	data, err := ToJSON(f, true)
	require.NoError(t, err)
	back, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, f, back)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("A.YML"))
	assert.Equal(t, FormatJSON, FormatFor("a.json"))
	assert.Equal(t, FormatJSON, FormatFor("frame"))
}

func TestHitTest(t *testing.T) {
	f, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	got, err := HitTest(f, 101, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.InternalID)

	// Latched hover keeps the circle.
	one := 1
	f.Hover = &one
	got, err = HitTest(f, 101, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.InternalID)
	assert.Equal(t, "buy-1", got.ExternalID)

	got, err = HitTest(f, 10, 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHitTestIgnoresCanvasSettings(t *testing.T) {
	f, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)
	f.Background = "not-a-color"
	f.Width, f.Height = -1, 0

	got, err := HitTest(f, 101, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.InternalID)

	_, err = Prepare(f, DefaultOptions())
	assert.Error(t, err, "rendering still needs a valid canvas")

	f.Items[0].Shape = "line"
	_, err = HitTest(f, 101, 100)
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	ro := canvas.DefaultRasterOptions()
	opts := DefaultOptions()
	assert.Equal(t, ro.Width, opts.Width)
	assert.Equal(t, ro.Height, opts.Height)
	assert.Equal(t, ro.Scale, opts.Scale)

	bg, err := canvas.ParseColor(opts.Background)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBAModel.Convert(ro.Background), bg)
}

func TestPrepareFont(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.FontFamily = "Go Mono"

	r, err := Prepare(f, opts)
	require.NoError(t, err)
	assert.Equal(t, canvas.MakeFont(12, "Go Mono"), r.Font())

	f.Font = Font{Size: 15, Family: "Go Bold"}
	r, err = Prepare(f, opts)
	require.NoError(t, err)
	assert.Equal(t, canvas.MakeFont(15, "Go Bold"), r.Font())
}

func TestRenderTrace(t *testing.T) {
	f, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Format = OutputTrace
	var buf bytes.Buffer
	hover, err := Render(f, &buf, opts)
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Equal(t, 2, hover.InternalID)

	trace := buf.String()
	assert.Contains(t, trace, `SetFont("12px Go")`)
	// The square is hovered and painted last.
	lines := strings.Split(strings.TrimSpace(trace), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "FillRect("), lines[len(lines)-2])
	// The pnl label is dimmed away while the square is hovered.
	assert.NotContains(t, trace, `"+1.2%"`)
	assert.Contains(t, trace, `FillText(`)
}

func TestRenderPNG(t *testing.T) {
	f, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Scale = 1
	var buf bytes.Buffer
	_, err = Render(f, &buf, opts)
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())
}

func TestRenderSVG(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Format = OutputSVG
	var buf bytes.Buffer
	hover, err := Render(f, &buf, opts)
	require.NoError(t, err)
	// No pointer: the latched hover is drawn as is, even though it is outside the window.
	require.NotNil(t, hover)
	assert.Equal(t, 1, hover.InternalID)
	assert.True(t, strings.HasPrefix(buf.String(), "<svg"))
	assert.Contains(t, buf.String(), `width="320"`)
}

func TestRenderUnknownFormat(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Format = "gif"
	_, err = Render(f, &bytes.Buffer{}, opts)
	assert.Error(t, err)
}
