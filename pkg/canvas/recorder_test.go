package canvas

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.SetFillStyle(MustParseColor("#ff0000"))
	r.Save()
	r.SetFillStyle(MustParseColor("#00ff00"))
	r.FillRect(1, 2, 3, 4)
	r.Restore()
	r.FillText("hi", 5, 6)

	rects := r.Named("FillRect")
	require.Len(t, rects, 1)
	assert.Equal(t, []float64{1, 2, 3, 4}, rects[0].Args)
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, rects[0].Fill)

	texts := r.Named("FillText")
	require.Len(t, texts, 1)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, texts[0].Fill, "Restore brings back the fill")
	assert.Equal(t, `FillText(5, 6, "hi")`, texts[0].String())

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FillRect(1, 2, 3, 4) fill=#00ff00\n")

	r.Reset()
	assert.Empty(t, r.Ops)
}

func TestRecorderMeasure(t *testing.T) {
	r := NewRecorder()
	r.SetFont(MakeFont(10, "Go"))
	assert.Equal(t, 12.0, r.MeasureText("ab"))

	r.Measure = func(f Font, s string) float64 { return f.Size }
	assert.Equal(t, 10.0, r.MeasureText("ab"))
	assert.Equal(t, MakeFont(10, "Go"), r.Font())

	for _, op := range r.Ops {
		assert.NotEqual(t, "MeasureText", op.Name)
	}
}

func TestFontSet(t *testing.T) {
	fs := NewFontSet()
	regular := fs.Measure(MakeFont(12, "Go"), "iiii")
	mono := fs.Measure(MakeFont(12, "Go Mono"), "iiii")
	assert.Greater(t, regular, 0.0)
	assert.Greater(t, mono, regular, "mono i is wider than proportional i")

	big := fs.Measure(MakeFont(24, "Go"), "iiii")
	assert.InDelta(t, 2*regular, big, 1)

	asc, desc := fs.Metrics(MakeFont(12, ""))
	assert.Greater(t, asc, desc)

	f1, err := fs.Face(MakeFont(12, "Go"))
	require.NoError(t, err)
	f2, err := fs.Face(MakeFont(12, "Go"))
	require.NoError(t, err)
	assert.Same(t, f1, f2)
}

func TestResolveFamily(t *testing.T) {
	assert.Equal(t, "go mono", ResolveFamily(`"Trebuchet MS", 'Go Mono', monospace`))
	assert.Equal(t, "monospace", ResolveFamily("Menlo, monospace"))
	assert.Equal(t, "go", ResolveFamily("Unknown"))
	assert.Equal(t, "go", ResolveFamily(""))
	assert.NotEmpty(t, ResolveTTF("Go Bold"))
}

func TestFontString(t *testing.T) {
	assert.Equal(t, "12px Go", MakeFont(12, "").String())
	assert.Equal(t, "10.5px Go Mono", MakeFont(10.5, "Go Mono").String())
}
