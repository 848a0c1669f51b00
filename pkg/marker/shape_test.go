package marker

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
)

func TestParseShape(t *testing.T) {
	for _, s := range Shapes {
		got, err := ParseShape(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseShape("line")
	assert.Error(t, err)
}

func TestShapeSize(t *testing.T) {
	tests := []struct {
		size, coeff, want float64
	}{
		{1, 1.0, 11},    // clamped up to 12, then odd
		{12, 1.0, 11},
		{13, 1.0, 13},
		{50, 1.0, 29},   // clamped down to 30
		{20, 0.8, 15},   // 16 -> 15
		{20, 0.7, 13},   // 14 -> 13
		{12.5, 1.0, 13}, // ceil 13
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shapeSize(tt.size, tt.coeff), "size=%v coeff=%v", tt.size, tt.coeff)
	}
}

func TestCircleHitTest(t *testing.T) {
	it := &Item{X: 100, Y: 100, Size: 20, Shape: Circle}
	r := circleRadius(20) // 7

	assert.True(t, Circle.hitTest(it, 100, 100))
	assert.True(t, Circle.hitTest(it, 100+r, 100))
	assert.False(t, Circle.hitTest(it, 100+r+0.5, 100))
	assert.False(t, Circle.hitTest(it, 100+r, 100+r))
}

func TestSquareHitTest(t *testing.T) {
	it := &Item{X: 50, Y: 50, Size: 20, Shape: Square}
	r := squareRect(50, 50, 20)
	require.Equal(t, 13.0, r.W)

	assert.True(t, Square.hitTest(it, r.Left(), r.Top()))
	assert.True(t, Square.hitTest(it, r.Right(), r.Bottom()))
	assert.False(t, Square.hitTest(it, r.Right()+0.1, 50))
}

func TestArrowGeometry(t *testing.T) {
	up := arrowPolygon(true, 0, 0, 20)
	down := arrowPolygon(false, 0, 0, 20)
	require.Len(t, up, 7)

	// Head tip points away from the stem.
	assert.Less(t, up[1].Y, 0.0)
	assert.Greater(t, down[1].Y, 0.0)

	// The stem is narrower than the head.
	assert.Less(t, up[3].X, up[2].X)

	box := boundsOf(up)
	it := &Item{X: 0, Y: 0, Size: 20, Shape: ArrowUp}
	assert.True(t, ArrowUp.hitTest(it, box.Left(), box.Top()))
	assert.True(t, ArrowUp.hitTest(it, box.Right(), box.Bottom()))
	assert.False(t, ArrowUp.hitTest(it, box.Right()+1, 0))
	// Box test: the empty corner beside the stem still hits.
	assert.True(t, ArrowUp.hitTest(it, box.Left(), box.Bottom()))
}

func TestArrowDraw(t *testing.T) {
	rec := canvas.NewRecorder()
	it := &Item{X: 10, Y: 10, Size: 20, Shape: ArrowDown}
	ArrowDown.draw(rec, it, HoverID{})

	assert.Len(t, rec.Named("MoveTo"), 1)
	assert.Len(t, rec.Named("LineTo"), 6)
	assert.Len(t, rec.Named("ClosePath"), 1)
	assert.Len(t, rec.Named("Fill"), 1)
}

func TestProgressFraction(t *testing.T) {
	tests := []struct {
		size   float64
		active bool
	}{
		{0, false},
		{-0.5, false},
		{0.001, true},
		{0.4, true},
		{9.99, true},
		{10, false},
		{12, false},
	}
	for _, tt := range tests {
		f, ok := progressFraction(tt.size)
		assert.Equal(t, tt.active, ok, "size=%v", tt.size)
		if ok {
			assert.Equal(t, tt.size, f)
		}
	}
}

func TestPnLHitRect(t *testing.T) {
	it := &Item{X: 50, Y: 80, Size: 0.4, Shape: PnL, InternalID: 2}
	badge := pnlBadge(it.X, it.Y)

	assert.Equal(t, 14.0, badge.Left())
	assert.Equal(t, 48.0, badge.Top())
	assert.Equal(t, 86.0, badge.Right())
	assert.Equal(t, 72.0, badge.Bottom())

	assert.True(t, PnL.hitTest(it, 50, 60))
	assert.False(t, PnL.hitTest(it, 50, 100))
	assert.False(t, PnL.hitTest(it, 50, 80), "the anchor itself is below the badge")
}

func pnlProgressRects(rec *canvas.Recorder) int {
	n := 0
	for _, op := range rec.Named("FillRect") {
		if op.Fill == pnlProgress || op.Fill == pnlProgressDimmed {
			n++
		}
	}
	return n
}

func TestPnLProgressBar(t *testing.T) {
	for _, size := range []float64{0.25, 0.5, 9} {
		rec := canvas.NewRecorder()
		PnL.draw(rec, &Item{X: 50, Y: 80, Size: size, Shape: PnL}, HoverID{})
		require.Equal(t, 1, pnlProgressRects(rec), "size=%v", size)

		var bar canvas.Op
		for _, op := range rec.Named("FillRect") {
			if op.Fill == pnlProgress {
				bar = op
			}
		}
		assert.Equal(t, []float64{14, 48, 72 * size, 24}, bar.Args)
	}

	for _, size := range []float64{10, 11, -1} {
		rec := canvas.NewRecorder()
		PnL.draw(rec, &Item{X: 50, Y: 80, Size: size, Shape: PnL}, HoverID{})
		assert.Zero(t, pnlProgressRects(rec), "size=%v", size)
	}
}

func TestPnLDimmed(t *testing.T) {
	label := &Text{Content: "+12.5%"}
	it := &Item{X: 50, Y: 80, Size: 0.5, Shape: PnL, InternalID: 2, Color: canvas.MustParseColor("#00ff00"), Text: label}

	t.Run("normal", func(t *testing.T) {
		rec := canvas.NewRecorder()
		PnL.draw(rec, it, Hovered(2))

		assert.Len(t, rec.Named("Stroke"), 1)
		texts := rec.Named("FillText")
		require.Len(t, texts, 1)
		assert.Equal(t, "+12.5%", texts[0].Text)
		assert.Equal(t, []float64{50, 60}, texts[0].Args)
		assert.Equal(t, canvas.MustParseColor("#00ff00"), texts[0].Fill)
	})

	t.Run("nothing hovered", func(t *testing.T) {
		rec := canvas.NewRecorder()
		PnL.draw(rec, it, HoverID{})
		assert.Len(t, rec.Named("Stroke"), 1)
		assert.Len(t, rec.Named("FillText"), 1)
	})

	t.Run("other hovered", func(t *testing.T) {
		rec := canvas.NewRecorder()
		PnL.draw(rec, it, Hovered(7))

		assert.Empty(t, rec.Named("Stroke"))
		assert.Empty(t, rec.Named("FillText"))
		var fills []color.NRGBA
		for _, op := range rec.Named("FillRect") {
			fills = append(fills, op.Fill)
		}
		assert.Equal(t, []color.NRGBA{pnlBackgroundDimmed, pnlProgressDimmed}, fills)
	})
}

func TestPnLClipIsBalanced(t *testing.T) {
	rec := canvas.NewRecorder()
	PnL.draw(rec, &Item{X: 0, Y: 0, Size: 0.3, Shape: PnL}, HoverID{})

	assert.Len(t, rec.Named("Clip"), 1)
	assert.Equal(t, len(rec.Named("Save")), len(rec.Named("Restore")))
	assert.Len(t, rec.Named("QuadraticCurveTo"), 4)
}
