package marker

import "github.com/ha1tch/chartmarkers/pkg/canvas"

// PnL badge geometry. The badge has a fixed size and sits pnlOffset pixels
// above the anchor regardless of Size; draw and hit-test share these.
const (
	pnlWidth       = 72
	pnlHeight      = 24
	pnlRadius      = 8
	pnlOffset      = 20
	pnlBorderWidth = 2

	// inactiveProgress is the size the host substitutes when there is no
	// progress data.
	inactiveProgress = 10
)

var (
	pnlBorder           = canvas.MustParseColor("#0E0E0F")
	pnlBackground       = canvas.MustParseColor("#181B1A")
	pnlBackgroundDimmed = canvas.MustParseColor("rgba(24, 27, 26, 0.4)")
	pnlProgress         = canvas.MustParseColor("#2C3130")
	pnlProgressDimmed   = canvas.MustParseColor("rgba(44, 49, 48, 0.2)")
)

type pnlShape struct{}

func (pnlShape) String() string { return "pnl" }

// pnlBadge returns the badge rectangle for a marker anchored at (x, y).
func pnlBadge(x, y float64) Rect {
	return Rect{X: x, Y: y - pnlOffset, W: pnlWidth, H: pnlHeight}
}

// progressFraction interprets a PnL marker size as the filled share of the
// badge. Only 0 < size < inactiveProgress shows a bar.
func progressFraction(size float64) (float64, bool) {
	if size > 0 && size < inactiveProgress {
		return size, true
	}
	return 0, false
}

// pillPath starts a new path tracing a rounded rectangle with quadratic corners.
func pillPath(s canvas.Surface, r Rect, radius float64) {
	if radius > r.W/2 {
		radius = r.W / 2
	}
	if radius > r.H/2 {
		radius = r.H / 2
	}
	x0, y0, x1, y1 := r.Left(), r.Top(), r.Right(), r.Bottom()

	s.BeginPath()
	s.MoveTo(x1-radius, y0)
	s.QuadraticCurveTo(x1, y0, x1, y0+radius)
	s.LineTo(x1, y1-radius)
	s.QuadraticCurveTo(x1, y1, x1-radius, y1)
	s.LineTo(x0+radius, y1)
	s.QuadraticCurveTo(x0, y1, x0, y1-radius)
	s.LineTo(x0, y0+radius)
	s.QuadraticCurveTo(x0, y0, x0+radius, y0)
	s.ClosePath()
}

func (pnlShape) draw(s canvas.Surface, it *Item, hovered HoverID) {
	dimmed := hovered.OtherThan(it.InternalID)
	badge := pnlBadge(it.X, it.Y)

	background, progress := pnlBackground, pnlProgress
	if dimmed {
		background, progress = pnlBackgroundDimmed, pnlProgressDimmed
	}

	s.Save()
	if !dimmed {
		s.BeginPath()
		s.MoveTo(badge.Right()-pnlRadius, badge.Top())
		s.LineTo(badge.Left()+pnlRadius, badge.Top())
		s.SetStrokeStyle(pnlBorder)
		s.SetLineWidth(pnlBorderWidth)
		s.Stroke()
	}
	pillPath(s, badge, pnlRadius)
	s.Clip()

	s.SetFillStyle(background)
	s.FillRect(badge.Left(), badge.Top(), badge.W, badge.H)
	if fraction, ok := progressFraction(it.Size); ok {
		s.SetFillStyle(progress)
		s.FillRect(badge.Left(), badge.Top(), badge.W*fraction, badge.H)
	}
	s.Restore()

	if dimmed || it.Text == nil {
		return
	}
	s.Save()
	s.SetFillStyle(it.color())
	s.SetTextAlign(canvas.AlignCenter)
	s.FillText(it.Text.Content, badge.X, badge.Y)
	s.Restore()
}

func (pnlShape) hitTest(it *Item, x, y float64) bool {
	return pnlBadge(it.X, it.Y).Contains(x, y)
}

func (pnlShape) ownsLabel() bool { return true }
