package main

import (
	"fmt"
	"image"
	"math"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

var (
	styleDefault = tcell.StyleDefault
	styleStatus  = tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	styleHover   = tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorYellow).Bold(true)
)

// viewport maps terminal cells to frame pixels. Each cell shows two
// square blocks of scale pixels, one above the other.
type viewport struct {
	cols, rows int
	scale      float64
	imgW, imgH int
}

func newViewport(cols, rows, imgW, imgH int) viewport {
	vp := viewport{cols: cols, rows: rows, imgW: imgW, imgH: imgH}
	if cols <= 0 || rows <= 0 {
		return vp
	}
	vp.scale = math.Max(float64(imgW)/float64(cols), float64(imgH)/float64(2*rows))
	return vp
}

// pixel returns the frame pixel under the centre of cell (cx, cy).
func (vp viewport) pixel(cx, cy int) (x, y float64, ok bool) {
	if vp.scale <= 0 || cx < 0 || cy < 0 || cx >= vp.cols || cy >= vp.rows {
		return 0, 0, false
	}
	x = (float64(cx) + 0.5) * vp.scale
	y = float64(2*cy+1) * vp.scale
	if x >= float64(vp.imgW) || y >= float64(vp.imgH) {
		return 0, 0, false
	}
	return x, y, true
}

// block averages the pixels of half-cell (bx, by) in linear RGB. by counts
// half rows. ok is false when the block lies outside the image.
func (vp viewport) block(img *image.RGBA, bx, by int) (c colorful.Color, ok bool) {
	x0 := int(math.Floor(float64(bx) * vp.scale))
	y0 := int(math.Floor(float64(by) * vp.scale))
	x1 := int(math.Ceil(float64(bx+1) * vp.scale))
	y1 := int(math.Ceil(float64(by+1) * vp.scale))
	b := img.Bounds()
	r := image.Rect(x0, y0, max(x1, x0+1), max(y1, y0+1)).Intersect(b)
	if r.Empty() {
		return colorful.Color{}, false
	}

	var sr, sg, sb float64
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pc, _ := colorful.MakeColor(img.RGBAAt(x, y))
			lr, lg, lb := pc.LinearRgb()
			sr, sg, sb = sr+lr, sg+lg, sb+lb
			n++
		}
	}
	f := float64(n)
	return colorful.LinearRgb(sr/f, sg/f, sb/f).Clamped(), true
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (v *Viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if v.img == nil || h < 2 {
		return
	}

	b := v.img.Bounds()
	v.vp = newViewport(w, h-1, b.Dx(), b.Dy())
	v.drawFrame()
	v.drawStatusBar(w, h)
}

// drawFrame paints the image with upper half blocks: the foreground is the
// top block and the background the bottom one.
func (v *Viewer) drawFrame() {
	for cy := 0; cy < v.vp.rows; cy++ {
		for cx := 0; cx < v.vp.cols; cx++ {
			top, okTop := v.vp.block(v.img, cx, 2*cy)
			bottom, okBottom := v.vp.block(v.img, cx, 2*cy+1)
			if !okTop {
				continue
			}
			style := styleDefault.Foreground(toTcell(top))
			if okBottom {
				style = style.Background(toTcell(bottom))
			}
			v.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
}

func (v *Viewer) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	left := fmt.Sprintf("%s  %d items", filepath.Base(v.filename), len(v.frame.Items))
	if v.message != "" {
		left += "  " + v.message
	}
	right := v.hoverString()

	rw := runewidth.StringWidth(right)
	leftW := w - rw - 3
	if leftW < 0 {
		leftW = 0
	}
	v.drawString(1, y, runewidth.Truncate(left, leftW, "…"), styleStatus)
	if rw > 0 && rw < w-1 {
		v.drawString(w-rw-1, y, right, styleHover)
	}
}

// hoverString describes the hovered marker: internal id, external id and
// label.
func (v *Viewer) hoverString() string {
	if v.hover == nil {
		return "q quit  r reload"
	}
	s := fmt.Sprintf("#%d", v.hover.InternalID)
	if v.hover.ExternalID != "" {
		s += " " + v.hover.ExternalID
	}
	for _, it := range v.renderer.Items() {
		if it.InternalID == v.hover.InternalID && it.Text != nil {
			s += "  " + runewidth.Truncate(it.Text.Content, 24, "…")
			break
		}
	}
	return s
}

// drawString writes s from x, advancing by each rune's display width.
func (v *Viewer) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
