// Native raster surface built on golang.org/x/image.
// Paths are rasterised with x/image/vector; text is drawn with font.Drawer.

package canvas

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RasterOptions configures a raster surface.
type RasterOptions struct {
	Width      int
	Height     int
	Scale      int         // supersampling factor; 1 disables it
	Background color.Color // nil leaves the image transparent
	Fonts      *FontSet    // nil uses DefaultFontSet
}

// DefaultRasterOptions returns sensible defaults for raster rendering.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		Width:      800,
		Height:     400,
		Scale:      2,
		Background: color.NRGBA{14, 14, 15, 255}, // #0E0E0F
	}
}

type rasterState struct {
	fill      color.Color
	stroke    color.Color
	lineWidth float64
	font      Font
	baseline  TextBaseline
	align     TextAlign
	clip      *image.Alpha // nil: unclipped
}

// Raster is a Surface drawing into an RGBA image.
type Raster struct {
	img   *image.RGBA
	scale float64
	opts  RasterOptions
	fonts *FontSet
	z     *vector.Rasterizer

	path  Path
	st    rasterState
	stack []rasterState
}

var _ Surface = (*Raster)(nil)

// NewRaster creates a raster surface. Drawing happens at Width*Scale by
// Height*Scale and is downsampled by Image.
func NewRaster(opts RasterOptions) *Raster {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Fonts == nil {
		opts.Fonts = DefaultFontSet()
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width*opts.Scale, opts.Height*opts.Scale))
	if opts.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}

	return &Raster{
		img:   img,
		scale: float64(opts.Scale),
		opts:  opts,
		fonts: opts.Fonts,
		z:     vector.NewRasterizer(0, 0),
		st: rasterState{
			fill:      color.Black,
			stroke:    color.Black,
			lineWidth: 1,
			font:      MakeFont(10, "sans-serif"),
		},
	}
}

// Image returns the rendered image at the requested size.
func (r *Raster) Image() *image.RGBA {
	if r.opts.Scale == 1 {
		return r.img
	}
	out := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), r.img, r.img.Bounds(), draw.Src, nil)
	return out
}

// EncodePNG writes the rendered image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image())
}

func (r *Raster) Save() {
	r.stack = append(r.stack, r.st)
}

func (r *Raster) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.st = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Raster) BeginPath() { r.path.Reset() }
func (r *Raster) ClosePath() { r.path.Close() }

func (r *Raster) MoveTo(x, y float64) { r.path.MoveTo(x*r.scale, y*r.scale) }
func (r *Raster) LineTo(x, y float64) { r.path.LineTo(x*r.scale, y*r.scale) }

func (r *Raster) QuadraticCurveTo(cpx, cpy, x, y float64) {
	r.path.QuadTo(cpx*r.scale, cpy*r.scale, x*r.scale, y*r.scale)
}

func (r *Raster) Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool) {
	r.path.Arc(x*r.scale, y*r.scale, radius*r.scale, startAngle, endAngle, anticlockwise)
}

func (r *Raster) Fill() {
	if mask := r.fillCoverage(&r.path); mask != nil {
		r.paint(mask, r.st.fill)
	}
}

func (r *Raster) Stroke() {
	hw := r.st.lineWidth * r.scale / 2
	if hw <= 0 {
		return
	}
	var polys []Subpath
	for _, sp := range r.path.Flatten() {
		polys = append(polys, strokePolygons(sp, hw)...)
	}
	if mask := r.coverage(polys); mask != nil {
		r.paint(mask, r.st.stroke)
	}
}

func (r *Raster) Clip() {
	mask := r.fillCoverage(&r.path)
	if mask == nil {
		// Empty path: nothing is drawable until Restore.
		mask = image.NewAlpha(image.Rectangle{})
	}
	if r.st.clip != nil {
		applyClip(mask, r.st.clip)
	}
	r.st.clip = mask
}

func (r *Raster) FillRect(x, y, w, h float64) {
	var p Path
	p.MoveTo(x*r.scale, y*r.scale)
	p.LineTo((x+w)*r.scale, y*r.scale)
	p.LineTo((x+w)*r.scale, (y+h)*r.scale)
	p.LineTo(x*r.scale, (y+h)*r.scale)
	p.Close()
	if mask := r.fillCoverage(&p); mask != nil {
		r.paint(mask, r.st.fill)
	}
}

func (r *Raster) SetFillStyle(c color.Color)      { r.st.fill = c }
func (r *Raster) SetStrokeStyle(c color.Color)    { r.st.stroke = c }
func (r *Raster) SetLineWidth(w float64)          { r.st.lineWidth = w }
func (r *Raster) SetFont(f Font)                  { r.st.font = f }
func (r *Raster) SetTextBaseline(b TextBaseline)  { r.st.baseline = b }
func (r *Raster) SetTextAlign(a TextAlign)        { r.st.align = a }
func (r *Raster) MeasureText(text string) float64 { return r.fonts.Measure(r.st.font, text) }

func (r *Raster) FillText(text string, x, y float64) {
	f := r.st.font
	f.Size *= r.scale
	face, err := r.fonts.Face(f)
	if err != nil {
		return
	}

	bounds, advance := font.BoundString(face, text)
	m := face.Metrics()
	dotX := x*r.scale + alignOffset(r.st.align, fixedToFloat(advance))
	dotY := y*r.scale + baselineOffset(r.st.baseline, fixedToFloat(m.Ascent), fixedToFloat(m.Descent))
	dot := fixed.Point26_6{X: floatToFixed(dotX), Y: floatToFixed(dotY)}

	box := image.Rect(
		(bounds.Min.X + dot.X).Floor(), (bounds.Min.Y + dot.Y).Floor(),
		(bounds.Max.X + dot.X).Ceil(), (bounds.Max.Y + dot.Y).Ceil(),
	).Intersect(r.img.Bounds())
	if box.Empty() {
		return
	}

	mask := image.NewAlpha(box)
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  dot,
	}
	d.DrawString(text)
	r.paint(mask, r.st.fill)
}

// coverage rasterises closed polygons into an alpha mask covering only
// their bounding box. Returns nil when nothing is inside the image.
func (r *Raster) coverage(polys []Subpath) *image.Alpha {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sp := range polys {
		for _, p := range sp.Points {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return nil
	}
	return r.rasterize(minX, minY, maxX, maxY, func(ox, oy float64) {
		for _, sp := range polys {
			r.z.MoveTo(float32(sp.Points[0].X-ox), float32(sp.Points[0].Y-oy))
			for _, p := range sp.Points[1:] {
				r.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
			}
			r.z.ClosePath()
		}
	})
}

// fillCoverage rasterises p for filling. Quadratic segments are handed to
// the rasterizer as curves; the flattened path only supplies the bounds,
// padded by a pixel since the curve may bulge past its samples.
func (r *Raster) fillCoverage(p *Path) *image.Alpha {
	minX, minY, maxX, maxY, ok := p.Bounds()
	if !ok {
		return nil
	}
	return r.rasterize(minX-1, minY-1, maxX+1, maxY+1, func(ox, oy float64) {
		open := false
		for _, c := range p.cmds {
			a := c.pts[0]
			switch c.op {
			case opMove:
				if open {
					r.z.ClosePath()
				}
				r.z.MoveTo(float32(a.X-ox), float32(a.Y-oy))
				open = true
			case opLine:
				r.z.LineTo(float32(a.X-ox), float32(a.Y-oy))
			case opQuad:
				b := c.pts[1]
				r.z.QuadTo(float32(a.X-ox), float32(a.Y-oy), float32(b.X-ox), float32(b.Y-oy))
			case opClose:
				r.z.ClosePath()
			}
		}
		if open {
			r.z.ClosePath()
		}
	})
}

// rasterize runs emit against a rasterizer sized to the given bounds and
// returns the mask placed at those bounds, or nil when they miss the image.
func (r *Raster) rasterize(minX, minY, maxX, maxY float64, emit func(ox, oy float64)) *image.Alpha {
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1).Intersect(r.img.Bounds())
	if box.Empty() {
		return nil
	}

	w, h := box.Dx(), box.Dy()
	r.z.Reset(w, h)
	emit(float64(box.Min.X), float64(box.Min.Y))

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	mask.Rect = box
	return mask
}

// paint composites c through mask (and the active clip) onto the image.
func (r *Raster) paint(mask *image.Alpha, c color.Color) {
	if r.st.clip != nil {
		applyClip(mask, r.st.clip)
	}
	draw.DrawMask(r.img, mask.Rect, image.NewUniform(c), image.Point{}, mask, mask.Rect.Min, draw.Over)
}

func applyClip(mask, clip *image.Alpha) {
	b := mask.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := mask.PixOffset(x, y)
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(clip.AlphaAt(x, y).A) / 255)
		}
	}
}

// strokePolygons expands a polyline into segment quads plus round joins.
// Every polygon is emitted with the same orientation so overlaps add up
// instead of cancelling in the rasteriser.
func strokePolygons(sp Subpath, hw float64) []Subpath {
	pts := sp.Points
	if sp.Closed && len(pts) > 2 {
		pts = append(append([]Point(nil), pts...), pts[0])
	}

	var out []Subpath
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l < 1e-9 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		out = append(out, oriented([]Point{
			{a.X + nx, a.Y + ny},
			{b.X + nx, b.Y + ny},
			{b.X - nx, b.Y - ny},
			{a.X - nx, a.Y - ny},
		}))
	}

	// Joins only where two segments meet.
	for i := 1; i < len(pts)-1; i++ {
		out = append(out, oriented(disc(pts[i], hw)))
	}
	if sp.Closed && len(pts) > 2 {
		out = append(out, oriented(disc(pts[0], hw)))
	}
	return out
}

func disc(c Point, r float64) []Point {
	const n = 12
	pts := make([]Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	return pts
}

func oriented(pts []Point) Subpath {
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return Subpath{Points: pts, Closed: true}
}
