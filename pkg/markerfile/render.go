package markerfile

import (
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
)

// Output formats for Render.
const (
	OutputPNG   = "png"
	OutputSVG   = "svg"
	OutputTrace = "trace"
)

// Options configures frame rendering. The size, background and font fill in
// whatever the frame leaves empty.
type Options struct {
	Format     string
	Scale      int
	Width      int
	Height     int
	Background string
	FontSize   float64
	FontFamily string
	Fonts      *canvas.FontSet
}

// DefaultOptions returns the raster defaults with the standard label font.
func DefaultOptions() Options {
	ro := canvas.DefaultRasterOptions()
	return Options{
		Format:     OutputPNG,
		Scale:      ro.Scale,
		Width:      ro.Width,
		Height:     ro.Height,
		Background: canvas.FormatColor(ro.Background),
		FontSize:   12,
		FontFamily: canvas.DefaultFontFamily,
	}
}

// resolved fills frame gaps from the options.
type resolved struct {
	width, height int
	background    color.Color
	fontSize      float64
	fontFamily    string
}

func resolve(f *Frame, opts Options) (resolved, error) {
	r := resolved{
		width:      f.Width,
		height:     f.Height,
		fontSize:   f.Font.Size,
		fontFamily: f.Font.Family,
	}
	if r.width <= 0 {
		r.width = opts.Width
	}
	if r.height <= 0 {
		r.height = opts.Height
	}
	if r.fontSize <= 0 {
		r.fontSize = opts.FontSize
	}
	if r.fontFamily == "" {
		r.fontFamily = opts.FontFamily
	}
	bg := f.Background
	if bg == "" {
		bg = opts.Background
	}
	if bg != "" {
		c, err := canvas.ParseColor(bg)
		if err != nil {
			return r, errors.Wrap(err, "background")
		}
		r.background = c
	}
	if r.width <= 0 || r.height <= 0 {
		return r, errors.Errorf("invalid canvas size %dx%d", r.width, r.height)
	}
	return r, nil
}

// Prepare builds a renderer holding the frame's snapshot and font.
func Prepare(f *Frame, opts Options) (*marker.Renderer, error) {
	r, _, err := prepare(f, opts)
	return r, err
}

func prepare(f *Frame, opts Options) (*marker.Renderer, resolved, error) {
	items, err := f.Markers()
	if err != nil {
		return nil, resolved{}, err
	}
	res, err := resolve(f, opts)
	if err != nil {
		return nil, res, err
	}
	r := marker.NewRenderer()
	r.SetParams(res.fontSize, res.fontFamily)
	r.SetData(items, f.Visible())
	return r, res, nil
}

// Rasterize draws a prepared frame at the frame's pixel size without
// supersampling and returns the image.
func Rasterize(f *Frame, r *marker.Renderer, hover marker.HoverID, opts Options) (*image.RGBA, error) {
	res, err := resolve(f, opts)
	if err != nil {
		return nil, err
	}
	s := canvas.NewRaster(canvas.RasterOptions{
		Width:      res.width,
		Height:     res.height,
		Scale:      1,
		Background: res.background,
		Fonts:      opts.Fonts,
	})
	r.Draw(s, hover)
	return s.Image(), nil
}

// HitTest resolves the marker under (x, y) for a frame, honouring the
// frame's latched hover. Only the items and visible range are used; hit
// areas do not depend on the canvas size, background or font.
func HitTest(f *Frame, x, y float64) (*marker.HoverResult, error) {
	items, err := f.Markers()
	if err != nil {
		return nil, err
	}
	r := marker.NewRenderer()
	r.SetData(items, f.Visible())
	return r.HitTest(x, y, f.Previous()), nil
}

// Render draws a frame and writes it to w. When the frame has a pointer the
// marker under it is hovered; otherwise the latched hover is drawn as is.
// The returned result is the hover used for drawing.
func Render(f *Frame, w io.Writer, opts Options) (*marker.HoverResult, error) {
	r, res, err := prepare(f, opts)
	if err != nil {
		return nil, err
	}

	hover := f.Previous()
	if f.Pointer != nil {
		hover = r.HitTest(f.Pointer.X, f.Pointer.Y, hover)
	}

	fields := logrus.Fields{"format": opts.Format, "items": len(f.Items), "font": r.Font().String()}
	if hover != nil {
		fields["hover"] = hover.InternalID
	}
	log.WithFields(fields).Debug("rendering frame")

	switch opts.Format {
	case OutputPNG, "":
		s := canvas.NewRaster(canvas.RasterOptions{
			Width:      res.width,
			Height:     res.height,
			Scale:      opts.Scale,
			Background: res.background,
			Fonts:      opts.Fonts,
		})
		r.Draw(s, hover.ID())
		if err := s.EncodePNG(w); err != nil {
			return nil, errors.Wrap(err, "encode png")
		}
	case OutputSVG:
		s := canvas.NewSVG(canvas.SVGOptions{
			Width:      res.width,
			Height:     res.height,
			Background: res.background,
			Fonts:      opts.Fonts,
		})
		r.Draw(s, hover.ID())
		if _, err := s.WriteTo(w); err != nil {
			return nil, errors.Wrap(err, "write svg")
		}
	case OutputTrace:
		s := canvas.NewRecorder()
		fonts := opts.Fonts
		if fonts == nil {
			fonts = canvas.DefaultFontSet()
		}
		s.Measure = fonts.Measure
		r.Draw(s, hover.ID())
		if _, err := s.WriteTo(w); err != nil {
			return nil, errors.Wrap(err, "write trace")
		}
	default:
		return nil, errors.Errorf("unknown output format %q", opts.Format)
	}
	return hover, nil
}
