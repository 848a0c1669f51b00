package canvas

import (
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFontFamily is used when no family is configured.
const DefaultFontFamily = "Go"

// Font describes a text font as a pixel size and a CSS family list.
type Font struct {
	Size   float64
	Family string
}

// MakeFont builds the font descriptor for a size and family.
func MakeFont(size float64, family string) Font {
	if family == "" {
		family = DefaultFontFamily
	}
	return Font{Size: size, Family: family}
}

// String returns the CSS shorthand, e.g. "12px Go".
func (f Font) String() string {
	return strconv.FormatFloat(f.Size, 'f', -1, 64) + "px " + f.Family
}

// Families registered in every FontSet. Keys are lower case.
var builtinFonts = map[string][]byte{
	"go":         goregular.TTF,
	"go regular": goregular.TTF,
	"go medium":  gomedium.TTF,
	"go bold":    gobold.TTF,
	"go italic":  goitalic.TTF,
	"go mono":    gomono.TTF,
	"monospace":  gomono.TTF,
	"sans-serif": goregular.TTF,
}

type faceKey struct {
	family string
	size   float64
}

// FontSet resolves font descriptors to font faces and caches them.
// Lookups are safe for concurrent use; the returned faces are not.
type FontSet struct {
	mu     sync.Mutex
	parsed map[string]*opentype.Font
	faces  map[faceKey]font.Face
	dpi    float64
}

// NewFontSet returns a FontSet rendering at 72 DPI, so one point is one pixel.
func NewFontSet() *FontSet {
	return &FontSet{
		parsed: make(map[string]*opentype.Font),
		faces:  make(map[faceKey]font.Face),
		dpi:    72,
	}
}

var (
	defaultFontSet     *FontSet
	defaultFontSetOnce sync.Once
)

// DefaultFontSet returns a process-wide FontSet.
func DefaultFontSet() *FontSet {
	defaultFontSetOnce.Do(func() {
		defaultFontSet = NewFontSet()
	})
	return defaultFontSet
}

// ResolveFamily picks the first family of a CSS family list that has a
// built-in font, falling back to Go regular.
func ResolveFamily(family string) string {
	for _, name := range strings.Split(family, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if _, ok := builtinFonts[name]; ok {
			return name
		}
	}
	return "go"
}

// ResolveTTF returns the raw font data a family list resolves to.
func ResolveTTF(family string) []byte {
	return builtinFonts[ResolveFamily(family)]
}

// Face returns a cached face for f. Sizes below one pixel are raised to one.
func (fs *FontSet) Face(f Font) (font.Face, error) {
	size := f.Size
	if size < 1 {
		size = 1
	}
	name := ResolveFamily(f.Family)
	key := faceKey{family: name, size: size}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if face, ok := fs.faces[key]; ok {
		return face, nil
	}

	parsed, ok := fs.parsed[name]
	if !ok {
		var err error
		parsed, err = opentype.Parse(builtinFonts[name])
		if err != nil {
			return nil, errors.Wrapf(err, "parse font %s", name)
		}
		fs.parsed[name] = parsed
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     fs.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create face %s", f)
	}
	fs.faces[key] = face
	return face, nil
}

// Measure returns the advance width of text set in f.
func (fs *FontSet) Measure(f Font, text string) float64 {
	face, err := fs.Face(f)
	if err != nil {
		// Embedded fonts always parse; estimate rather than fail a frame.
		return float64(len(text)) * f.Size * 0.6
	}
	return fixedToFloat(font.MeasureString(face, text))
}

// Metrics returns ascent and descent of f in pixels.
func (fs *FontSet) Metrics(f Font) (ascent, descent float64) {
	face, err := fs.Face(f)
	if err != nil {
		return f.Size * 0.8, f.Size * 0.2
	}
	m := face.Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// baselineOffset returns the distance to add to y so that text drawn at the
// alphabetic baseline lands on the requested baseline.
func baselineOffset(b TextBaseline, ascent, descent float64) float64 {
	switch b {
	case BaselineTop:
		return ascent
	case BaselineMiddle:
		return (ascent - descent) / 2
	case BaselineBottom:
		return -descent
	}
	return 0
}

// alignOffset returns the distance to add to x for the requested alignment.
func alignOffset(a TextAlign, width float64) float64 {
	switch a {
	case AlignCenter:
		return -width / 2
	case AlignRight:
		return -width
	}
	return 0
}
