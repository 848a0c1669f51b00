package marker

import "github.com/ha1tch/chartmarkers/pkg/canvas"

// DefaultTextWidthCacheSize bounds the number of remembered label widths.
const DefaultTextWidthCacheSize = 50

// TextWidthCache memoises label widths by exact content for one font.
// Reset must be called whenever the font changes.
type TextWidthCache struct {
	maxSize int
	widths  map[string]float64
	order   []string // insertion order, oldest first
}

// NewTextWidthCache creates a cache holding at most maxSize widths.
func NewTextWidthCache(maxSize int) *TextWidthCache {
	if maxSize < 1 {
		maxSize = DefaultTextWidthCacheSize
	}
	return &TextWidthCache{
		maxSize: maxSize,
		widths:  make(map[string]float64, maxSize),
	}
}

// Measure returns the cached width of text, measuring it with m on a miss.
func (c *TextWidthCache) Measure(m canvas.TextMeasurer, text string) float64 {
	if w, ok := c.widths[text]; ok {
		return w
	}

	w := m.MeasureText(text)
	c.widths[text] = w
	c.order = append(c.order, text)
	if len(c.order) > c.maxSize {
		delete(c.widths, c.order[0])
		c.order = c.order[1:]
	}
	return w
}

// Reset forgets every width.
func (c *TextWidthCache) Reset() {
	c.widths = make(map[string]float64, c.maxSize)
	c.order = nil
}

// Len returns the number of cached widths.
func (c *TextWidthCache) Len() int {
	return len(c.widths)
}
