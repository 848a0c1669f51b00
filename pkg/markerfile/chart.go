package markerfile

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
	"github.com/ha1tch/chartmarkers/pkg/overlay"
)

// Chart is a price chart file: a price line plus markers in data
// coordinates, drawn through go-chart.
type Chart struct {
	Title  string        `json:"title,omitempty" yaml:"title,omitempty"`
	Width  int           `json:"width,omitempty" yaml:"width,omitempty"`
	Height int           `json:"height,omitempty" yaml:"height,omitempty"`
	Font   Font          `json:"font" yaml:"font"`
	Prices []PricePoint  `json:"prices" yaml:"prices"`
	Items  []ChartMarker `json:"markers" yaml:"markers"`
}

type PricePoint struct {
	Time  time.Time `json:"time" yaml:"time"`
	Price float64   `json:"price" yaml:"price"`
}

// ChartMarker is a marker placed by time and price.
type ChartMarker struct {
	Time       time.Time  `json:"time" yaml:"time"`
	Price      float64    `json:"price" yaml:"price"`
	Size       float64    `json:"size" yaml:"size"`
	Shape      string     `json:"shape" yaml:"shape"`
	Color      string     `json:"color,omitempty" yaml:"color,omitempty"`
	ID         int        `json:"id" yaml:"id"`
	ExternalID string     `json:"externalId,omitempty" yaml:"externalId,omitempty"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	End        *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
}

// ParseChart decodes a chart file.
func ParseChart(data []byte, format Format) (*Chart, error) {
	var c Chart
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &c)
	case FormatJSON:
		err = json.Unmarshal(data, &c)
	default:
		return nil, errors.Errorf("unknown chart format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s chart", format)
	}
	return &c, nil
}

// LoadChart reads a chart file, picking the format from its extension.
func LoadChart(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read chart")
	}
	c, err := ParseChart(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

// Options converts the file to chart options on top of base. Prices and
// markers are sorted by time.
func (c *Chart) Options(base overlay.ChartOptions) (overlay.ChartOptions, error) {
	o := base
	if c.Title != "" {
		o.Title = c.Title
	}
	if c.Width > 0 {
		o.Width = c.Width
	}
	if c.Height > 0 {
		o.Height = c.Height
	}
	if c.Font.Size > 0 {
		o.FontSize = c.Font.Size
	}
	if c.Font.Family != "" {
		o.FontFamily = c.Font.Family
	}

	prices := append([]PricePoint(nil), c.Prices...)
	sort.SliceStable(prices, func(i, j int) bool { return prices[i].Time.Before(prices[j].Time) })
	o.Times, o.Prices = nil, nil
	for _, p := range prices {
		o.Times = append(o.Times, p.Time)
		o.Prices = append(o.Prices, p.Price)
	}

	o.Markers = make([]overlay.Marker, 0, len(c.Items))
	for i, cm := range c.Items {
		shape, err := marker.ParseShape(cm.Shape)
		if err != nil {
			return o, errors.Wrapf(err, "marker %d", i)
		}
		m := overlay.Marker{
			Time:       cm.Time,
			Price:      cm.Price,
			Size:       cm.Size,
			Shape:      shape,
			ID:         cm.ID,
			ExternalID: cm.ExternalID,
			Label:      cm.Label,
			End:        cm.End,
		}
		if cm.Color != "" {
			col, err := canvas.ParseColor(cm.Color)
			if err != nil {
				return o, errors.Wrapf(err, "marker %d", i)
			}
			m.Color = col
		}
		o.Markers = append(o.Markers, m)
	}
	sort.SliceStable(o.Markers, func(i, j int) bool { return o.Markers[i].Time.Before(o.Markers[j].Time) })

	if err := overlay.NewSeries("markers", o.Markers).Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// SyntheticPrices returns n points of a smooth price line starting at
// start, one per step.
func SyntheticPrices(start time.Time, step time.Duration, n int) []PricePoint {
	out := make([]PricePoint, n)
	price := 100.0
	for i := range out {
		// deterministic zig-zag with drift
		switch i % 4 {
		case 0, 1:
			price += 1.5
		default:
			price -= 1
		}
		out[i] = PricePoint{Time: start.Add(time.Duration(i) * step), Price: price}
	}
	return out
}
