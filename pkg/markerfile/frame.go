// Package markerfile reads and writes marker frames and renders them.
//
// A frame file is a JSON or YAML snapshot of everything one renderer frame
// needs: canvas size, font, visible range, pointer position and items in
// pixel coordinates.
package markerfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
)

var log = logrus.WithField("component", "markerfile")

// Format is a frame file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file name; anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Frame is the file representation of one renderer frame.
type Frame struct {
	Width      int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height     int    `json:"height,omitempty" yaml:"height,omitempty"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
	Font       Font   `json:"font" yaml:"font"`

	// VisibleRange nil means every item is visible.
	VisibleRange *Range `json:"visibleRange,omitempty" yaml:"visibleRange,omitempty"`
	Pointer      *Point `json:"pointer,omitempty" yaml:"pointer,omitempty"`
	// Hover is the internal id latched by the previous frame.
	Hover *int `json:"hover,omitempty" yaml:"hover,omitempty"`

	Items []Item `json:"items" yaml:"items"`
}

type Font struct {
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Family string  `json:"family,omitempty" yaml:"family,omitempty"`
}

type Range struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Item is the file representation of a marker.
type Item struct {
	X          float64  `json:"x" yaml:"x"`
	Y          float64  `json:"y" yaml:"y"`
	Size       float64  `json:"size" yaml:"size"`
	Shape      string   `json:"shape" yaml:"shape"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty"`
	ID         int      `json:"id" yaml:"id"`
	ExternalID string   `json:"externalId,omitempty" yaml:"externalId,omitempty"`
	Text       *Text    `json:"text,omitempty" yaml:"text,omitempty"`
	EndCoord   *float64 `json:"endCoord,omitempty" yaml:"endCoord,omitempty"`
}

type Text struct {
	Content string  `json:"content" yaml:"content"`
	Y       float64 `json:"y" yaml:"y"`
}

// Parse decodes a frame.
func Parse(data []byte, format Format) (*Frame, error) {
	var f Frame
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		return nil, errors.Errorf("unknown frame format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s frame", format)
	}
	return &f, nil
}

// Load reads a frame file, picking the format from its extension.
func Load(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read frame")
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	log.WithFields(logrus.Fields{"path": path, "items": len(f.Items)}).Debug("frame loaded")
	return f, nil
}

// ToJSON encodes a frame as JSON.
func ToJSON(f *Frame, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(f, "", "  ")
	}
	return json.Marshal(f)
}

// ToYAML encodes a frame as YAML.
func ToYAML(f *Frame) ([]byte, error) {
	return yaml.Marshal(f)
}

// Markers converts the file items to renderer items. Shape names and colors
// are validated here so the renderer only ever sees known shapes.
func (f *Frame) Markers() ([]marker.Item, error) {
	items := make([]marker.Item, len(f.Items))
	seen := make(map[int]bool, len(f.Items))
	for i, fi := range f.Items {
		shape, err := marker.ParseShape(fi.Shape)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		if seen[fi.ID] {
			return nil, errors.Errorf("item %d: duplicate id %d", i, fi.ID)
		}
		seen[fi.ID] = true
		if fi.Size < 0 {
			return nil, errors.Errorf("item %d: negative size %v", i, fi.Size)
		}

		it := marker.Item{
			X:          fi.X,
			Y:          fi.Y,
			Size:       fi.Size,
			Shape:      shape,
			InternalID: fi.ID,
			ExternalID: fi.ExternalID,
			EndCoord:   fi.EndCoord,
		}
		if fi.Color != "" {
			c, err := canvas.ParseColor(fi.Color)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			it.Color = c
		}
		if fi.Text != nil {
			it.Text = &marker.Text{Content: fi.Text.Content, Y: fi.Text.Y}
		}
		items[i] = it
	}
	return items, nil
}

// Visible returns the renderer range for the frame.
func (f *Frame) Visible() *marker.VisibleRange {
	if f.VisibleRange == nil {
		return &marker.VisibleRange{From: 0, To: len(f.Items)}
	}
	return &marker.VisibleRange{From: f.VisibleRange.From, To: f.VisibleRange.To}
}

// Previous returns the latched hover as a hit-test input.
func (f *Frame) Previous() *marker.HoverResult {
	if f.Hover == nil {
		return nil
	}
	return &marker.HoverResult{InternalID: *f.Hover}
}
