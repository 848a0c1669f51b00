package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ha1tch/chartmarkers/pkg/canvas"
	"github.com/ha1tch/chartmarkers/pkg/marker"
	"github.com/ha1tch/chartmarkers/pkg/markerfile"
	"github.com/ha1tch/chartmarkers/pkg/overlay"
)

func init() {
	ChartCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	ChartCmd.Flags().String("format", markerfile.OutputPNG, "output format: png or svg")
	ChartCmd.Flags().Float64("font-size", 12, "label font size in px")
	ChartCmd.Flags().String("font-family", "Go", "label font family")
	ChartCmd.Flags().String("pointer", "", "pointer position as x,y")
	ChartCmd.Flags().Int("hover", -1, "marker id latched from a previous frame")
	RootCmd.AddCommand(ChartCmd)
}

var ChartCmd = &cobra.Command{
	Use:   "chart [chart-file] [-o output]",
	Short: "draw markers over a go-chart price line",
	Long:  "draw markers over a go-chart price line; without a file a synthetic price line with sample markers is used",
	Args:  cobra.MaximumNArgs(1),
	RunE:  drawChart,
}

func drawChart(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	pointer, err := cmd.Flags().GetString("pointer")
	if err != nil {
		return err
	}
	hover, err := cmd.Flags().GetInt("hover")
	if err != nil {
		return err
	}

	var c *markerfile.Chart
	if len(args) == 1 {
		if c, err = markerfile.LoadChart(args[0]); err != nil {
			return err
		}
	} else {
		c = sampleChart(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	}

	base := overlay.DefaultChartOptions()
	base.Width = settings.Width
	base.Height = settings.Height
	base.Format = settings.Format
	base.FontSize = settings.Font.Size
	base.FontFamily = settings.Font.Family
	if settings.Background != "" {
		bg, err := canvas.ParseColor(settings.Background)
		if err != nil {
			return errors.Wrap(err, "background")
		}
		base.Background = bg
	}

	o, err := c.Options(base)
	if err != nil {
		return err
	}
	if pointer != "" {
		var p canvas.Point
		if _, err := fmt.Sscanf(pointer, "%g,%g", &p.X, &p.Y); err != nil {
			return errors.Wrapf(err, "pointer %q", pointer)
		}
		o.Pointer = &p
	}
	if hover >= 0 {
		o.Previous = &marker.HoverResult{InternalID: hover}
	}

	var buf bytes.Buffer
	hit, err := overlay.RenderChart(&buf, o)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", output)
	}
	fmt.Fprintf(os.Stderr, "Written: %s\n", output)
	if hit != nil {
		fmt.Fprintf(os.Stderr, "Hovered: %d\n", hit.InternalID)
	}
	return nil
}

// sampleChart is a synthetic hour of prices with one marker of each shape.
func sampleChart(start time.Time) *markerfile.Chart {
	prices := markerfile.SyntheticPrices(start, time.Minute, 60)
	c := &markerfile.Chart{Title: "sample", Prices: prices}
	for i, s := range marker.Shapes {
		p := prices[5+i*12]
		cm := markerfile.ChartMarker{
			Time:  p.Time,
			Price: p.Price,
			Size:  20,
			Shape: s.String(),
			ID:    i + 1,
			Label: s.String(),
		}
		if s == marker.PnL {
			cm.Size = 0.6
			cm.Label = "+2.4%"
			cm.Color = "#26a69a"
		}
		c.Items = append(c.Items, cm)
	}
	return c
}
