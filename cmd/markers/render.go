package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ha1tch/chartmarkers/pkg/markerfile"
)

func init() {
	RenderCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	addRenderFlags(RenderCmd)
	RootCmd.AddCommand(RenderCmd)
}

// addRenderFlags declares the flags that override config keys.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", markerfile.OutputPNG, "output format: png, svg or trace")
	cmd.Flags().Int("scale", 2, "png supersampling factor")
	cmd.Flags().Float64("font-size", 12, "label font size in px")
	cmd.Flags().String("font-family", "Go", "label font family")
}

var RenderCmd = &cobra.Command{
	Use:   "render <frame> [-o output]",
	Short: "render a frame file to png, svg or a draw trace",
	Args:  cobra.ExactArgs(1),
	RunE:  render,
}

func render(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	f, err := markerfile.Load(args[0])
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	hover, err := markerfile.Render(f, &buf, settings.RenderOptions())
	if err != nil {
		return errors.Wrapf(err, "render %s", args[0])
	}

	if output == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", output)
	}

	fmt.Fprintf(os.Stderr, "Written: %s\n", output)
	if hover != nil {
		fmt.Fprintf(os.Stderr, "Hovered: %d\n", hover.InternalID)
	}
	return nil
}
