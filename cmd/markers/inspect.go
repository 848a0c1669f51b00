package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ha1tch/chartmarkers/pkg/marker"
	"github.com/ha1tch/chartmarkers/pkg/markerfile"
)

func init() {
	ConvertCmd.Flags().StringP("output", "o", "", "output file, format from its extension")
	ConvertCmd.Flags().Bool("pretty", false, "indent json output")
	_ = ConvertCmd.MarkFlagRequired("output")

	RootCmd.AddCommand(HitTestCmd, InfoCmd, ValidateCmd, ConvertCmd)
}

var HitTestCmd = &cobra.Command{
	Use:   "hittest <frame> <x> <y>",
	Short: "print the marker under a pixel position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := markerfile.Load(args[0])
		if err != nil {
			return err
		}
		x, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return errors.Wrap(err, "x")
		}
		y, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return errors.Wrap(err, "y")
		}

		hit, err := markerfile.HitTest(f, x, y)
		if err != nil {
			return err
		}
		printHit(cmd.OutOrStdout(), hit)
		return nil
	},
}

func printHit(w io.Writer, hit *marker.HoverResult) {
	if hit == nil {
		fmt.Fprintln(w, "none")
		return
	}
	if hit.ExternalID != "" {
		fmt.Fprintf(w, "%d %s\n", hit.InternalID, hit.ExternalID)
		return
	}
	fmt.Fprintf(w, "%d\n", hit.InternalID)
}

var InfoCmd = &cobra.Command{
	Use:   "info <frame>",
	Short: "show frame information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := markerfile.Load(args[0])
		if err != nil {
			return err
		}
		return printInfo(cmd.OutOrStdout(), f)
	},
}

func printInfo(w io.Writer, f *markerfile.Frame) error {
	items, err := f.Markers()
	if err != nil {
		return err
	}

	counts := make(map[marker.Shape]int)
	labels := 0
	for _, it := range items {
		counts[it.Shape]++
		if it.Text != nil {
			labels++
		}
	}
	vis := f.Visible()

	fmt.Fprintf(w, "Size:    %dx%d\n", f.Width, f.Height)
	fmt.Fprintf(w, "Items:   %d\n", len(items))
	fmt.Fprintf(w, "Visible: [%d, %d)\n", vis.From, vis.To)
	fmt.Fprintf(w, "Labels:  %d\n", labels)
	if f.Hover != nil {
		fmt.Fprintf(w, "Hover:   %d\n", *f.Hover)
	}
	if f.Pointer != nil {
		fmt.Fprintf(w, "Pointer: %g,%g\n", f.Pointer.X, f.Pointer.Y)
	}
	fmt.Fprintln(w)

	var parts []string
	for _, s := range marker.Shapes {
		parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
	}
	fmt.Fprintf(w, "Shapes:  %s\n", strings.Join(parts, " "))
	return nil
}

var ValidateCmd = &cobra.Command{
	Use:   "validate <frame>...",
	Short: "check frame files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			f, err := markerfile.Load(path)
			if err == nil {
				_, err = f.Markers()
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d items)\n", path, len(f.Items))
		}
		if failed > 0 {
			return errors.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	},
}

var ConvertCmd = &cobra.Command{
	Use:   "convert <frame> -o <output>",
	Short: "convert a frame between json and yaml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		pretty, err := cmd.Flags().GetBool("pretty")
		if err != nil {
			return err
		}

		f, err := markerfile.Load(args[0])
		if err != nil {
			return err
		}
		if _, err := f.Markers(); err != nil {
			return err
		}

		var data []byte
		switch markerfile.FormatFor(output) {
		case markerfile.FormatYAML:
			data, err = markerfile.ToYAML(f)
		default:
			data, err = markerfile.ToJSON(f, pretty)
		}
		if err != nil {
			return errors.Wrap(err, "encode")
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", output)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Written: %s (%s)\n", output, filepath.Ext(output))
		return nil
	},
}
