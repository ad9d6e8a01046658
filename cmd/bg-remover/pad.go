package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/bg-remover/pkg/detection"
	"github.com/menta2k/bg-remover/pkg/padder"
	"github.com/menta2k/bg-remover/pkg/processing"
	"github.com/menta2k/bg-remover/pkg/types"
)

func newPadCmd(g *globalOptions) *cobra.Command {
	var (
		width   int
		height  int
		anchorX float64
		anchorY float64
		fill    string
		quality int
	)

	cmd := &cobra.Command{
		Use:   "pad <image|url> <output>",
		Short: "Pad an image onto a fixed-size canvas without uploading it",
		Long: `Scale the image down to fit the canvas if needed (never up), then place it
on a canvas filled with the detected background colour or an explicit colour.
The output format follows the output file extension (png, jpg, webp).

Examples:
  bg-remover pad shirt.jpg shirt_padded.png
  bg-remover pad --width 1200 --height 1200 --anchor-y 0.5 --fill "#FFFFFF" mug.png mug_sq.jpg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, output := args[0], args[1]
			flags := cmd.Flags()
			if !flags.Changed("width") {
				width = g.cfg.Canvas.Width
			}
			if !flags.Changed("height") {
				height = g.cfg.Canvas.Height
			}
			if !flags.Changed("anchor-x") {
				anchorX = g.cfg.Canvas.AnchorX
			}
			if !flags.Changed("anchor-y") {
				anchorY = g.cfg.Canvas.AnchorY
			}

			processor := processing.NewProcessor()
			img, err := processor.LoadImageSmart(source)
			if err != nil {
				return err
			}

			var bg types.Color
			if strings.EqualFold(fill, "auto") {
				d := detection.NewDetectorWithSampleSize(g.cfg.Detection.SampleSize)
				d.SetLogger(g.logger.Named("detector"))
				bg = d.DetectBackgroundColor(img)
			} else if bg, err = types.ParseHex(fill); err != nil {
				return fmt.Errorf("invalid --fill: %w", err)
			}

			canvas := types.CanvasSpec{Width: width, Height: height}
			padded, err := padder.NewWithAnchor(padder.Anchor{X: anchorX, Y: anchorY}).Pad(img, bg, canvas)
			if err != nil {
				return err
			}

			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			if ext == "" {
				ext = "png"
			}
			if err := processor.SaveImage(padded, output, ext, quality, false); err != nil {
				return fmt.Errorf("failed to save %s: %w", output, err)
			}

			g.logger.Info("padded image", "source", source, "output", output, "canvas", canvas.String(), "fill", bg.Hex())
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, fill %s)\n", source, output, canvas, bg.Hex())
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 4500, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", 5400, "canvas height in pixels")
	cmd.Flags().Float64Var(&anchorX, "anchor-x", 0.5, "horizontal placement (0 left, 1 right)")
	cmd.Flags().Float64Var(&anchorY, "anchor-y", 0.05, "vertical placement (0 top, 1 bottom)")
	cmd.Flags().StringVar(&fill, "fill", "auto", `fill colour: "auto" or #RRGGBB`)
	cmd.Flags().IntVar(&quality, "quality", 92, "JPEG/WebP quality (1-100)")

	return cmd
}
