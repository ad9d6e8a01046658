package main

import (
	"encoding/json"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/bg-remover/pkg/analyzer"
	"github.com/menta2k/bg-remover/pkg/detection"
	"github.com/menta2k/bg-remover/pkg/processing"
	"github.com/menta2k/bg-remover/pkg/types"
)

// detectReport is the JSON form of the detect command.
type detectReport struct {
	Source string                 `json:"source"`
	Hex    string                 `json:"hex"`
	RGB    [3]uint8               `json:"rgb"`
	Info   analyzer.ImageInfo     `json:"info"`
	Top    []detection.ColorCount `json:"top"`
	Total  int                    `json:"total"`
}

func newDetectCmd(g *globalOptions) *cobra.Command {
	var (
		sampleSize int
		overlay    string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "detect <image|url>",
		Short: "Detect the background colour from the image corners",
		Long: `Sample a square of pixels from each corner of the image and report the most
common colour. Images that cannot be read report white (#FFFFFF).

Examples:
  bg-remover detect shirt.jpg
  bg-remover detect --sample-size 5 --overlay corners.png shirt.jpg
  bg-remover detect --json https://example.com/mug.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if !cmd.Flags().Changed("sample-size") {
				sampleSize = g.cfg.Detection.SampleSize
			}

			detector := detection.NewDetectorWithSampleSize(sampleSize)
			detector.SetLogger(g.logger.Named("detector"))
			processor := processing.NewProcessor()
			out := cmd.OutOrStdout()

			img, format, err := processor.LoadImageWithFormat(source)
			if err != nil {
				g.logger.Warn("could not load image, using fallback", "source", source, "error", err)
				fmt.Fprintf(out, "%s  %s  (fallback)\n", types.White.Hex(), types.White.Tuple())
				return nil
			}

			info := analyzer.New().GetImageInfo(img, format)
			bg := types.White
			det, derr := detector.Detect(img)
			if derr != nil {
				g.logger.Warn("corner analysis failed, falling back to white", "error", derr)
			} else {
				bg = det.Color
			}

			if asJSON {
				report := detectReport{
					Source: source,
					Hex:    bg.Hex(),
					RGB:    [3]uint8{bg.R, bg.G, bg.B},
					Info:   info,
				}
				if derr == nil {
					report.Top = det.Top(3)
					report.Total = det.Total
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "Image: %s\n", info)
				fmt.Fprintf(out, "Background: %s  RGB%s\n", bg.Hex(), bg.Tuple())
				if derr == nil {
					fmt.Fprintf(out, "Top colours (%d samples):\n", det.Total)
					for i, cc := range det.Top(3) {
						fmt.Fprintf(out, "  %d. %s RGB%s - %d pixels (%.1f%%)\n",
							i+1, cc.Color.Hex(), cc.Color.Tuple(), cc.Count, cc.Percentage(det.Total))
					}
				}
			}

			if overlay != "" && derr == nil {
				regions := make([]image.Rectangle, 0, len(det.Corners))
				for _, cs := range det.Corners {
					regions = append(regions, cs.Region)
				}
				dbg := processor.CreateCornerOverlay(img, regions, bg)
				ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(overlay)), ".")
				if ext == "" {
					ext = "png"
				}
				if err := processor.SaveImage(dbg, overlay, ext, 92, false); err != nil {
					return fmt.Errorf("failed to save overlay: %w", err)
				}
				g.logger.Info("wrote overlay", "path", overlay)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&sampleSize, "sample-size", "s", 3, "corner sample size in pixels")
	cmd.Flags().StringVar(&overlay, "overlay", "", "write an image marking the sampled corners")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}
