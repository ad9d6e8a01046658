package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	bgremover "github.com/menta2k/bg-remover"
	"github.com/menta2k/bg-remover/internal/utils"
	"github.com/menta2k/bg-remover/pkg/pipeline"
)

func newProcessCmd(g *globalOptions) *cobra.Command {
	var (
		inputDir    string
		outputDir   string
		paddedDir   string
		format      string
		suffix      string
		pad         bool
		width       int
		height      int
		anchorY     float64
		sampleSize  int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "process [image|url ...]",
		Short: "Detect, optionally pad, and remove the background of images",
		Long: `Process every JPEG, PNG and WebP image in the input directory, or the
images and URLs given as arguments. Each image's background colour is detected
from its corners and sent to vectorizer.ai to be made transparent. Results are
written to the output directory as <name><suffix>.png.

One failing image never stops the batch; a summary is printed at the end.

Examples:
  # Process ./img into ./bgone-img
  bg-remover process

  # Pad onto a 4500x5400 canvas first, keeping the padded files
  bg-remover process --pad --padded-dir ./padded

  # Process two files with four uploads in flight
  bg-remover process -j 4 shirt.jpg mug.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input.Dir = inputDir
			}
			if flags.Changed("output") {
				cfg.Output.Dir = outputDir
			}
			if flags.Changed("padded-dir") {
				cfg.Output.PaddedDir = paddedDir
			}
			if flags.Changed("format") {
				cfg.Output.Format = strings.ToLower(format)
			}
			if flags.Changed("suffix") {
				cfg.Output.Suffix = suffix
			}
			if flags.Changed("pad") {
				cfg.Canvas.Pad = pad
			}
			if flags.Changed("width") {
				cfg.Canvas.Width = width
			}
			if flags.Changed("height") {
				cfg.Canvas.Height = height
			}
			if flags.Changed("anchor-y") {
				cfg.Canvas.AnchorY = anchorY
			}
			if flags.Changed("sample-size") {
				cfg.Detection.SampleSize = sampleSize
			}
			if flags.Changed("concurrency") {
				cfg.Concurrency = concurrency
			}

			if err := g.validate(); err != nil {
				return err
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}

			svc := cfg.VectorizerOptions()
			svc.Logger = g.logger.Named("vectorizer")
			remover, err := bgremover.NewWithConfig(bgremover.Options{
				Pipeline: pipeline.Options{
					SampleSize: cfg.Detection.SampleSize,
					Pad:        cfg.Canvas.Pad,
					Canvas:     cfg.CanvasSpec(),
					Anchor:     cfg.Anchor(),
					OutputDir:  cfg.Output.Dir,
					PaddedDir:  cfg.Output.PaddedDir,
					Format:     cfg.Output.Format,
					Suffix:     cfg.Output.Suffix,
				},
				Credentials: cfg.VectorizerCredentials(),
				Service:     svc,
				Concurrency: cfg.Concurrency,
				Logger:      g.logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var summary *pipeline.BatchSummary
			if len(args) > 0 {
				summary, err = remover.ProcessFiles(ctx, args)
			} else {
				summary, err = remover.ProcessDirectory(ctx, cfg.Input.Dir)
			}
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "./img", "input directory")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./bgone-img", "output directory")
	cmd.Flags().StringVar(&paddedDir, "padded-dir", "", "save padded intermediates here")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "output format (png, webp)")
	cmd.Flags().StringVar(&suffix, "suffix", "", "suffix appended to output names")
	cmd.Flags().BoolVar(&pad, "pad", false, "pad onto the canvas before upload")
	cmd.Flags().IntVar(&width, "width", 4500, "canvas and output width in pixels")
	cmd.Flags().IntVar(&height, "height", 5400, "canvas and output height in pixels")
	cmd.Flags().Float64Var(&anchorY, "anchor-y", 0.05, "vertical placement on the canvas (0 top, 1 bottom)")
	cmd.Flags().IntVarP(&sampleSize, "sample-size", "s", 3, "corner sample size in pixels (1-10)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 1, "images processed in parallel")

	return cmd
}

func printSummary(cmd *cobra.Command, s *pipeline.BatchSummary) {
	out := cmd.OutOrStdout()
	rule := strings.Repeat("=", 60)

	for _, it := range s.Items {
		if it.Success {
			fmt.Fprintf(out, "ok    %s -> %s (%s, bg %s)\n", it.Source, it.Output, utils.FormatFileSize(int64(it.Bytes)), it.Color.Hex())
		} else {
			fmt.Fprintf(out, "FAIL  %s: %s\n", it.Source, it.Message)
		}
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "PROCESSING SUMMARY")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "   Successful: %d\n", s.Successful)
	fmt.Fprintf(out, "   Failed: %d\n", s.Failed)
	fmt.Fprintf(out, "   Total processed: %d\n", s.Total)
	if s.Successful > 0 {
		fmt.Fprintf(out, "   Success rate: %.1f%%\n", s.SuccessRate())
	}
	fmt.Fprintln(out, rule)
}
