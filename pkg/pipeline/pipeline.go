// Package pipeline runs images through detection, optional padding and the
// background-removal service, one at a time or as a batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/menta2k/bg-remover/internal/utils"
	"github.com/menta2k/bg-remover/pkg/analyzer"
	"github.com/menta2k/bg-remover/pkg/client"
	"github.com/menta2k/bg-remover/pkg/detection"
	"github.com/menta2k/bg-remover/pkg/padder"
	"github.com/menta2k/bg-remover/pkg/processing"
	"github.com/menta2k/bg-remover/pkg/types"
	"github.com/menta2k/bg-remover/pkg/vectorizer"
)

// ErrNoRemover is returned by New when no background remover is supplied.
var ErrNoRemover = errors.New("pipeline: background remover is required")

// Options controls what the pipeline does with each image. Canvas is also the
// output size requested from the service; a zero Canvas means 4500x5400 and a
// zero Anchor means padder.NearTop.
type Options struct {
	SampleSize int
	Pad        bool
	Canvas     types.CanvasSpec
	Anchor     padder.Anchor
	OutputDir  string
	PaddedDir  string
	Format     string
	Suffix     string
	Quality    int
}

// DefaultCanvas is the canvas and output size used when none is set.
var DefaultCanvas = types.CanvasSpec{Width: 4500, Height: 5400}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		SampleSize: detection.DefaultSampleSize,
		Canvas:     DefaultCanvas,
		Anchor:     padder.NearTop,
		OutputDir:  "./bgone-img",
		Format:     "png",
		Quality:    90,
	}
}

// Item is the outcome of one image.
type Item struct {
	Source     string             `json:"source"`
	Output     string             `json:"output,omitempty"`
	PaddedPath string             `json:"padded_path,omitempty"`
	Color      types.Color        `json:"color"`
	Info       analyzer.ImageInfo `json:"info"`
	Success    bool               `json:"success"`
	StatusCode int                `json:"status_code,omitempty"`
	Bytes      int                `json:"bytes,omitempty"`
	Message    string             `json:"message,omitempty"`
	Duration   time.Duration      `json:"duration"`
	Err        error              `json:"-"`
}

// Pipeline processes single images.
type Pipeline struct {
	opts      Options
	processor *processing.Processor
	analyzer  *analyzer.ImageAnalyzer
	detector  *detection.Detector
	padder    *padder.Padder
	remover   client.BackgroundRemover
	logger    hclog.Logger
}

// New creates a pipeline around remover.
func New(remover client.BackgroundRemover, opts Options, logger hclog.Logger) (*Pipeline, error) {
	if remover == nil {
		return nil, ErrNoRemover
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	opts = opts.WithDefaults()
	if opts.Format == "" {
		opts.Format = "png"
	}
	if opts.Quality <= 0 {
		opts.Quality = 90
	}
	if opts.Pad {
		if err := opts.Canvas.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", padder.ErrInvalidDimension, err)
		}
	}

	detector := detection.NewDetectorWithSampleSize(opts.SampleSize)
	detector.SetLogger(logger.Named("detector"))

	return &Pipeline{
		opts:      opts,
		processor: processing.NewProcessor(),
		analyzer:  analyzer.New(),
		detector:  detector,
		padder:    padder.NewWithAnchor(opts.Anchor),
		remover:   remover,
		logger:    logger,
	}, nil
}

// WithDefaults returns o with zero-valued sample size, canvas and anchor
// replaced by their defaults.
func (o Options) WithDefaults() Options {
	if o.SampleSize == 0 {
		o.SampleSize = detection.DefaultSampleSize
	}
	if o.Canvas == (types.CanvasSpec{}) {
		o.Canvas = DefaultCanvas
	}
	if o.Anchor == (padder.Anchor{}) {
		o.Anchor = padder.NearTop
	}
	return o
}

// Options returns the options the pipeline was built with.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Process runs one image through the pipeline. Failures are recorded on the
// returned Item rather than returned, so batches can continue.
func (p *Pipeline) Process(ctx context.Context, source string) Item {
	start := time.Now()
	item := p.process(ctx, source)
	item.Duration = time.Since(start)

	if item.Success {
		p.logger.Info("processed image", "source", source, "output", item.Output,
			"color", item.Color.Hex(), "size", utils.FormatFileSize(int64(item.Bytes)), "duration", item.Duration)
	} else {
		p.logger.Error("failed to process image", "source", source, "error", item.Message)
	}
	return item
}

func (p *Pipeline) process(ctx context.Context, source string) Item {
	item := Item{Source: source}
	fail := func(err error) Item {
		item.Err = err
		item.Message = err.Error()
		return item
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	img, format, err := p.processor.LoadImageWithFormat(source)
	if err != nil {
		return fail(fmt.Errorf("failed to load image: %w", err))
	}
	item.Info = p.analyzer.GetImageInfo(img, format)
	if err := p.analyzer.ValidateImage(img); err != nil {
		return fail(fmt.Errorf("image validation failed: %w", err))
	}
	p.logger.Debug("loaded image", "source", source, "info", item.Info.String())

	item.Color = p.detector.DetectBackgroundColor(img)
	p.logger.Debug("detected background", "source", source, "hex", item.Color.Hex(), "rgb", item.Color.Tuple())

	req := vectorizer.Request{
		Filename:     utils.SourceStem(source) + ".png",
		Background:   item.Color,
		OutputWidth:  p.opts.Canvas.Width,
		OutputHeight: p.opts.Canvas.Height,
	}

	upload := img
	if p.opts.Pad {
		padded, err := p.padder.Pad(img, item.Color, p.opts.Canvas)
		if err != nil {
			return fail(fmt.Errorf("failed to pad image: %w", err))
		}
		upload = padded

		if p.opts.PaddedDir != "" {
			path, err := p.savePadded(padded, source)
			if err != nil {
				return fail(err)
			}
			item.PaddedPath = path
		}
	}

	data, err := p.processor.EncodePNG(upload)
	if err != nil {
		return fail(err)
	}
	req.Image = data

	res := p.remover.RemoveBackground(ctx, req)
	item.StatusCode = res.StatusCode
	if !res.Success {
		item.Message = res.Message
		item.Err = res.Err
		if item.Err == nil {
			item.Err = errors.New(res.Message)
		}
		return item
	}

	if err := utils.EnsureDir(p.opts.OutputDir); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}
	out := utils.GenerateOutputFilename(source, p.opts.OutputDir, p.opts.Suffix, p.opts.Format)
	if err := p.processor.SaveBytes(res.Image, out, p.opts.Format, p.opts.Quality, true); err != nil {
		return fail(fmt.Errorf("failed to save result: %w", err))
	}

	item.Output = out
	item.Bytes = len(res.Image)
	if info, err := os.Stat(out); err == nil {
		item.Bytes = int(info.Size())
	}
	item.Success = true
	return item
}

func (p *Pipeline) savePadded(img image.Image, source string) (string, error) {
	if err := utils.EnsureDir(p.opts.PaddedDir); err != nil {
		return "", fmt.Errorf("failed to create padded directory: %w", err)
	}
	path := filepath.Join(p.opts.PaddedDir, utils.SourceStem(source)+"_padded.png")
	if err := p.processor.SaveImage(img, path, "png", p.opts.Quality, false); err != nil {
		return "", fmt.Errorf("failed to save padded image: %w", err)
	}
	p.logger.Debug("saved padded image", "path", path)
	return path, nil
}
