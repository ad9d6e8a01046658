// Package bgremover prepares product photos for a background-removal service.
//
// It infers the background colour of a photo by sampling its four corners,
// optionally pads the photo onto a fixed-size canvas filled with that colour,
// and uploads the result to vectorizer.ai with the colour mapped to
// transparent.
//
// Basic usage:
//
//	remover, err := bgremover.NewWithConfig(bgremover.Options{
//		Credentials: vectorizer.Credentials{APIKey: key, APISecret: secret},
//		Pipeline:    pipeline.DefaultOptions(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	summary, err := remover.ProcessDirectory(ctx, "./img")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d/%d succeeded\n", summary.Successful, summary.Total)
//
// Detection and padding work without credentials:
//
//	r := bgremover.New()
//	img, _ := r.LoadImage("photo.jpg")
//	bg := r.DetectBackgroundColor(img)
//	padded, _ := r.PadToCanvas(img, bg, types.CanvasSpec{Width: 4500, Height: 5400})
//
// The package consists of these components:
//
//  1. Detection (pkg/detection): corner sampling and majority vote
//  2. Padder (pkg/padder): fit-inside downscale and anchored placement
//  3. Vectorizer (pkg/vectorizer): the service client
//  4. Pipeline (pkg/pipeline): per-image processing and batches
package bgremover

import (
	"context"
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"

	"github.com/menta2k/bg-remover/pkg/analyzer"
	"github.com/menta2k/bg-remover/pkg/client"
	"github.com/menta2k/bg-remover/pkg/detection"
	"github.com/menta2k/bg-remover/pkg/padder"
	"github.com/menta2k/bg-remover/pkg/pipeline"
	"github.com/menta2k/bg-remover/pkg/processing"
	"github.com/menta2k/bg-remover/pkg/types"
	"github.com/menta2k/bg-remover/pkg/vectorizer"
)

// Version of the bg-remover library
const Version = "1.0.0"

// Options configures a BgRemover.
type Options struct {
	Pipeline    pipeline.Options
	Credentials vectorizer.Credentials
	Service     vectorizer.Options
	Concurrency int
	Logger      hclog.Logger
}

// BgRemover provides a high-level interface over detection, padding and
// background removal
type BgRemover struct {
	opts      Options
	processor *processing.Processor
	analyzer  *analyzer.ImageAnalyzer
	detector  *detection.Detector
	padder    *padder.Padder
	remover   client.BackgroundRemover
	pipeline  *pipeline.Pipeline
	logger    hclog.Logger
}

// New creates a BgRemover with default options and no service client. Only
// local operations are available.
func New() *BgRemover {
	r, _ := build(nil, Options{Pipeline: pipeline.DefaultOptions()})
	return r
}

// NewWithConfig creates a BgRemover talking to the vectorizer service.
// Missing credentials fail here with vectorizer.ErrMissingCredentials.
func NewWithConfig(opts Options) (*BgRemover, error) {
	if opts.Service.Logger == nil && opts.Logger != nil {
		opts.Service.Logger = opts.Logger.Named("vectorizer")
	}
	c, err := vectorizer.NewClient(opts.Credentials, opts.Service)
	if err != nil {
		return nil, err
	}
	return build(c, opts)
}

// NewWithRemover creates a BgRemover around any BackgroundRemover.
func NewWithRemover(remover client.BackgroundRemover, opts Options) (*BgRemover, error) {
	if remover == nil {
		return nil, pipeline.ErrNoRemover
	}
	return build(remover, opts)
}

func build(remover client.BackgroundRemover, opts Options) (*BgRemover, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	opts.Pipeline = opts.Pipeline.WithDefaults()
	detector := detection.NewDetectorWithSampleSize(opts.Pipeline.SampleSize)
	detector.SetLogger(logger.Named("detector"))

	r := &BgRemover{
		opts:      opts,
		processor: processing.NewProcessor(),
		analyzer:  analyzer.New(),
		detector:  detector,
		padder:    padder.NewWithAnchor(opts.Pipeline.Anchor),
		remover:   remover,
		logger:    logger,
	}

	if remover != nil {
		p, err := pipeline.New(remover, opts.Pipeline, logger.Named("pipeline"))
		if err != nil {
			return nil, err
		}
		r.pipeline = p
	}
	return r, nil
}

// LoadImage loads an image from a file path or http(s) URL
func (r *BgRemover) LoadImage(source string) (image.Image, error) {
	return r.processor.LoadImageSmart(source)
}

// GetImageInfo returns basic information about an image
func (r *BgRemover) GetImageInfo(img image.Image, format string) analyzer.ImageInfo {
	return r.analyzer.GetImageInfo(img, format)
}

// DetectBackgroundColor returns the majority corner colour, or white when
// detection fails.
func (r *BgRemover) DetectBackgroundColor(img image.Image) types.Color {
	return r.detector.DetectBackgroundColor(img)
}

// Detect returns the detection with its per-corner diagnostics.
func (r *BgRemover) Detect(img image.Image) (*detection.Detection, error) {
	return r.detector.Detect(img)
}

// PadToCanvas places img on a canvas filled with fill using the configured anchor.
func (r *BgRemover) PadToCanvas(img image.Image, fill types.Color, canvas types.CanvasSpec) (*image.NRGBA, error) {
	return r.padder.Pad(img, fill, canvas)
}

// RemoveBackground detects the background of img and uploads it as PNG,
// requesting the configured canvas as output size. Failures are reported
// through the result.
func (r *BgRemover) RemoveBackground(ctx context.Context, img image.Image, filename string) vectorizer.Result {
	if r.remover == nil {
		return vectorizer.Result{Message: vectorizer.ErrMissingCredentials.Error(), Err: vectorizer.ErrMissingCredentials}
	}
	data, err := r.processor.EncodePNG(img)
	if err != nil {
		return vectorizer.Result{Message: fmt.Sprintf("Exception: %v", err), Err: err}
	}
	canvas := r.opts.Pipeline.Canvas
	return r.remover.RemoveBackground(ctx, vectorizer.Request{
		Image:        data,
		Filename:     filename,
		Background:   r.DetectBackgroundColor(img),
		OutputWidth:  canvas.Width,
		OutputHeight: canvas.Height,
	})
}

// ProcessImageFile runs one file or URL through the full pipeline.
func (r *BgRemover) ProcessImageFile(ctx context.Context, source string) (pipeline.Item, error) {
	if r.pipeline == nil {
		return pipeline.Item{}, vectorizer.ErrMissingCredentials
	}
	return r.pipeline.Process(ctx, source), nil
}

// ProcessFiles runs sources through the pipeline with the configured concurrency.
func (r *BgRemover) ProcessFiles(ctx context.Context, sources []string) (*pipeline.BatchSummary, error) {
	if r.pipeline == nil {
		return nil, vectorizer.ErrMissingCredentials
	}
	return r.batch().ProcessFiles(ctx, sources), nil
}

// ProcessDirectory processes every supported image directly inside dir.
func (r *BgRemover) ProcessDirectory(ctx context.Context, dir string) (*pipeline.BatchSummary, error) {
	if r.pipeline == nil {
		return nil, vectorizer.ErrMissingCredentials
	}
	return r.batch().ProcessDirectory(ctx, dir)
}

func (r *BgRemover) batch() *pipeline.BatchProcessor {
	return pipeline.NewBatchProcessor(r.pipeline, r.opts.Concurrency, r.logger.Named("batch"))
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
