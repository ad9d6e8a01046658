package padder

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/bg-remover/pkg/types"
)

var (
	// ErrInvalidDimension is returned for a non-positive canvas or an empty source image.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidAnchor is returned when an anchor fraction lies outside [0, 1].
	ErrInvalidAnchor = errors.New("invalid anchor")
)

// Anchor places the fitted image inside the free canvas space. X and Y are
// fractions of the leftover width and height that go before the image.
type Anchor struct {
	X float64
	Y float64
}

// Common anchors
var (
	// NearTop centres horizontally and keeps 5% of the vertical slack above the image.
	NearTop = Anchor{X: 0.5, Y: 0.05}
	// Top centres horizontally and keeps 1% of the vertical slack above the image.
	Top    = Anchor{X: 0.5, Y: 0.01}
	Center = Anchor{X: 0.5, Y: 0.5}
)

// PadConfig holds configuration for padding
type PadConfig struct {
	Anchor Anchor
	Filter imaging.ResampleFilter
}

// Padder places images on a fixed-size canvas filled with a background colour.
type Padder struct {
	config PadConfig
}

// New creates a Padder anchored NearTop with Lanczos resampling
func New() *Padder {
	return &Padder{
		config: PadConfig{
			Anchor: NearTop,
			Filter: imaging.Lanczos,
		},
	}
}

// NewWithConfig creates a Padder with custom configuration
func NewWithConfig(config PadConfig) *Padder {
	if config.Filter.Kernel == nil && config.Filter.Support == 0 {
		config.Filter = imaging.Lanczos
	}
	return &Padder{config: config}
}

// NewWithAnchor creates a Padder using Lanczos resampling and the given anchor.
func NewWithAnchor(anchor Anchor) *Padder {
	return NewWithConfig(PadConfig{Anchor: anchor, Filter: imaging.Lanczos})
}

// Anchor returns the configured anchor.
func (p *Padder) Anchor() Anchor {
	return p.config.Anchor
}

// Pad returns a new canvas.Width×canvas.Height image filled with fill and
// containing img. The image is downscaled to fit if needed (never upscaled),
// centred per the anchor, and pasted without blending. img is not modified.
func (p *Padder) Pad(img image.Image, fill types.Color, canvas types.CanvasSpec) (*image.NRGBA, error) {
	if err := canvas.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimension, err)
	}
	if err := p.config.Anchor.validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", ErrInvalidDimension)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: source image is empty", ErrInvalidDimension)
	}

	fitted := img
	w, h := FitSize(bounds.Dx(), bounds.Dy(), canvas)
	if w != bounds.Dx() || h != bounds.Dy() {
		fitted = imaging.Resize(img, w, h, p.config.Filter)
	}

	x, y := Offset(w, h, canvas, p.config.Anchor)
	dst := imaging.New(canvas.Width, canvas.Height, fill)
	return imaging.Paste(dst, fitted, image.Pt(x, y)), nil
}

// FitSize returns the size of a srcW×srcH image scaled down by
// s = min(W/srcW, H/srcH, 1). The constrained axis matches the canvas exactly;
// the other is rounded and never below one pixel.
func FitSize(srcW, srcH int, canvas types.CanvasSpec) (int, int) {
	if srcW <= canvas.Width && srcH <= canvas.Height {
		return srcW, srcH
	}

	srcRatio := float64(srcW) / float64(srcH)
	dstRatio := float64(canvas.Width) / float64(canvas.Height)
	if srcRatio > dstRatio {
		h := int(math.Round(float64(srcH) * float64(canvas.Width) / float64(srcW)))
		return canvas.Width, max(1, h)
	}
	w := int(math.Round(float64(srcW) * float64(canvas.Height) / float64(srcH)))
	return max(1, w), canvas.Height
}

// Offset returns the top-left position of a w×h image on canvas. Each offset
// is anchor × gap rounded half to even.
func Offset(w, h int, canvas types.CanvasSpec, anchor Anchor) (int, int) {
	x := int(math.RoundToEven(anchor.X * float64(canvas.Width-w)))
	y := int(math.RoundToEven(anchor.Y * float64(canvas.Height-h)))
	return x, y
}

func (a Anchor) validate() error {
	if a.X < 0 || a.X > 1 || a.Y < 0 || a.Y > 1 || math.IsNaN(a.X) || math.IsNaN(a.Y) {
		return fmt.Errorf("%w: (%.3f, %.3f) must be within [0, 1]", ErrInvalidAnchor, a.X, a.Y)
	}
	return nil
}

// PadToCanvas pads img with the default NearTop anchor.
func PadToCanvas(img image.Image, fill types.Color, canvas types.CanvasSpec) (*image.NRGBA, error) {
	return New().Pad(img, fill, canvas)
}
