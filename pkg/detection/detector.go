package detection

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"image"
	"io"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/menta2k/bg-remover/pkg/processing"
	"github.com/menta2k/bg-remover/pkg/types"
)

// DefaultSampleSize is the edge length of the square sampled at each corner.
const DefaultSampleSize = 3

// topColors is how many colours are reported in the diagnostics.
const topColors = 3

var (
	errNilImage        = errors.New("image is nil")
	errEmptyImage      = errors.New("image has no pixels")
	errInvalidSampling = errors.New("sample size must be at least 1")
)

// CornerSample records how many pixels were collected from one corner.
type CornerSample struct {
	Corner types.Corner    `json:"corner"`
	Region image.Rectangle `json:"region"`
	Pixels int             `json:"pixels"`
}

// ColorCount is a colour together with how often it was sampled.
type ColorCount struct {
	Color types.Color `json:"color"`
	Count int         `json:"count"`
}

// Percentage returns the share of total represented by this colour.
func (c ColorCount) Percentage(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(c.Count) / float64(total) * 100
}

// Detection is the full outcome of sampling an image's corners.
type Detection struct {
	Color      types.Color    `json:"color"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	SampleSize int            `json:"sample_size"`
	Corners    []CornerSample `json:"corners"`
	Total      int            `json:"total"`
	// Frequencies lists every distinct colour, most frequent first. Ties keep
	// first-seen order.
	Frequencies []ColorCount `json:"frequencies"`
}

// Top returns at most n of the most frequent colours.
func (d *Detection) Top(n int) []ColorCount {
	if n > len(d.Frequencies) {
		n = len(d.Frequencies)
	}
	return d.Frequencies[:n]
}

// Detector infers a background colour by majority vote over corner pixels.
type Detector struct {
	sampleSize int
	logger     hclog.Logger
}

// NewDetector creates a detector using DefaultSampleSize.
func NewDetector() *Detector {
	return NewDetectorWithSampleSize(DefaultSampleSize)
}

// NewDetectorWithSampleSize creates a detector sampling sampleSize×sampleSize pixels per corner.
func NewDetectorWithSampleSize(sampleSize int) *Detector {
	return &Detector{
		sampleSize: sampleSize,
		logger:     hclog.NewNullLogger(),
	}
}

// SetLogger sets the logger used for diagnostics.
func (d *Detector) SetLogger(logger hclog.Logger) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	d.logger = logger
}

// SampleSize returns the configured per-corner sample size.
func (d *Detector) SampleSize() int {
	return d.sampleSize
}

// DetectBackgroundColor returns the most common corner colour of img. It never
// fails: any problem sampling the image yields types.White.
func (d *Detector) DetectBackgroundColor(img image.Image) types.Color {
	det, err := d.Detect(img)
	if err != nil {
		d.logger.Warn("corner analysis failed, falling back to white", "error", err)
		return types.White
	}
	return det.Color
}

// DetectFromBytes decodes data and detects its background colour. Undecodable
// data yields types.White.
func (d *Detector) DetectFromBytes(data []byte) types.Color {
	return d.DetectFromReader(bytes.NewReader(data))
}

// DetectFromReader decodes an image from r and detects its background colour.
// Undecodable data yields types.White.
func (d *Detector) DetectFromReader(r io.Reader) types.Color {
	img, err := processing.DecodeImage(r)
	if err != nil {
		d.logger.Warn("corner analysis failed, falling back to white", "error", err)
		return types.White
	}
	return d.DetectBackgroundColor(img)
}

// Detect samples the four corners of img and returns the winning colour with
// its diagnostics. Unlike DetectBackgroundColor it reports failures.
func (d *Detector) Detect(img image.Image) (det *Detection, err error) {
	// Some image.Image implementations panic on out-of-range access or
	// corrupt backing data.
	defer func() {
		if r := recover(); r != nil {
			det = nil
			err = fmt.Errorf("sampling corners: %v", r)
		}
	}()

	if img == nil {
		return nil, errNilImage
	}
	if d.sampleSize < 1 {
		return nil, fmt.Errorf("%w: got %d", errInvalidSampling, d.sampleSize)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errEmptyImage
	}

	width, height := bounds.Dx(), bounds.Dy()
	d.logger.Debug("analyzing corners", "width", width, "height", height, "sample_size", d.sampleSize)

	det = &Detection{
		Width:      width,
		Height:     height,
		SampleSize: d.sampleSize,
		Corners:    make([]CornerSample, 0, 4),
	}

	counts := make(map[types.Color]int)
	var order []types.Color

	for _, corner := range types.Corners() {
		coords := SampleCoordinates(corner, width, height, d.sampleSize)
		for _, pt := range coords {
			c := types.FromColor(img.At(bounds.Min.X+pt.X, bounds.Min.Y+pt.Y))
			if _, seen := counts[c]; !seen {
				order = append(order, c)
			}
			counts[c]++
		}
		det.Corners = append(det.Corners, CornerSample{
			Corner: corner,
			Region: CornerRegion(corner, width, height, d.sampleSize),
			Pixels: len(coords),
		})
		det.Total += len(coords)
		d.logger.Trace("sampled corner", "corner", corner.String(), "pixels", len(coords))
	}

	det.Frequencies = rankColors(order, counts)
	det.Color = det.Frequencies[0].Color

	d.logger.Debug("most common corner color",
		"color", det.Color.Hex(),
		"count", det.Frequencies[0].Count,
		"total", det.Total,
	)
	for i, cc := range det.Top(topColors) {
		d.logger.Debug("corner color rank",
			"rank", i+1,
			"color", cc.Color.Hex(),
			"rgb", cc.Color.Tuple(),
			"count", cc.Count,
			"percent", fmt.Sprintf("%.1f", cc.Percentage(det.Total)),
		)
	}

	return det, nil
}

// rankColors sorts colours by descending count. The sort is stable over the
// first-seen order so the earliest sampled colour wins a tie.
func rankColors(order []types.Color, counts map[types.Color]int) []ColorCount {
	ranked := make([]ColorCount, 0, len(order))
	for _, c := range order {
		ranked = append(ranked, ColorCount{Color: c, Count: counts[c]})
	}
	slices.SortStableFunc(ranked, func(a, b ColorCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return ranked
}

// DetectBackgroundColor is a convenience wrapper around a default detector
// with the given sample size.
func DetectBackgroundColor(img image.Image, sampleSize int) types.Color {
	return NewDetectorWithSampleSize(sampleSize).DetectBackgroundColor(img)
}
