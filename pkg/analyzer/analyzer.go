package analyzer

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// ImageAnalyzer reports basic facts about decoded images
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string
	MinImageSize     int
	MaxImageSize     int // 0 means no limit
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"jpeg", "png", "webp", "gif", "bmp", "tiff"},
			MinImageSize:     1,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
	Format      string  `json:"format,omitempty"`
	Mode        string  `json:"mode"`
	HasAlpha    bool    `json:"has_alpha"`
}

// String renders the info the way it is printed by the CLI.
func (i ImageInfo) String() string {
	format := i.Format
	if format == "" {
		format = "unknown"
	}
	return fmt.Sprintf("%d × %d px, format %s, mode %s", i.Width, i.Height, strings.ToUpper(format), i.Mode)
}

// GetImageInfo returns basic information about an image. format is the
// decoder name and may be empty.
func (a *ImageAnalyzer) GetImageInfo(img image.Image, format string) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var ratio float64
	if height > 0 {
		ratio = float64(width) / float64(height)
	}

	mode, alpha := ColorMode(img)
	return ImageInfo{
		Width:       width,
		Height:      height,
		AspectRatio: ratio,
		Area:        width * height,
		Format:      format,
		Mode:        mode,
		HasAlpha:    alpha,
	}
}

// ColorMode names the pixel layout of img and whether it can carry alpha.
// Corner detection converts every mode to RGB.
func ColorMode(img image.Image) (string, bool) {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return "RGBA", true
	case *image.Paletted:
		return "P", hasTransparentEntry(img.ColorModel())
	case *image.Gray, *image.Gray16:
		return "L", false
	case *image.CMYK:
		return "CMYK", false
	case *image.YCbCr:
		return "YCbCr", false
	case *image.NYCbCrA:
		return "YCbCrA", true
	case *image.Alpha, *image.Alpha16:
		return "A", true
	default:
		return "RGB", false
	}
}

func hasTransparentEntry(m color.Model) bool {
	pal, ok := m.(color.Palette)
	if !ok {
		return false
	}
	for _, c := range pal {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

// IsFormatSupported reports whether format is accepted for processing.
func (a *ImageAnalyzer) IsFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets size requirements
func (a *ImageAnalyzer) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < a.config.MinImageSize || bounds.Dy() < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), a.config.MinImageSize)
	}
	if a.config.MaxImageSize > 0 && (bounds.Dx() > a.config.MaxImageSize || bounds.Dy() > a.config.MaxImageSize) {
		return fmt.Errorf("image too large: %dx%d (maximum: %d)",
			bounds.Dx(), bounds.Dy(), a.config.MaxImageSize)
	}
	return nil
}
