package detection

import (
	"image"

	"github.com/menta2k/bg-remover/pkg/types"
)

// CornerRegion returns the rectangle sampled at corner, relative to the image
// origin. Each side is min(sampleSize, dimension) long, so the region is
// clipped on images smaller than the sample and adjacent regions may overlap.
func CornerRegion(corner types.Corner, width, height, sampleSize int) image.Rectangle {
	if width <= 0 || height <= 0 || sampleSize <= 0 {
		return image.Rectangle{}
	}
	w := min(sampleSize, width)
	h := min(sampleSize, height)
	right := max(0, width-sampleSize)
	bottom := max(0, height-sampleSize)

	var x0, y0 int
	switch corner {
	case TopRight:
		x0 = right
	case BottomLeft:
		y0 = bottom
	case BottomRight:
		x0, y0 = right, bottom
	}
	return image.Rect(x0, y0, x0+w, y0+h)
}

// SampleCoordinates lists the pixels sampled at corner, column by column.
// Pixels shared with another corner appear in both lists.
func SampleCoordinates(corner types.Corner, width, height, sampleSize int) []image.Point {
	r := CornerRegion(corner, width, height, sampleSize)
	pts := make([]image.Point, 0, r.Dx()*r.Dy())
	for x := r.Min.X; x < r.Max.X; x++ {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			pts = append(pts, image.Pt(x, y))
		}
	}
	return pts
}

// Corner is re-exported for callers that only import this package.
type Corner = types.Corner

// Corners in sampling order.
const (
	TopLeft     = types.TopLeft
	TopRight    = types.TopRight
	BottomLeft  = types.BottomLeft
	BottomRight = types.BottomRight
)
