package types

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque 8-bit RGB colour. Two colours are equal iff all three
// channels match.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// White is returned by background detection whenever the image cannot be sampled.
var White = Color{R: 255, G: 255, B: 255}

// Hex returns the canonical "#RRGGBB" form (uppercase, zero padded).
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// Tuple formats the colour the way it is shown next to its hex form, e.g. "(255, 0, 0)".
func (c Color) Tuple() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// RGBA implements color.Color so a Color can be used directly as a fill.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseHex parses "#RRGGBB" or "#RGB" (either case). Anything else, including
// trailing characters, is rejected.
func ParseHex(s string) (Color, error) {
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 4) ||
		strings.Trim(s[1:], "0123456789abcdefABCDEF") != "" {
		return Color{}, fmt.Errorf("invalid hex colour %q: want #RRGGBB or #RGB", s)
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// FromColor converts any color.Color to RGB by dropping alpha. The channels are
// taken from the non-premultiplied form, nothing is blended against a backdrop.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

// CanvasSpec is the output raster size used for padding.
type CanvasSpec struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Validate reports whether both dimensions are positive.
func (c CanvasSpec) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canvas %dx%d: width and height must be positive", c.Width, c.Height)
	}
	return nil
}

// String implements fmt.Stringer.
func (c CanvasSpec) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// Corner names one of the four sampled regions of an image.
type Corner int

// Corners in sampling order.
const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// Corners lists all corners in the fixed sampling order.
func Corners() []Corner {
	return []Corner{TopLeft, TopRight, BottomLeft, BottomRight}
}

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("corner(%d)", int(c))
	}
}

// MarshalText renders the corner by name in JSON and YAML.
func (c Corner) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
