package padder

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/bg-remover/pkg/types"
)

// createTestImage creates an image with a gradient so pixel copies can be verified
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 7), uint8(y * 13), 200, 255})
		}
	}
	return img
}

func createUniformImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var fill = types.Color{R: 10, G: 200, B: 30}

func isFill(c color.Color) bool {
	return types.FromColor(c) == fill
}

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.Anchor() != NearTop {
		t.Errorf("Expected NearTop anchor by default, got %+v", p.Anchor())
	}
}

func TestPadExactFitIsCopy(t *testing.T) {
	src := createTestImage(30, 20)
	out, err := New().Pad(src, fill, types.CanvasSpec{Width: 30, Height: 20})
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", src.Bounds(), out.Bounds())
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			if out.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("Pixel (%d,%d) differs: %v vs %v", x, y, out.NRGBAAt(x, y), src.NRGBAAt(x, y))
			}
		}
	}
}

func TestPadDownscale(t *testing.T) {
	src := createUniformImage(4000, 2000, color.NRGBA{250, 0, 0, 255})
	canvas := types.CanvasSpec{Width: 1000, Height: 1000}

	w, h := FitSize(4000, 2000, canvas)
	if w != 1000 || h != 500 {
		t.Fatalf("Expected fitted size 1000x500, got %dx%d", w, h)
	}

	out, err := New().Pad(src, fill, canvas)
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	if out.Bounds().Dx() != 1000 || out.Bounds().Dy() != 1000 {
		t.Fatalf("Expected 1000x1000 canvas, got %v", out.Bounds())
	}

	// NearTop: 5% of the 500 px gap (25 px) above the image, the rest below.
	for _, pt := range []image.Point{{0, 0}, {999, 0}, {500, 24}, {0, 999}, {999, 999}, {500, 525}, {500, 900}} {
		if !isFill(out.At(pt.X, pt.Y)) {
			t.Errorf("Expected fill colour at %v, got %v", pt, out.At(pt.X, pt.Y))
		}
	}
	for _, pt := range []image.Point{{0, 25}, {500, 300}, {999, 524}} {
		got := out.NRGBAAt(pt.X, pt.Y)
		if got.R < 245 || got.G > 5 || got.B > 5 {
			t.Errorf("Expected image pixel at %v, got %v", pt, got)
		}
	}
}

func TestPadNoUpscale(t *testing.T) {
	src := createTestImage(10, 10)
	canvas := types.CanvasSpec{Width: 40, Height: 30}
	out, err := NewWithAnchor(Center).Pad(src, fill, canvas)
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}

	// Native resolution, offset (15, 10).
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if out.NRGBAAt(15+x, 10+y) != src.NRGBAAt(x, y) {
				t.Fatalf("Pixel (%d,%d) not copied at native resolution", x, y)
			}
		}
	}
	if !isFill(out.At(14, 10)) || !isFill(out.At(25, 10)) || !isFill(out.At(15, 9)) || !isFill(out.At(15, 20)) {
		t.Error("Expected fill around the pasted image")
	}
}

func TestPadAnchors(t *testing.T) {
	canvas := types.CanvasSpec{Width: 100, Height: 300}
	tests := []struct {
		name   string
		anchor Anchor
		wantX  int
		wantY  int
	}{
		{"near top", NearTop, 45, 14},
		{"top", Top, 45, 3},
		{"center", Center, 45, 145},
		{"top left", Anchor{0, 0}, 0, 0},
		{"bottom right", Anchor{1, 1}, 90, 290},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Offset(10, 10, canvas, tt.anchor)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Offset() = (%d,%d), want (%d,%d)", x, y, tt.wantX, tt.wantY)
			}

			out, err := NewWithAnchor(tt.anchor).Pad(createUniformImage(10, 10, color.NRGBA{0, 0, 0, 255}), fill, canvas)
			if err != nil {
				t.Fatalf("Pad failed: %v", err)
			}
			if isFill(out.At(tt.wantX, tt.wantY)) {
				t.Errorf("Expected image pixel at (%d,%d)", tt.wantX, tt.wantY)
			}
		})
	}
}

func TestOffsetRoundsHalfToEven(t *testing.T) {
	canvas := types.CanvasSpec{Width: 100, Height: 300}
	tests := []struct {
		w, h         int
		anchor       Anchor
		wantX, wantY int
	}{
		{9, 10, Center, 46, 145},  // 45.5 -> 46
		{11, 10, Center, 44, 145}, // 44.5 -> 44
		{10, 10, Top, 45, 3},      // 2.9 -> 3
		{10, 10, NearTop, 45, 14}, // 14.5 -> 14
		{10, 10, Anchor{0.5, 0.004}, 45, 1},
	}
	for _, tt := range tests {
		x, y := Offset(tt.w, tt.h, canvas, tt.anchor)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("Offset(%d, %d, %+v) = (%d,%d), want (%d,%d)", tt.w, tt.h, tt.anchor, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestPadInvalidDimension(t *testing.T) {
	src := createTestImage(10, 10)
	for _, canvas := range []types.CanvasSpec{{Width: 0, Height: 500}, {Width: 500, Height: -1}} {
		_, err := New().Pad(src, fill, canvas)
		if !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("Canvas %v: expected ErrInvalidDimension, got %v", canvas, err)
		}
	}

	_, err := New().Pad(image.NewNRGBA(image.Rect(0, 0, 0, 0)), fill, types.CanvasSpec{Width: 10, Height: 10})
	if !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("Empty image: expected ErrInvalidDimension, got %v", err)
	}
	_, err = New().Pad(nil, fill, types.CanvasSpec{Width: 10, Height: 10})
	if !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("Nil image: expected ErrInvalidDimension, got %v", err)
	}
}

func TestPadInvalidAnchor(t *testing.T) {
	_, err := NewWithAnchor(Anchor{X: 0.5, Y: 1.5}).Pad(createTestImage(4, 4), fill, types.CanvasSpec{Width: 10, Height: 10})
	if !errors.Is(err, ErrInvalidAnchor) {
		t.Errorf("Expected ErrInvalidAnchor, got %v", err)
	}
}

func TestPadLeavesSourceUntouched(t *testing.T) {
	src := createTestImage(50, 50)
	before := append([]uint8(nil), src.Pix...)
	if _, err := New().Pad(src, fill, types.CanvasSpec{Width: 20, Height: 80}); err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("Source image was modified")
		}
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		srcW, srcH int
		canvas     types.CanvasSpec
		wantW      int
		wantH      int
	}{
		{4000, 2000, types.CanvasSpec{Width: 1000, Height: 1000}, 1000, 500},
		{2000, 4000, types.CanvasSpec{Width: 1000, Height: 1000}, 500, 1000},
		{100, 100, types.CanvasSpec{Width: 4500, Height: 5400}, 100, 100},
		{6000, 5400, types.CanvasSpec{Width: 4500, Height: 5400}, 4500, 4050},
		{1000, 1, types.CanvasSpec{Width: 10, Height: 10}, 10, 1},
	}
	for _, tt := range tests {
		w, h := FitSize(tt.srcW, tt.srcH, tt.canvas)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FitSize(%d, %d, %v) = %dx%d, want %dx%d", tt.srcW, tt.srcH, tt.canvas, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestEndToEndWhiteCanvas(t *testing.T) {
	src := createUniformImage(10, 10, color.NRGBA{255, 255, 255, 255})
	out, err := NewWithAnchor(Center).Pad(src, types.White, types.CanvasSpec{Width: 20, Height: 20})
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	want := createUniformImage(20, 20, color.NRGBA{255, 255, 255, 255})
	if out.Bounds() != want.Bounds() {
		t.Fatalf("Unexpected bounds %v", out.Bounds())
	}
	for i := range want.Pix {
		if out.Pix[i] != want.Pix[i] {
			t.Fatalf("Byte %d differs from an all-white 20x20 image", i)
		}
	}
}

func BenchmarkPad(b *testing.B) {
	src := createTestImage(1920, 1080)
	canvas := types.CanvasSpec{Width: 1200, Height: 1200}
	p := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Pad(src, fill, canvas)
	}
}
