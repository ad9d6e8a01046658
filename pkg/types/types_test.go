package types

import (
	"image/color"
	"testing"
)

func TestColorHex(t *testing.T) {
	tests := []struct {
		color Color
		want  string
	}{
		{Color{255, 0, 0}, "#FF0000"},
		{Color{0, 0, 0}, "#000000"},
		{Color{255, 255, 255}, "#FFFFFF"},
		{Color{10, 171, 5}, "#0AAB05"},
	}

	for _, tt := range tests {
		if got := tt.color.Hex(); got != tt.want {
			t.Errorf("%v.Hex() = %s, want %s", tt.color.Tuple(), got, tt.want)
		}
	}
}

func TestParseHexRoundTrip(t *testing.T) {
	colors := []Color{{255, 0, 0}, {0, 0, 0}, {1, 2, 3}, {128, 64, 254}, White}
	for _, c := range colors {
		parsed, err := ParseHex(c.Hex())
		if err != nil {
			t.Fatalf("ParseHex(%s) failed: %v", c.Hex(), err)
		}
		if parsed != c {
			t.Errorf("round trip of %s gave %v, want %v", c.Hex(), parsed, c)
		}
	}
}

func TestParseHexVariants(t *testing.T) {
	c, err := ParseHex("#ff8040")
	if err != nil {
		t.Fatalf("lowercase hex rejected: %v", err)
	}
	if c != (Color{255, 128, 64}) {
		t.Errorf("got %v, want (255, 128, 64)", c.Tuple())
	}

	c, err = ParseHex("#FFF")
	if err != nil {
		t.Fatalf("short hex rejected: %v", err)
	}
	if c != White {
		t.Errorf("#FFF parsed as %v", c.Tuple())
	}

	for _, bad := range []string{"", "FF0000", "#GG0000", "#12345", "#FF0000zz", "#1234567", "#FF", "FF0000#", "#-12345", "#+FF"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) should fail", bad)
		}
	}
}

func TestColorText(t *testing.T) {
	var c Color
	if err := c.UnmarshalText([]byte("#00FF7F")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if c != (Color{0, 255, 127}) {
		t.Errorf("got %v", c.Tuple())
	}
	text, _ := c.MarshalText()
	if string(text) != "#00FF7F" {
		t.Errorf("MarshalText = %s", text)
	}
}

func TestFromColorDropsAlpha(t *testing.T) {
	got := FromColor(color.NRGBA{R: 200, G: 100, B: 50, A: 10})
	if got != (Color{200, 100, 50}) {
		t.Errorf("alpha should be dropped without blending, got %v", got.Tuple())
	}

	got = FromColor(color.Gray{Y: 77})
	if got != (Color{77, 77, 77}) {
		t.Errorf("gray conversion gave %v", got.Tuple())
	}
}

func TestCanvasSpecValidate(t *testing.T) {
	if err := (CanvasSpec{Width: 10, Height: 10}).Validate(); err != nil {
		t.Errorf("valid canvas rejected: %v", err)
	}
	for _, c := range []CanvasSpec{{0, 500}, {500, -1}, {0, 0}} {
		if err := c.Validate(); err == nil {
			t.Errorf("canvas %v should be invalid", c)
		}
	}
}

func TestCornerString(t *testing.T) {
	want := []string{"top-left", "top-right", "bottom-left", "bottom-right"}
	for i, c := range Corners() {
		if c.String() != want[i] {
			t.Errorf("corner %d = %s, want %s", i, c, want[i])
		}
	}
}
