package imaging

import (
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSampleColor_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		c       color.NRGBA
		wantHex string
		wantHSL HSLColor
	}{
		{"red", color.NRGBA{255, 0, 0, 255}, "#FF0000", HSLColor{0, 100, 50}},
		{"green", color.NRGBA{0, 255, 0, 255}, "#00FF00", HSLColor{120, 100, 50}},
		{"blue", color.NRGBA{0, 0, 255, 255}, "#0000FF", HSLColor{240, 100, 50}},
		{"white", color.NRGBA{255, 255, 255, 255}, "#FFFFFF", HSLColor{0, 0, 100}},
		{"black", color.NRGBA{0, 0, 0, 255}, "#000000", HSLColor{0, 0, 0}},
		{"gray", color.NRGBA{128, 128, 128, 255}, "#808080", HSLColor{0, 0, 50}},
		{"orange", color.NRGBA{255, 128, 64, 255}, "#FF8040", HSLColor{20, 100, 63}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := colorBand(10, 10, tt.c)
			result, err := SampleColor(img, 5, 5)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}

			want := &ColorResult{
				Hex:  tt.wantHex,
				RGB:  RGBColor{R: tt.c.R, G: tt.c.G, B: tt.c.B},
				RGBA: RGBAColor{R: tt.c.R, G: tt.c.G, B: tt.c.B, A: 255},
				HSL:  tt.wantHSL,
			}
			if diff := cmp.Diff(want, result); diff != "" {
				t.Errorf("SampleColor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSampleColor_StraightAlpha(t *testing.T) {
	img := colorBand(2, 2, color.NRGBA{R: 200, G: 100, B: 0, A: 128})

	result, err := SampleColor(img, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.RGB != (RGBColor{R: 200, G: 100, B: 0}) {
		t.Errorf("RGB: got %+v, want unpremultiplied (200,100,0)", result.RGB)
	}
	if result.RGBA.A != 128 {
		t.Errorf("alpha: got %d, want 128", result.RGBA.A)
	}
}

func TestSampleColor_ThroughComposite(t *testing.T) {
	c, _ := openComposite(t,
		colorBand(4, 3, color.NRGBA{R: 255, A: 255}),
		colorBand(4, 3, color.NRGBA{B: 255, A: 255}))

	top, err := SampleColor(c, 1, 2)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	bottom, err := SampleColor(c, 1, 3)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if top.Hex != "#FF0000" || bottom.Hex != "#0000FF" {
		t.Errorf("got %s above the band boundary and %s below, want #FF0000 and #0000FF", top.Hex, bottom.Hex)
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := colorBand(100, 100, color.NRGBA{A: 255})

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 50},
		{"negative y", 50, -1},
		{"x equals width", 100, 50},
		{"y equals height", 50, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SampleColor(img, tt.x, tt.y); err == nil {
				t.Errorf("expected error for (%d,%d)", tt.x, tt.y)
			}
		})
	}
}

func TestSampleColor_BandFailure(t *testing.T) {
	c, paths := openComposite(t, grayBand(0, 2, 2))
	if err := os.Remove(paths[0]); err != nil {
		t.Fatalf("failed to remove band: %v", err)
	}
	if _, err := SampleColor(c, 0, 0); err == nil {
		t.Error("expected error when the band cannot be decoded")
	}
}

func TestSampleColorsMulti(t *testing.T) {
	c, _ := openComposite(t,
		colorBand(4, 2, color.NRGBA{R: 255, A: 255}),
		colorBand(4, 2, color.NRGBA{G: 255, A: 255}))

	points := []LabeledPoint{
		{X: 0, Y: 0, Label: "top"},
		{X: 3, Y: 3, Label: "bottom"},
		{X: 2, Y: 1},
	}
	result, err := SampleColorsMulti(c, points)
	if err != nil {
		t.Fatalf("SampleColorsMulti failed: %v", err)
	}

	var got []string
	for _, s := range result.Samples {
		got = append(got, s.Label+"="+s.Color.Hex)
	}
	want := []string{"top=#FF0000", "bottom=#00FF00", "=#FF0000"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleColorsMulti_OutOfBounds(t *testing.T) {
	img := colorBand(10, 10, color.NRGBA{A: 255})

	result, err := SampleColorsMulti(img, []LabeledPoint{{X: 5, Y: 5}, {X: 50, Y: 5}})
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil {
		t.Error("no partial results should be returned")
	}
}

func TestDominantColors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if y >= 7 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	result, err := DominantColors(img, 5, Region{X1: 0, Y1: 0, X2: 10, Y2: 10})
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	want := []ColorFrequency{
		{Hex: "#F00000", Percentage: 70, RGB: RGBColor{R: 240}},
		{Hex: "#0000F0", Percentage: 30, RGB: RGBColor{B: 240}},
	}
	if diff := cmp.Diff(want, result.Colors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}

	// Restricting the region to the red rows leaves one color.
	result, err = DominantColors(img, 5, Region{X1: 0, Y1: 0, X2: 10, Y2: 5})
	if err != nil {
		t.Fatalf("DominantColors with region failed: %v", err)
	}
	if len(result.Colors) != 1 || result.Colors[0].Percentage != 100 {
		t.Errorf("got %+v, want a single color at 100%%", result.Colors)
	}
}

func TestDominantColors_Invalid(t *testing.T) {
	img := colorBand(10, 10, color.NRGBA{A: 255})

	if _, err := DominantColors(img, 0, Region{X1: 0, Y1: 0, X2: 10, Y2: 10}); err == nil {
		t.Error("count 0 should fail")
	}
	if _, err := DominantColors(img, 3, Region{X1: 0, Y1: 0, X2: 11, Y2: 10}); err == nil {
		t.Error("region outside the image should fail")
	}
}
