package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultGridColor is used when an overlay is given no grid color.
const DefaultGridColor = "#FF0000"

var (
	bandLineColor = color.NRGBA{R: 0, G: 255, B: 255, A: 255}
	labelFG       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	labelBG       = color.NRGBA{R: 0, G: 0, B: 0, A: 180}
)

// OverlayResult contains a rendered region with grid and band markings.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	GridSpacing int    `json:"grid_spacing"`

	// BandRows lists the global rows inside the region where a band starts.
	BandRows []int `json:"band_rows"`
}

// OverlayOptions controls what GridOverlay draws.
type OverlayOptions struct {
	// Spacing is the grid pitch in pixels. Lines fall on global coordinates
	// that are multiples of Spacing, so neighbouring regions line up.
	Spacing int

	// ShowCoordinates labels each grid crossing with its global coordinate.
	ShowCoordinates bool

	// GridColor is a "#RRGGBB" color. Empty means DefaultGridColor.
	GridColor string

	// BandOffsets are the global first rows of the bands. A line is drawn at
	// every offset inside the region.
	BandOffsets []int
}

// GridOverlay renders region of img and draws a coordinate grid and band
// boundaries on it. Grid lines are blended at half opacity; band boundaries
// are drawn solid.
func GridOverlay(img image.Image, region Region, opts OverlayOptions) (*OverlayResult, error) {
	if opts.Spacing < 1 {
		return nil, fmt.Errorf("grid spacing must be at least 1, got %d", opts.Spacing)
	}
	if opts.GridColor == "" {
		opts.GridColor = DefaultGridColor
	}
	c, err := colorful.Hex(opts.GridColor)
	if err != nil {
		return nil, fmt.Errorf("invalid grid color %q: %w", opts.GridColor, err)
	}
	r, g, b := c.RGB255()
	gridColor := color.NRGBA{R: r, G: g, B: b, A: 128}

	out, err := render(img, region, 1)
	if err != nil {
		return nil, err
	}
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	line := &image.Uniform{C: gridColor}

	// out is indexed from 0; global coordinate gx sits at column gx-X1.
	firstX := ceilMultiple(region.X1, opts.Spacing)
	firstY := ceilMultiple(region.Y1, opts.Spacing)
	for gx := firstX; gx < region.X2; gx += opts.Spacing {
		x := gx - region.X1
		draw.Draw(out, image.Rect(x, 0, x+1, h), line, image.Point{}, draw.Over)
	}
	for gy := firstY; gy < region.Y2; gy += opts.Spacing {
		y := gy - region.Y1
		draw.Draw(out, image.Rect(0, y, w, y+1), line, image.Point{}, draw.Over)
	}

	bandRows := []int{}
	for _, off := range opts.BandOffsets {
		if off < region.Y1 || off >= region.Y2 {
			continue
		}
		y := off - region.Y1
		draw.Draw(out, image.Rect(0, y, w, y+1), &image.Uniform{C: bandLineColor}, image.Point{}, draw.Src)
		bandRows = append(bandRows, off)
	}

	if opts.ShowCoordinates {
		for gy := firstY; gy < region.Y2; gy += opts.Spacing {
			for gx := firstX; gx < region.X2; gx += opts.Spacing {
				drawLabel(out, gx-region.X1+2, gy-region.Y1+2, fmt.Sprintf("%d,%d", gx, gy))
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       w,
		Height:      h,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		GridSpacing: opts.Spacing,
		BandRows:    bandRows,
	}, nil
}

// ceilMultiple returns the smallest multiple of step that is >= v, for v >= 0.
func ceilMultiple(v, step int) int {
	return (v + step - 1) / step * step
}

// 3x5 glyphs for the coordinate labels.
var glyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel draws text on a dark box with its top-left corner at (x, y),
// clipped to dst.
func drawLabel(dst *image.NRGBA, x, y int, text string) {
	const charWidth, labelHeight = 4, 7

	box := image.Rect(x-1, y-1, x+len(text)*charWidth, y+labelHeight)
	draw.Draw(dst, box.Intersect(dst.Bounds()), &image.Uniform{C: labelBG}, image.Point{}, draw.Over)

	cx := x
	for _, ch := range text {
		for row, bits := range glyphs[ch] {
			for col, bit := range bits {
				if bit != '1' {
					continue
				}
				if p := (image.Point{X: cx + col, Y: y + row}); p.In(dst.Bounds()) {
					dst.SetNRGBA(p.X, p.Y, labelFG)
				}
			}
		}
		cx += charWidth
	}
}
