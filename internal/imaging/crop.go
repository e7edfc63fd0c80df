package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// MaxRenderPixels bounds the pixel count of a rendered region, before and
// after scaling. A sequence can be far taller than anything worth holding in
// memory as a single image.
const MaxRenderPixels = 1 << 24

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// check validates r against bounds and the render limit at the given scale.
func (r Region) check(bounds image.Rectangle, scale float64) error {
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	area := float64(r.X2-r.X1) * float64(r.Y2-r.Y1)
	if area > MaxRenderPixels || area*scale*scale > MaxRenderPixels {
		return fmt.Errorf("region (%d,%d)-(%d,%d) at scale %g exceeds %d pixels",
			r.X1, r.Y1, r.X2, r.Y2, scale, MaxRenderPixels)
	}
	return nil
}

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts region from img, optionally scales it, and returns it as a
// base64 PNG. A non-positive scale is treated as 1.
func Crop(img image.Image, region Region, scale float64) (*CropResult, error) {
	out, err := render(img, region, scale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// render crops and scales region of img into memory.
func render(img image.Image, region Region, scale float64) (*image.NRGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	if err := region.check(img.Bounds(), scale); err != nil {
		return nil, err
	}

	out := imaging.Crop(img, region.Rect())
	if err := renderErr(img); err != nil {
		return nil, fmt.Errorf("failed to read region: %w", err)
	}

	if scale != 1.0 {
		newWidth := int(float64(out.Bounds().Dx()) * scale)
		newHeight := int(float64(out.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %g reduces region to nothing", scale)
		}
		out = imaging.Resize(out, newWidth, newHeight, imaging.Lanczos)
	}
	return out, nil
}
