package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Edge detection defaults.
const (
	DefaultEdgeThreshold  = 128
	DefaultEdgeBlurRadius = 1.0
)

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// The image is grayscale with edges in white (255) and everything else black.
type EdgeDetectResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// EdgePixels is the number of white pixels in the map.
	EdgePixels int `json:"edge_pixels"`

	// EdgePercentage is EdgePixels as a share of the region, 0 to 100.
	EdgePercentage float64 `json:"edge_percentage"`
}

// EdgeDetect finds edges in region of img, typically seams or features that
// cross band boundaries.
//
// The region is smoothed with a Gaussian of blurRadius (0 disables it), run
// through a Sobel operator, and thresholded: gradient magnitudes at or above
// threshold (0-255) become edges. Lower thresholds keep fainter edges.
func EdgeDetect(img image.Image, region Region, threshold int, blurRadius float64) (*EdgeDetectResult, error) {
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold must be in [0, 255], got %d", threshold)
	}
	if blurRadius < 0 || math.IsNaN(blurRadius) {
		return nil, fmt.Errorf("blur radius must not be negative, got %g", blurRadius)
	}

	src, err := render(img, region, 1)
	if err != nil {
		return nil, err
	}

	var smoothed image.Image = src
	if blurRadius > 0 {
		smoothed = blur.Gaussian(src, blurRadius)
	}
	edges := segment.Threshold(effect.Sobel(smoothed), uint8(threshold))

	count := 0
	for _, v := range edges.Pix {
		if v == 0xff {
			count++
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, edges); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	w, h := edges.Bounds().Dx(), edges.Bounds().Dy()
	return &EdgeDetectResult{
		Width:          w,
		Height:         h,
		ImageBase64:    base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:       "image/png",
		EdgePixels:     count,
		EdgePercentage: math.Round(float64(count)*10000/float64(w*h)) / 100,
	}, nil
}
