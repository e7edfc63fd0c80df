package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/scanseq-mcp/internal/transform"
)

// Point represents a 2D pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CalibratedPoint is a pixel coordinate mapped into calibrated units.
type CalibratedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceResult contains measurement information in pixels and in calibrated
// units.
type DistanceResult struct {
	DistancePixels float64 `json:"distance_pixels"`
	DeltaX         int     `json:"delta_x"`
	DeltaY         int     `json:"delta_y"`
	AngleDegrees   float64 `json:"angle_degrees"`

	From               CalibratedPoint `json:"calibrated_from"`
	To                 CalibratedPoint `json:"calibrated_to"`
	CalibratedDeltaX   float64         `json:"calibrated_delta_x"`
	CalibratedDeltaY   float64         `json:"calibrated_delta_y"`
	CalibratedDistance float64         `json:"calibrated_distance"`
}

// MeasureCalibrated measures from p1 to p2.
//
// xCal maps pixel columns and yCal maps global rows into physical units; a nil
// transformation is the identity. The angle is in pixel space, 0 pointing right
// and 90 pointing down. The calibrated distance is Euclidean in calibrated
// units, so it is only meaningful when both axes share a unit.
func MeasureCalibrated(p1, p2 Point, xCal, yCal transform.CoordinateTransformation[float64]) *DistanceResult {
	if xCal == nil {
		xCal = transform.Identity[float64]()
	}
	if yCal == nil {
		yCal = transform.Identity[float64]()
	}

	deltaX := p2.X - p1.X
	deltaY := p2.Y - p1.Y
	distance := math.Hypot(float64(deltaX), float64(deltaY))
	angle := math.Atan2(float64(deltaY), float64(deltaX)) * 180 / math.Pi

	from := CalibratedPoint{X: xCal.Forward(float64(p1.X)), Y: yCal.Forward(float64(p1.Y))}
	to := CalibratedPoint{X: xCal.Forward(float64(p2.X)), Y: yCal.Forward(float64(p2.Y))}
	cdx := to.X - from.X
	cdy := to.Y - from.Y

	return &DistanceResult{
		DistancePixels:     math.Round(distance*100) / 100,
		DeltaX:             deltaX,
		DeltaY:             deltaY,
		AngleDegrees:       math.Round(angle*10) / 10,
		From:               from,
		To:                 to,
		CalibratedDeltaX:   cdx,
		CalibratedDeltaY:   cdy,
		CalibratedDistance: math.Hypot(cdx, cdy),
	}
}

// CompareRegionsResult contains region comparison information
type CompareRegionsResult struct {
	SimilarityScore  float64 `json:"similarity_score"`
	PixelsDifferent  int     `json:"pixels_different"`
	TotalPixels      int     `json:"total_pixels"`
	SameSize         bool    `json:"same_size"`
	Region1Size      Point   `json:"region1_size"`
	Region2Size      Point   `json:"region2_size"`
	AverageColorDiff float64 `json:"average_color_diff"`
}

// CompareRegions compares two regions of img pixel by pixel, aligned at their
// top-left corners, over the overlap of their sizes. A pixel counts as
// different when its mean 8-bit RGB difference exceeds 10.
func CompareRegions(img image.Image, r1, r2 Region) (*CompareRegionsResult, error) {
	bounds := img.Bounds()
	if err := r1.check(bounds, 1); err != nil {
		return nil, fmt.Errorf("region 1: %w", err)
	}
	if err := r2.check(bounds, 1); err != nil {
		return nil, fmt.Errorf("region 2: %w", err)
	}

	w1, h1 := r1.X2-r1.X1, r1.Y2-r1.Y1
	w2, h2 := r2.X2-r2.X1, r2.Y2-r2.Y1
	minW, minH := min(w1, w2), min(h1, h2)

	totalPixels := minW * minH
	pixelsDifferent := 0
	var totalColorDiff float64

	for dy := 0; dy < minH; dy++ {
		for dx := 0; dx < minW; dx++ {
			r1c, g1c, b1c, _ := img.At(r1.X1+dx, r1.Y1+dy).RGBA()
			r2c, g2c, b2c, _ := img.At(r2.X1+dx, r2.Y1+dy).RGBA()

			dr := absDiff(uint8(r1c>>8), uint8(r2c>>8))
			dg := absDiff(uint8(g1c>>8), uint8(g2c>>8))
			db := absDiff(uint8(b1c>>8), uint8(b2c>>8))
			diff := float64(dr+dg+db) / 3.0

			totalColorDiff += diff
			if diff > 10 {
				pixelsDifferent++
			}
		}
	}
	if err := renderErr(img); err != nil {
		return nil, fmt.Errorf("failed to read regions: %w", err)
	}

	similarity := 1.0 - float64(pixelsDifferent)/float64(totalPixels)
	avgColorDiff := totalColorDiff / float64(totalPixels)

	return &CompareRegionsResult{
		SimilarityScore:  math.Round(similarity*1000) / 1000,
		PixelsDifferent:  pixelsDifferent,
		TotalPixels:      totalPixels,
		SameSize:         w1 == w2 && h1 == h2,
		Region1Size:      Point{X: w1, Y: h1},
		Region2Size:      Point{X: w2, Y: h2},
		AverageColorDiff: math.Round(avgColorDiff*100) / 100,
	}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
