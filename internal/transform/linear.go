package transform

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

// LinearAffine maps v to v*slope + intercept. Backward is defined when
// slope is non-zero.
type LinearAffine[T constraints.Float] struct {
	slope     T
	intercept T
}

var (
	_ CoordinateTransformation[float64] = LinearAffine[float64]{}
	_ CoordinateTransformation[float32] = LinearAffine[float32]{}
)

// NewLinearAffine returns the mapping v*slope + intercept.
func NewLinearAffine[T constraints.Float](slope, intercept T) LinearAffine[T] {
	return LinearAffine[T]{slope: slope, intercept: intercept}
}

// Identity returns the mapping with slope 1 and intercept 0.
func Identity[T constraints.Float]() LinearAffine[T] {
	return LinearAffine[T]{slope: 1, intercept: 0}
}

// FitLinearAffine fits a mapping from sample index to sample value, assuming
// the samples are evenly spaced and their extrema bound a linear calibration:
//
//	slope     = (max - min) / (len(samples) - 1)
//	intercept = min
//
// This is a min/max fit, not least squares. It fails with ErrInvalidInput for
// fewer than two samples or any NaN or infinite sample. Samples that are all
// equal produce slope 0, whose Backward reports ErrDivisionByZero.
//
// The fit is computed in float64 for every T, so float32 and float64 copies of
// the same data agree to float32 precision.
func FitLinearAffine[T constraints.Float](samples []T) (LinearAffine[T], error) {
	n := len(samples)
	if n < 2 {
		return LinearAffine[T]{}, errors.Wrapf(ErrInvalidInput, "need at least 2 samples, got %d", n)
	}

	values := make([]float64, n)
	for i, s := range samples {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return LinearAffine[T]{}, errors.Wrapf(ErrInvalidInput, "sample %d is %v", i, v)
		}
		values[i] = v
	}

	lo, hi := floats.Min(values), floats.Max(values)
	return LinearAffine[T]{
		slope:     T((hi - lo) / float64(n-1)),
		intercept: T(lo),
	}, nil
}

// Slope returns the multiplier.
func (t LinearAffine[T]) Slope() T { return t.slope }

// Intercept returns the offset.
func (t LinearAffine[T]) Intercept() T { return t.intercept }

// Forward returns v*slope + intercept.
func (t LinearAffine[T]) Forward(v T) T {
	return v*t.slope + t.intercept
}

// Backward returns (v - intercept) / slope, or ErrDivisionByZero when slope is 0.
func (t LinearAffine[T]) Backward(v T) (T, error) {
	if t.slope == 0 {
		return 0, errors.Wrapf(ErrDivisionByZero, "cannot invert %v", t)
	}
	return (v - t.intercept) / t.slope, nil
}

func (t LinearAffine[T]) String() string {
	return fmt.Sprintf("v*%g + %g", float64(t.slope), float64(t.intercept))
}
