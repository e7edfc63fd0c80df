// Package transform calibrates raw sample coordinates into physical units.
//
// A CoordinateTransformation maps a value forward (raw to calibrated) and
// backward (calibrated to raw). LinearAffine is the concrete affine mapping
// v*slope + intercept, built either from explicit coefficients or fitted to a
// sample array whose extrema bound a linear calibration.
package transform

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

var (
	// ErrInvalidInput is returned when a fit is given too few or non-finite samples.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZero is returned by Backward on a transformation that is
	// not invertible.
	ErrDivisionByZero = errors.New("division by zero")
)

// CoordinateTransformation is a bidirectional numeric mapping over T.
//
// Forward is total. Backward is defined only where the mapping is invertible
// and reports ErrDivisionByZero elsewhere. Where both are defined,
// Backward(Forward(v)) equals v within floating-point tolerance.
type CoordinateTransformation[T constraints.Float] interface {
	Forward(v T) T
	Backward(v T) (T, error)
}
