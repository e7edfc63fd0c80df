package sequence

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds reported by this package. Match them with errors.Is.
var (
	// ErrInvalidSequence is returned by Open and OpenFolder when the band list
	// is empty, a band cannot be probed, or band shapes disagree.
	ErrInvalidSequence = errors.New("invalid sequence")

	// ErrOutOfRange is returned when a coordinate, channel or band index lies
	// outside the addressed shape.
	ErrOutOfRange = errors.New("out of range")

	// ErrDecodeFailure is matched by every *DecodeError.
	ErrDecodeFailure = errors.New("band decode failed")

	// ErrClosed is returned by lookups on a closed Sequence.
	ErrClosed = errors.New("sequence closed")
)

// DecodeError reports a band that could not be loaded. It unwraps to the
// loader's error and matches ErrDecodeFailure.
type DecodeError struct {
	Index int
	Path  string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode band %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDecodeFailure) succeed.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailure
}

func outOfRange(format string, a ...interface{}) error {
	return errors.Wrapf(ErrOutOfRange, format, a...)
}

func invalidSequence(format string, a ...interface{}) error {
	return errors.Wrapf(ErrInvalidSequence, format, a...)
}

// invalidBand keeps both ErrInvalidSequence and the probe failure in the chain.
func invalidBand(index int, path string, cause error) error {
	return fmt.Errorf("%w: band %d (%s): %w", ErrInvalidSequence, index, path, cause)
}
