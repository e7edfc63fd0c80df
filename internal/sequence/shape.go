package sequence

import (
	"fmt"

	"github.com/pkg/errors"
)

// Shape describes the extent of an image or a band.
type Shape struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Channels int `json:"channels"`
}

// Validate reports whether the shape is well formed: non-negative extents and
// at least one channel.
func (s Shape) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return errors.Errorf("invalid shape %v: negative extent", s)
	}
	if s.Channels < 1 {
		return errors.Errorf("invalid shape %v: channel count must be at least 1", s)
	}
	return nil
}

// Contains reports whether (x, y, channel) addresses a sample inside s.
func (s Shape) Contains(x, y, channel int) bool {
	return x >= 0 && x < s.Width &&
		y >= 0 && y < s.Height &&
		channel >= 0 && channel < s.Channels
}

// Compatible reports whether two bands can be stacked: width and channel count
// must match, height may differ.
func (s Shape) Compatible(other Shape) bool {
	return s.Width == other.Width && s.Channels == other.Channels
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Channels)
}
