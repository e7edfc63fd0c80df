package imaging

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/pkg/errors"

	"github.com/ironsheep/scanseq-mcp/internal/sequence"
)

// Composite presents a whole Sequence as one image.Image so that the usual
// image tooling (cropping, scaling, encoding) can run over it without
// assembling the bands in memory.
//
// At reads through the sequence and its band cache. Sample values are scaled
// from [0, white] to 16-bit color. One channel maps to gray, two to gray with
// alpha, three to opaque RGB, and four or more to RGBA.
//
// image.Image has no way to report failures from At, so a failed lookup yields
// a zero color and is recorded; check Err after rendering.
type Composite struct {
	seq   *sequence.Sequence
	ctx   context.Context
	white float64

	mu  sync.Mutex
	err error
}

var _ image.Image = (*Composite)(nil)

// NewComposite returns a view of seq. white is the sample value shown as full
// intensity and must be positive. Lookups use ctx.
func NewComposite(ctx context.Context, seq *sequence.Sequence, white float64) (*Composite, error) {
	if white <= 0 {
		return nil, errors.Errorf("white level must be positive, got %v", white)
	}
	return &Composite{seq: seq, ctx: ctx, white: white}, nil
}

func (c *Composite) ColorModel() color.Model {
	if c.seq.Shape().Channels == 1 {
		return color.Gray16Model
	}
	return color.NRGBA64Model
}

func (c *Composite) Bounds() image.Rectangle {
	s := c.seq.Shape()
	return image.Rect(0, 0, s.Width, s.Height)
}

func (c *Composite) At(x, y int) color.Color {
	vals, err := c.seq.ChannelsContext(c.ctx, x, y)
	if err != nil {
		c.fail(err)
		if c.seq.Shape().Channels == 1 {
			return color.Gray16{}
		}
		return color.NRGBA64{}
	}

	switch len(vals) {
	case 1:
		return color.Gray16{Y: c.scale(vals[0])}
	case 2:
		g := c.scale(vals[0])
		return color.NRGBA64{R: g, G: g, B: g, A: c.scale(vals[1])}
	case 3:
		return color.NRGBA64{R: c.scale(vals[0]), G: c.scale(vals[1]), B: c.scale(vals[2]), A: 0xffff}
	default:
		return color.NRGBA64{R: c.scale(vals[0]), G: c.scale(vals[1]), B: c.scale(vals[2]), A: c.scale(vals[3])}
	}
}

// Err returns the first lookup failure seen by At, if any.
func (c *Composite) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Composite) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

func (c *Composite) scale(v float64) uint16 {
	s := v / c.white * 0xffff
	switch {
	case s <= 0:
		return 0
	case s >= 0xffff:
		return 0xffff
	default:
		return uint16(s + 0.5)
	}
}

// renderErr returns the recorded failure of img when it reports one.
func renderErr(img image.Image) error {
	if r, ok := img.(interface{ Err() error }); ok {
		return r.Err()
	}
	return nil
}
