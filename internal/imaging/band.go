package imaging

import (
	"context"
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/ironsheep/scanseq-mcp/internal/sequence"
)

// Band adapts a decoded image.Image into a sequence.ContiguousImage.
//
// Channels follow the image color model:
//   - gray and alpha-only models have 1 channel
//   - opaque color models (YCbCr, CMYK) have 3 channels: R, G, B
//   - models with alpha, and paletted images, have 4 channels: R, G, B, A
//
// Samples are reported in the image's native depth: 0-255 for 8-bit types and
// 0-65535 for 16-bit types. Images of any other concrete type are read
// through their generic color at 16-bit depth. RGBA and RGBA64 samples are
// alpha-premultiplied, as stored.
//
// A Band is read-only and safe for concurrent use.
type Band struct {
	img   image.Image
	min   image.Point
	shape sequence.Shape
	max   float64
}

var (
	_ sequence.ContiguousImage = (*Band)(nil)
	_ sequence.PixelSampler    = (*Band)(nil)
)

// NewBand wraps img. Local coordinate (0, 0) is img.Bounds().Min.
func NewBand(img image.Image) *Band {
	return newBand(img, channelCount(img.ColorModel()))
}

// newBand wraps img with a fixed channel count between 1 and 4. Gray pixels
// read as more than one channel repeat the gray value with opaque alpha;
// color pixels read as fewer channels keep the leading ones.
func newBand(img image.Image, channels int) *Band {
	b := img.Bounds()
	return &Band{
		img: img,
		min: b.Min,
		shape: sequence.Shape{
			Width:    b.Dx(),
			Height:   b.Dy(),
			Channels: channels,
		},
		max: maxValue(img),
	}
}

// Shape returns the band's width, height and channel count.
func (b *Band) Shape() sequence.Shape {
	return b.shape
}

// MaxValue returns the largest sample value the band's depth can hold.
func (b *Band) MaxValue() float64 {
	return b.max
}

// Sample returns one channel of the pixel at local (x, y).
func (b *Band) Sample(x, y, channel int) (float64, error) {
	if !b.shape.Contains(x, y, channel) {
		return 0, errors.Wrapf(sequence.ErrOutOfRange, "(%d,%d,%d) outside band %v", x, y, channel, b.shape)
	}
	var px [4]float64
	b.read(x, y, px[:b.shape.Channels])
	return px[channel], nil
}

// SamplePixel fills dst with every channel of the pixel at local (x, y).
func (b *Band) SamplePixel(x, y int, dst []float64) error {
	if !b.shape.Contains(x, y, 0) {
		return errors.Wrapf(sequence.ErrOutOfRange, "(%d,%d) outside band %v", x, y, b.shape)
	}
	if len(dst) != b.shape.Channels {
		return errors.Errorf("destination holds %d channels, band has %d", len(dst), b.shape.Channels)
	}
	b.read(x, y, dst)
	return nil
}

func (b *Band) read(x, y int, dst []float64) {
	x += b.min.X
	y += b.min.Y

	switch img := b.img.(type) {
	case *image.Gray:
		v := img.GrayAt(x, y).Y
		put8(dst, v, v, v, 0xff)
	case *image.Gray16:
		v := img.Gray16At(x, y).Y
		put16(dst, v, v, v, 0xffff)
	case *image.Alpha:
		a := img.AlphaAt(x, y).A
		put8(dst, a, a, a, a)
	case *image.Alpha16:
		a := img.Alpha16At(x, y).A
		put16(dst, a, a, a, a)
	case *image.YCbCr:
		c := img.YCbCrAt(x, y)
		r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
		put8(dst, r, g, bl, 0xff)
	case *image.CMYK:
		c := img.CMYKAt(x, y)
		r, g, bl := color.CMYKToRGB(c.C, c.M, c.Y, c.K)
		put8(dst, r, g, bl, 0xff)
	case *image.RGBA:
		c := img.RGBAAt(x, y)
		put8(dst, c.R, c.G, c.B, c.A)
	case *image.NRGBA:
		c := img.NRGBAAt(x, y)
		put8(dst, c.R, c.G, c.B, c.A)
	case *image.NYCbCrA:
		c := img.NYCbCrAAt(x, y)
		r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
		put8(dst, r, g, bl, c.A)
	case *image.Paletted:
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		put8(dst, c.R, c.G, c.B, c.A)
	case *image.RGBA64:
		c := img.RGBA64At(x, y)
		put16(dst, c.R, c.G, c.B, c.A)
	case *image.NRGBA64:
		c := img.NRGBA64At(x, y)
		put16(dst, c.R, c.G, c.B, c.A)
	default:
		c := b.img.At(x, y)
		if len(dst) == 1 {
			dst[0] = float64(color.Gray16Model.Convert(c).(color.Gray16).Y)
			return
		}
		r, g, bl, a := c.RGBA()
		put16(dst, uint16(r), uint16(g), uint16(bl), uint16(a))
	}
}

// put8 and put16 write as many of r, g, b, a as dst has room for.
func put8(dst []float64, r, g, b, a uint8) {
	vals := [4]uint8{r, g, b, a}
	for i := range dst {
		dst[i] = float64(vals[i])
	}
}

func put16(dst []float64, r, g, b, a uint16) {
	vals := [4]uint16{r, g, b, a}
	for i := range dst {
		dst[i] = float64(vals[i])
	}
}

// channelCount maps a color model to the number of band channels.
func channelCount(m color.Model) int {
	if _, ok := m.(color.Palette); ok {
		return 4
	}
	switch m {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model:
		return 1
	case color.YCbCrModel, color.CMYKModel:
		return 3
	default:
		return 4
	}
}

func maxValue(img image.Image) float64 {
	switch img.(type) {
	case *image.Gray, *image.Alpha, *image.YCbCr, *image.CMYK, *image.RGBA,
		*image.NRGBA, *image.NYCbCrA, *image.Paletted:
		return 0xff
	default:
		return 0xffff
	}
}

// WhiteLevel returns the sample value that represents full intensity in seq.
// It decodes band 0 if it is not cached. Sequences whose bands are not Band
// values are assumed to be 8-bit.
func WhiteLevel(ctx context.Context, seq *sequence.Sequence) (float64, error) {
	img, err := seq.LoadImage(ctx, 0)
	if err != nil {
		return 0, err
	}
	if b, ok := img.(*Band); ok {
		return b.MaxValue(), nil
	}
	return 0xff, nil
}
