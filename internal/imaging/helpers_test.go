package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/scanseq-mcp/internal/sequence"
)

// writePNG encodes img into dir/name and returns the path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// writeTransparentGrayPNG encodes the gray image img into dir/name with a
// tRNS chunk marking key as the transparent gray level.
func writeTransparentGrayPNG(t *testing.T, dir, name string, img image.Image, key uint16) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	encoded := buf.Bytes()

	// tRNS goes right after the signature (8 bytes) and IHDR (25 bytes).
	chunk := make([]byte, 0, 14)
	chunk = binary.BigEndian.AppendUint32(chunk, 2)
	chunk = append(chunk, "tRNS"...)
	chunk = binary.BigEndian.AppendUint16(chunk, key)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	var out bytes.Buffer
	out.Write(encoded[:33])
	out.Write(chunk)
	out.Write(encoded[33:])

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// grayBand returns a width x height gray band whose pixel value is
// band*50 + y*10 + x.
func grayBand(band, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(band*50 + y*10 + x)})
		}
	}
	return img
}

// colorBand returns a width x height opaque band filled with c.
func colorBand(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// openBands writes each image as a band file in a fresh folder and opens the
// folder as a sequence.
func openBands(t *testing.T, bands ...image.Image) (*sequence.Sequence, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(bands))
	for i, img := range bands {
		paths[i] = writePNG(t, dir, fmt.Sprintf("band-%03d.png", i), img)
	}

	seq, err := sequence.OpenFolder(context.Background(), dir, sequence.WithLoader(NewDecoder()))
	if err != nil {
		t.Fatalf("OpenFolder failed: %v", err)
	}
	t.Cleanup(func() { seq.Close() })
	return seq, paths
}

// openComposite opens bands as a sequence and views it with an 8-bit white level.
func openComposite(t *testing.T, bands ...image.Image) (*Composite, []string) {
	t.Helper()
	seq, paths := openBands(t, bands...)
	c, err := NewComposite(context.Background(), seq, 0xff)
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}
	return c, paths
}

// boundsOnly is an image that reports large bounds without holding pixels.
type boundsOnly struct {
	rect image.Rectangle
}

func (b boundsOnly) ColorModel() color.Model { return color.GrayModel }
func (b boundsOnly) Bounds() image.Rectangle { return b.rect }
func (b boundsOnly) At(x, y int) color.Color { return color.Gray{} }
