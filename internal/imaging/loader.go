package imaging

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/scanseq-mcp/internal/sequence"
)

// formatByExt maps lowercase file extensions to format names.
var formatByExt = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".tif":  "tiff",
	".tiff": "tiff",
	".bmp":  "bmp",
}

// Decoder loads band files with the registered Go image codecs.
//
// Decoder implements sequence.BandLoader. Probe reads only the file header via
// image.DecodeConfig; Load decodes the whole file. Both take the channel
// count from the same header read, so a probed shape always matches the
// decoded band.
//
// Decoder holds no state and is safe for concurrent use.
//
// # Example Usage
//
//	seq, err := sequence.OpenFolder(ctx, "/scans/run-42",
//	    sequence.WithLoader(imaging.NewDecoder()))
type Decoder struct{}

var _ sequence.BandLoader = (*Decoder)(nil)

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Supports reports whether name has an image extension this decoder reads.
// Matching is case-insensitive.
func (d *Decoder) Supports(name string) bool {
	return formatOf(name) != "unknown"
}

// Probe returns the shape of the image at path without decoding pixel data.
func (d *Decoder) Probe(path string) (sequence.Shape, error) {
	cfg, channels, err := readHeader(path)
	if err != nil {
		return sequence.Shape{}, err
	}
	return sequence.Shape{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Channels: channels,
	}, nil
}

// Load decodes the image at path into a Band with the channel count Probe
// reports. Codecs may decode into a wider color model than the header
// announces (an Adobe RGB JPEG decodes to RGBA); the extra channels are
// dropped.
func (d *Decoder) Load(path string) (sequence.ContiguousImage, error) {
	_, channels, err := readHeader(path)
	if err != nil {
		return nil, err
	}
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return newBand(img, channels), nil
}

// readHeader returns the image config at path and the band channel count.
//
// Gray PNGs with a tRNS chunk announce a gray model but decode with alpha,
// so they count as 4 channels.
func readHeader(path string) (image.Config, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	channels := channelCount(cfg.ColorModel)

	if format == "png" && channels == 1 {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return image.Config{}, 0, fmt.Errorf("failed to rewind image: %w", err)
		}
		transparent, err := pngHasTransparency(f)
		if err != nil {
			return image.Config{}, 0, fmt.Errorf("failed to read image header: %w", err)
		}
		if transparent {
			channels = 4
		}
	}
	return cfg, channels, nil
}

// pngHasTransparency reports whether a tRNS chunk precedes the first IDAT
// chunk of the PNG stream r. A stream that ends before any pixel data has
// no transparency.
func pngHasTransparency(r io.Reader) (bool, error) {
	br := bufio.NewReader(r)
	if _, err := br.Discard(8); err != nil { // signature
		return false, err
	}

	var hdr [8]byte
	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return false, nil
			}
			return false, err
		}
		switch string(hdr[4:]) {
		case "tRNS":
			return true, nil
		case "IDAT", "IEND":
			return false, nil
		}
		// Skip the chunk data and its CRC.
		length := int64(binary.BigEndian.Uint32(hdr[:4]))
		if _, err := io.CopyN(io.Discard, br, length+4); err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
	}
}

// BandInfo contains metadata about one band file.
type BandInfo struct {
	// Index is the band position within its sequence.
	Index int `json:"index"`

	// Path is the band locator.
	Path string `json:"path"`

	// Offset is the global row of the band's first row.
	Offset int `json:"offset"`

	// Width, Height and Channels are the probed band shape.
	Width    int `json:"width"`
	Height   int `json:"height"`
	Channels int `json:"channels"`

	// Format is the format implied by the file extension: "png", "jpeg",
	// "gif", "tiff", "bmp", or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the band file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// DescribeBands returns metadata for every band of seq, in band order.
//
// Shapes come from the probe done when the sequence was opened, so no band is
// decoded. The only I/O is a stat of each file.
func DescribeBands(seq *sequence.Sequence) ([]BandInfo, error) {
	infos := make([]BandInfo, 0, seq.Len())
	for i, path := range seq.Paths() {
		shape, err := seq.BandShape(i)
		if err != nil {
			return nil, err
		}
		offset, err := seq.BandOffset(i)
		if err != nil {
			return nil, err
		}
		stat, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		infos = append(infos, BandInfo{
			Index:         i,
			Path:          path,
			Offset:        offset,
			Width:         shape.Width,
			Height:        shape.Height,
			Channels:      shape.Channels,
			Format:        formatOf(path),
			FileSizeBytes: stat.Size(),
		})
	}
	return infos, nil
}

func formatOf(path string) string {
	if f, ok := formatByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return "unknown"
}
