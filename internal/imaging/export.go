package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
)

// DefaultJPEGQuality is used for .jpg and .jpeg exports.
const DefaultJPEGQuality = 95

// ExportResult describes a written region.
type ExportResult struct {
	Path          string `json:"path"`
	Format        string `json:"format"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// Export renders region of img the same way Crop does and writes it to path.
// The encoder is chosen by the extension of path: .png, .jpg, .jpeg or .bmp.
// An existing file at path is overwritten.
func Export(img image.Image, region Region, scale float64, path string) (*ExportResult, error) {
	enc, format, err := encoderFor(path)
	if err != nil {
		return nil, err
	}

	out, err := render(img, region, scale)
	if err != nil {
		return nil, err
	}

	if err := imgio.Save(path, out, enc); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ExportResult{
		Path:          path,
		Format:        format,
		Width:         out.Bounds().Dx(),
		Height:        out.Bounds().Dy(),
		FileSizeBytes: stat.Size(),
	}, nil
}

func encoderFor(path string) (imgio.Encoder, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imgio.PNGEncoder(), "png", nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(DefaultJPEGQuality), "jpeg", nil
	case ".bmp":
		return imgio.BMPEncoder(), "bmp", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q: use .png, .jpg or .bmp", filepath.Ext(path))
	}
}
