package sequence

// ContiguousImage is one decoded band. Implementations come from decoders;
// the sequence never depends on a concrete type.
type ContiguousImage interface {
	// Shape is constant for the lifetime of the image.
	Shape() Shape

	// Sample returns the value at a local coordinate. It fails with an error
	// matching ErrOutOfRange when (x, y, channel) is outside Shape().
	Sample(x, y, channel int) (float64, error)
}

// PixelSampler is an optional extension of ContiguousImage that reads every
// channel of one pixel in a single call. dst has length Shape().Channels.
type PixelSampler interface {
	SamplePixel(x, y int, dst []float64) error
}

// Releaser is an optional extension of ContiguousImage. Release is called once
// when the band cache drops the image, either on eviction or on Close.
// Callers that fetched the image before it was dropped may still be reading
// it, so Release must not invalidate data those reads depend on.
type Releaser interface {
	Release()
}

// BandLoader turns band locators into images. Implementations must be safe
// for concurrent use and must decode the same file to the same data every time.
type BandLoader interface {
	// Probe reads only enough of path to report its shape.
	Probe(path string) (Shape, error)

	// Load fully decodes path.
	Load(path string) (ContiguousImage, error)
}

// nameFilter is implemented by loaders that only handle some file names.
// OpenFolder uses it to pick eligible directory entries.
type nameFilter interface {
	Supports(name string) bool
}

// samplePixel fills dst from img, using PixelSampler when available.
func samplePixel(img ContiguousImage, x, y int, dst []float64) error {
	if ps, ok := img.(PixelSampler); ok {
		return ps.SamplePixel(x, y, dst)
	}
	for c := range dst {
		v, err := img.Sample(x, y, c)
		if err != nil {
			return err
		}
		dst[c] = v
	}
	return nil
}
