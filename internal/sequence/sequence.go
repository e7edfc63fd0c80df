package sequence

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/scanseq-mcp/internal/logger"
)

// Sequence is a composite image made of bands stacked top to bottom in the
// order their paths were given to Open.
//
// The band list, per-band shapes and aggregate shape are fixed by Open. Band
// pixels are decoded on first use and held in a bounded cache; evicted bands
// are decoded again transparently when next read.
//
// # Example Usage
//
//	seq, err := sequence.OpenFolder(ctx, "/data/pass-07", sequence.WithLoader(imaging.NewDecoder()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer seq.Close()
//	v, err := seq.Pixel(120, 48213, 0)
type Sequence struct {
	paths  []string
	shapes []Shape
	// offsets[i] is the first global row of band i; offsets[len(paths)] is
	// the aggregate height.
	offsets []int
	shape   Shape

	cache *bandCache
	log   logger.Logger
}

// Open builds a Sequence from band paths in stacking order.
//
// Every band is probed for its shape (in parallel, bounded by
// WithProbeConcurrency) but none is decoded. Open fails with an error matching
// ErrInvalidSequence when paths is empty, a band cannot be probed, or a band's
// width or channel count differs from band 0.
func Open(ctx context.Context, paths []string, opts ...Option) (*Sequence, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loader == nil {
		return nil, errors.New("no band loader configured")
	}
	if len(paths) == 0 {
		return nil, invalidSequence("no bands")
	}

	shapes := make([]Shape, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.probeConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			shape, err := cfg.loader.Probe(path)
			if err != nil {
				return invalidBand(i, path, err)
			}
			if err := shape.Validate(); err != nil {
				return invalidBand(i, path, err)
			}
			shapes[i] = shape
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	first := shapes[0]
	offsets := make([]int, len(shapes)+1)
	for i, shape := range shapes {
		if !shape.Compatible(first) {
			return nil, invalidSequence("band %d (%s) has shape %v, band 0 has %v", i, paths[i], shape, first)
		}
		offsets[i+1] = offsets[i] + shape.Height
	}

	cache, err := newBandCache(cfg.cacheSize, cfg.loader, cfg.log, cfg.metrics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create band cache")
	}

	s := &Sequence{
		paths:   slices.Clone(paths),
		shapes:  shapes,
		offsets: offsets,
		shape: Shape{
			Width:    first.Width,
			Height:   offsets[len(shapes)],
			Channels: first.Channels,
		},
		cache: cache,
		log:   cfg.log,
	}
	s.log.Infof("opened sequence of %d bands, shape %v", len(paths), s.shape)
	return s, nil
}

// Shape returns the aggregate shape: the common width and channel count, and
// the summed height of all bands.
func (s *Sequence) Shape() Shape {
	return s.shape
}

// Len returns the number of bands.
func (s *Sequence) Len() int {
	return len(s.paths)
}

// Paths returns a copy of the band paths in stacking order.
func (s *Sequence) Paths() []string {
	return slices.Clone(s.paths)
}

// Path returns the locator of band i.
func (s *Sequence) Path(i int) (string, error) {
	if err := s.checkBand(i); err != nil {
		return "", err
	}
	return s.paths[i], nil
}

// BandShape returns the probed shape of band i.
func (s *Sequence) BandShape(i int) (Shape, error) {
	if err := s.checkBand(i); err != nil {
		return Shape{}, err
	}
	return s.shapes[i], nil
}

// BandOffset returns the first global row of band i.
func (s *Sequence) BandOffset(i int) (int, error) {
	if err := s.checkBand(i); err != nil {
		return 0, err
	}
	return s.offsets[i], nil
}

// Resident returns the number of bands currently decoded and cached.
func (s *Sequence) Resident() int {
	return s.cache.len()
}

func (s *Sequence) checkBand(i int) error {
	if i < 0 || i >= len(s.paths) {
		return outOfRange("band index %d not in [0,%d)", i, len(s.paths))
	}
	return nil
}

// Locate returns the band that owns global row y and the row within that band.
// Bands of height zero own no rows and are never returned.
func (s *Sequence) Locate(y int) (band, localY int, err error) {
	if y < 0 || y >= s.shape.Height {
		return 0, 0, outOfRange("row %d not in [0,%d)", y, s.shape.Height)
	}
	// First band whose end row is past y.
	band, _ = slices.BinarySearch(s.offsets[1:], y+1)
	return band, y - s.offsets[band], nil
}

// LoadImage returns decoded band index, loading it through the cache.
func (s *Sequence) LoadImage(ctx context.Context, index int) (ContiguousImage, error) {
	if err := s.checkBand(index); err != nil {
		return nil, err
	}
	return s.cache.get(ctx, index, s.paths[index], s.shapes[index])
}

// Pixel is PixelContext with a background context.
func (s *Sequence) Pixel(x, y, channel int) (float64, error) {
	return s.PixelContext(context.Background(), x, y, channel)
}

// PixelContext returns the sample at global coordinate (x, y) in channel.
//
// It fails with an error matching ErrOutOfRange for coordinates outside
// Shape(), with one matching ErrDecodeFailure if the owning band cannot be
// loaded, and with ctx.Err() if ctx ends while waiting for a decode.
func (s *Sequence) PixelContext(ctx context.Context, x, y, channel int) (float64, error) {
	if !s.shape.Contains(x, y, channel) {
		return 0, outOfRange("pixel (%d,%d) channel %d outside %v", x, y, channel, s.shape)
	}
	img, localY, err := s.band(ctx, y)
	if err != nil {
		return 0, err
	}
	return img.Sample(x, localY, channel)
}

// Channels is ChannelsContext with a background context.
func (s *Sequence) Channels(x, y int) ([]float64, error) {
	return s.ChannelsContext(context.Background(), x, y)
}

// ChannelsContext returns every channel of the pixel at (x, y), resolving the
// owning band once.
func (s *Sequence) ChannelsContext(ctx context.Context, x, y int) ([]float64, error) {
	if x < 0 || x >= s.shape.Width || y < 0 || y >= s.shape.Height {
		return nil, outOfRange("pixel (%d,%d) outside %v", x, y, s.shape)
	}
	img, localY, err := s.band(ctx, y)
	if err != nil {
		return nil, err
	}
	dst := make([]float64, s.shape.Channels)
	if err := samplePixel(img, x, localY, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func (s *Sequence) band(ctx context.Context, y int) (ContiguousImage, int, error) {
	b, localY, err := s.Locate(y)
	if err != nil {
		return nil, 0, err
	}
	img, err := s.cache.get(ctx, b, s.paths[b], s.shapes[b])
	if err != nil {
		return nil, 0, err
	}
	return img, localY, nil
}

// Close releases every cached band. Lookups after Close fail with ErrClosed.
// Calling Close more than once is harmless.
func (s *Sequence) Close() error {
	s.cache.close()
	return nil
}
