package sequence

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/scanseq-mcp/internal/logger"
)

// bandCache holds recently decoded bands keyed by band index.
//
// Lookups of cached bands only touch the LRU. A miss goes through a
// singleflight group keyed by index, so each band has at most one decode in
// flight and every concurrent caller for that band shares its result.
type bandCache struct {
	loader  BandLoader
	log     logger.Logger
	metrics *Metrics

	bands  *lru.Cache[int, ContiguousImage]
	flight singleflight.Group

	// mu orders inserts against Close; closed is read without it on the hot path.
	mu     sync.Mutex
	closed atomic.Bool
}

func newBandCache(capacity int, loader BandLoader, log logger.Logger, metrics *Metrics) (*bandCache, error) {
	c := &bandCache{
		loader:  loader,
		log:     log,
		metrics: metrics,
	}
	bands, err := lru.NewWithEvict[int, ContiguousImage](capacity, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.bands = bands
	return c, nil
}

// onEvict releases a dropped band. Bands purged by close are not counted as
// evictions; closed is already set when close purges.
func (c *bandCache) onEvict(index int, img ContiguousImage) {
	if !c.closed.Load() {
		c.metrics.eviction()
		c.log.Debugf("evicted band %d", index)
	}
	release(img)
}

func release(img ContiguousImage) {
	if r, ok := img.(Releaser); ok {
		r.Release()
	}
}

// get returns band index, decoding path on a miss. The decoded band must have
// the shape recorded when the sequence was opened. If ctx ends first, get
// returns ctx.Err() and the decode carries on for the benefit of other callers.
func (c *bandCache) get(ctx context.Context, index int, path string, want Shape) (ContiguousImage, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if img, ok := c.bands.Get(index); ok {
		c.metrics.hit()
		return img, nil
	}
	c.metrics.miss()

	ch := c.flight.DoChan(strconv.Itoa(index), func() (interface{}, error) {
		return c.load(index, path, want)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ContiguousImage), nil
	}
}

// load runs inside the singleflight group, at most once per index at a time.
func (c *bandCache) load(index int, path string, want Shape) (ContiguousImage, error) {
	// A flight for this index may have finished between our miss and now.
	if img, ok := c.bands.Peek(index); ok {
		return img, nil
	}

	c.metrics.decode()
	img, err := c.loader.Load(path)
	if err != nil {
		c.metrics.decodeFailure()
		c.log.Errorf("failed to decode band %d (%s): %v", index, path, err)
		return nil, &DecodeError{Index: index, Path: path, Err: err}
	}
	if got := img.Shape(); got != want {
		release(img)
		c.metrics.decodeFailure()
		err = errors.Errorf("decoded shape %v differs from probed shape %v", got, want)
		c.log.Errorf("failed to decode band %d (%s): %v", index, path, err)
		return nil, &DecodeError{Index: index, Path: path, Err: err}
	}
	c.log.Debugf("decoded band %d (%s)", index, path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		release(img)
		return nil, ErrClosed
	}
	c.bands.Add(index, img)
	return img, nil
}

// len reports how many bands are resident.
func (c *bandCache) len() int {
	return c.bands.Len()
}

// close drops every cached band. Later gets fail with ErrClosed.
func (c *bandCache) close() {
	c.mu.Lock()
	if c.closed.Swap(true) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.bands.Purge()
}
