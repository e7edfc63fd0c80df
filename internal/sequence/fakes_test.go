package sequence

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// bandValue is the sample every test band reports, so tests can predict any
// pixel from its band index and local coordinate.
func bandValue(band, x, y, c int) float64 {
	return float64(band*10000 + y*100 + x*10 + c)
}

// memBand is an in-memory ContiguousImage.
type memBand struct {
	index    int
	shape    Shape
	released *atomic.Int32
}

func (b *memBand) Shape() Shape { return b.shape }

func (b *memBand) Sample(x, y, c int) (float64, error) {
	if !b.shape.Contains(x, y, c) {
		return 0, outOfRange("local (%d,%d,%d) outside %v", x, y, c, b.shape)
	}
	return bandValue(b.index, x, y, c), nil
}

func (b *memBand) Release() { b.released.Add(1) }

// fakeLoader serves memBands by path. Band index is the position of the path
// in the order bands were added. Loads can be gated and failures injected.
type fakeLoader struct {
	mu       sync.Mutex
	shapes   map[string]Shape
	index    map[string]int
	probeErr map[string]error
	loadErr  map[string]error
	drift    map[string]Shape

	// gate, when non-nil, blocks every Load until it is closed.
	gate    chan struct{}
	started chan string

	decodes  atomic.Int32
	released atomic.Int32
	ext      string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		shapes:   map[string]Shape{},
		index:    map[string]int{},
		probeErr: map[string]error{},
		loadErr:  map[string]error{},
		drift:    map[string]Shape{},
	}
}

// add registers a band and returns its path.
func (l *fakeLoader) add(shape Shape) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := len(l.shapes)
	path := filepath.Join("bands", fmt.Sprintf("band-%03d.raw", i))
	l.shapes[path] = shape
	l.index[path] = i
	return path
}

func (l *fakeLoader) addN(n int, shape Shape) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = l.add(shape)
	}
	return paths
}

func (l *fakeLoader) setLoadErr(path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.loadErr, path)
		return
	}
	l.loadErr[path] = err
}

func (l *fakeLoader) Probe(path string) (Shape, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.probeErr[path]; err != nil {
		return Shape{}, err
	}
	shape, ok := l.shapes[filepath.Join("bands", filepath.Base(path))]
	if !ok {
		return Shape{}, errors.Errorf("no such band %s", path)
	}
	return shape, nil
}

func (l *fakeLoader) Load(path string) (ContiguousImage, error) {
	l.decodes.Add(1)
	if l.started != nil {
		l.started <- path
	}
	if l.gate != nil {
		<-l.gate
	}

	key := filepath.Join("bands", filepath.Base(path))
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.loadErr[key]; err != nil {
		return nil, err
	}
	shape, ok := l.shapes[key]
	if !ok {
		return nil, errors.Errorf("no such band %s", path)
	}
	if d, ok := l.drift[key]; ok {
		shape = d
	}
	return &memBand{index: l.index[key], shape: shape, released: &l.released}, nil
}

func (l *fakeLoader) Supports(name string) bool {
	return l.ext == "" || filepath.Ext(name) == l.ext
}
