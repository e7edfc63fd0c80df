package sequence

import "github.com/ironsheep/scanseq-mcp/internal/logger"

const (
	// DefaultCacheSize is the number of decoded bands kept when WithCacheSize
	// is not given.
	DefaultCacheSize = 8

	// DefaultProbeConcurrency bounds how many band headers Open reads at once.
	DefaultProbeConcurrency = 8
)

type config struct {
	loader           BandLoader
	cacheSize        int
	probeConcurrency int
	log              logger.Logger
	metrics          *Metrics
}

func defaultConfig() config {
	return config{
		cacheSize:        DefaultCacheSize,
		probeConcurrency: DefaultProbeConcurrency,
		log:              logger.Null{},
	}
}

// Option configures Open and OpenFolder.
type Option func(*config)

// WithLoader sets the decoder used to probe and load bands. It is required.
func WithLoader(l BandLoader) Option {
	return func(c *config) { c.loader = l }
}

// WithCacheSize bounds the number of decoded bands held in memory.
// Values below 1 are treated as 1.
func WithCacheSize(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.cacheSize = n
	}
}

// WithProbeConcurrency bounds how many band headers are probed in parallel
// while opening. Values below 1 are treated as 1.
func WithProbeConcurrency(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.probeConcurrency = n
	}
}

// WithLogger routes band load, failure and eviction messages to l.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records band cache activity in m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}
