package sequence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts band cache activity. A nil *Metrics records nothing, so
// sequences opened without WithMetrics pay no cost.
//
// One Metrics value may be shared by any number of sequences.
type Metrics struct {
	hits           prometheus.Counter
	misses         prometheus.Counter
	decodes        prometheus.Counter
	decodeFailures prometheus.Counter
	evictions      prometheus.Counter
}

// NewMetrics creates the band cache counters and registers them on reg.
// It panics if the counters are already registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: "scanseq",
			Subsystem: "band_cache",
			Name:      name,
			Help:      help,
		}
	}
	return &Metrics{
		hits:           factory.NewCounter(opts("hits_total", "Band lookups served from the cache.")),
		misses:         factory.NewCounter(opts("misses_total", "Band lookups that found no cached band.")),
		decodes:        factory.NewCounter(opts("decodes_total", "Band decodes started.")),
		decodeFailures: factory.NewCounter(opts("decode_failures_total", "Band decodes that returned an error.")),
		evictions:      factory.NewCounter(opts("evictions_total", "Bands dropped from the cache to make room. Bands released by Close are not counted.")),
	}
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) decode() {
	if m != nil {
		m.decodes.Inc()
	}
}

func (m *Metrics) decodeFailure() {
	if m != nil {
		m.decodeFailures.Inc()
	}
}

func (m *Metrics) eviction() {
	if m != nil {
		m.evictions.Inc()
	}
}
