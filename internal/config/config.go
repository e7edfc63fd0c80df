// Package config reads the server settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ironsheep/scanseq-mcp/internal/logger"
	"github.com/ironsheep/scanseq-mcp/internal/sequence"
)

// Environment variable names.
const (
	EnvLogLevel     = "SCANSEQ_LOG_LEVEL"
	EnvCacheBands   = "SCANSEQ_CACHE_BANDS"
	EnvProbeWorkers = "SCANSEQ_PROBE_WORKERS"
	EnvMetricsAddr  = "SCANSEQ_METRICS_ADDR"
)

// Config holds the settings the binary needs at startup.
type Config struct {
	// LogLevel is the minimum level written to stderr.
	LogLevel logger.Level

	// CacheBands is the number of decoded bands each open sequence keeps.
	CacheBands int

	// ProbeWorkers bounds concurrent header reads when a sequence is opened.
	ProbeWorkers int

	// MetricsAddr is the listen address of the /metrics endpoint. Empty
	// disables it.
	MetricsAddr string
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		LogLevel:     logger.LevelInfo,
		CacheBands:   sequence.DefaultCacheSize,
		ProbeWorkers: sequence.DefaultProbeConcurrency,
	}
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a configuration from lookup, starting from Default. Unset or
// blank variables keep their defaults; malformed values are an error.
func Load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := get(lookup, EnvLogLevel); ok {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return cfg, errors.Wrap(err, EnvLogLevel)
		}
		cfg.LogLevel = level
	}

	var err error
	if cfg.CacheBands, err = positiveInt(lookup, EnvCacheBands, cfg.CacheBands); err != nil {
		return cfg, err
	}
	if cfg.ProbeWorkers, err = positiveInt(lookup, EnvProbeWorkers, cfg.ProbeWorkers); err != nil {
		return cfg, err
	}

	if v, ok := get(lookup, EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	return cfg, nil
}

// SequenceOptions returns the sequence options implied by cfg.
func (c Config) SequenceOptions() []sequence.Option {
	return []sequence.Option{
		sequence.WithCacheSize(c.CacheBands),
		sequence.WithProbeConcurrency(c.ProbeWorkers),
	}
}

func get(lookup func(string) (string, bool), name string) (string, bool) {
	v, ok := lookup(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func positiveInt(lookup func(string) (string, bool), name string, def int) (int, error) {
	v, ok := get(lookup, name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, errors.Wrapf(err, "%s: not an integer", name)
	}
	if n < 1 {
		return def, errors.Errorf("%s: must be at least 1, got %d", name, n)
	}
	return n, nil
}
