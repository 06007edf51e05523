package scanner

import "time"

// Config controls fetch behavior. All values are injected so tests can run
// with tight timeouts and deterministic settings.
type Config struct {
	// MaxConcurrency bounds the fan-out; the 8 file fetches are
	// independent, so by default all run at once.
	MaxConcurrency int `yaml:"max_concurrency"`

	// FileTimeout is the per-file request deadline. A hanging fetch must
	// not stall the others, so each request carries its own deadline.
	FileTimeout time.Duration `yaml:"file_timeout"`

	// PreflightTimeout bounds the initial connectivity check.
	PreflightTimeout time.Duration `yaml:"preflight_timeout"`

	// RatePerSecond throttles outbound requests against the target host.
	// Zero disables throttling.
	RatePerSecond float64 `yaml:"rate_per_second"`

	// RateBurst is the limiter burst size when throttling is enabled.
	RateBurst int `yaml:"rate_burst"`
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency:   8,
		FileTimeout:      8 * time.Second,
		PreflightTimeout: 8 * time.Second,
		RatePerSecond:    0,
		RateBurst:        8,
	}
}
