// Package hdrhistogram implements a bounded-range histogram with
// logarithmically spaced buckets over a known value domain. Unlike
// DDSketch or MomentSketch, its bucket count is fixed at construction
// and never grows: the domain boundaries must be known a priori.
package hdrhistogram

import (
	"fmt"

	"github.com/quantileflow/sketches/sketchcore"
)

// Config holds the construction parameters for an HDRHistogram.
type Config struct {
	// MinValue is the smallest representable value; anything inserted
	// below it is clamped up to it.
	MinValue float64 `yaml:"min_value"`

	// MaxValue is the largest representable value; anything inserted
	// above it is clamped down to it.
	MaxValue float64 `yaml:"max_value"`

	// NumBuckets is N, the fixed number of logarithmically spaced
	// buckets spanning [MinValue, MaxValue].
	NumBuckets int `yaml:"num_buckets"`
}

// DefaultConfig returns a Config spanning a millisecond-to-minute
// latency range with 100 buckets, a typical latency-histogram shape.
func DefaultConfig() Config {
	return Config{
		MinValue:   1,
		MaxValue:   60000,
		NumBuckets: 100,
	}
}

// Validate checks that the configuration describes a constructible
// HDRHistogram.
func (c *Config) Validate() error {
	if c.MinValue <= 0 {
		return fmt.Errorf("min_value must be positive: %w", sketchcore.ErrInvalidParameter)
	}
	if c.MaxValue <= c.MinValue {
		return fmt.Errorf("max_value must exceed min_value: %w", sketchcore.ErrInvalidParameter)
	}
	if c.NumBuckets < 1 {
		return fmt.Errorf("num_buckets must be at least 1: %w", sketchcore.ErrInvalidParameter)
	}
	return nil
}
