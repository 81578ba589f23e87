package ddsketch

import (
	"fmt"

	"github.com/quantileflow/sketches/ddsketch/store"
	"github.com/quantileflow/sketches/sketchcore"
)

// MappingKind selects the value-to-index strategy a DDSketch uses.
type MappingKind string

const (
	MappingLogarithmic MappingKind = "logarithmic"
	MappingLinear      MappingKind = "linear"
	MappingCubic       MappingKind = "cubic"
)

// StorageKind selects the bucket-count storage a DDSketch uses.
type StorageKind string

const (
	StorageDense  StorageKind = "dense"
	StorageSparse StorageKind = "sparse"
)

// BucketStrategy selects how a DDSketch bounds its distinct bucket
// count. The string form is what Config carries over YAML; it is
// resolved to a store.BucketManagementStrategy during construction.
type BucketStrategy string

const (
	StrategyFixed     BucketStrategy = "fixed"
	StrategyDynamic   BucketStrategy = "dynamic"
	StrategyUnlimited BucketStrategy = "unlimited"
)

// Config holds the construction parameters for a DDSketch.
type Config struct {
	// RelativeAccuracy is α, the guaranteed worst-case relative error
	// on any reported quantile.
	RelativeAccuracy float64 `yaml:"relative_accuracy"`

	// MappingKind chooses the index-mapping implementation.
	MappingKind MappingKind `yaml:"mapping_kind"`

	// StorageKind chooses dense or sparse bucket storage. Dense storage
	// only supports the fixed bucket strategy.
	StorageKind StorageKind `yaml:"storage_kind"`

	// BucketStrategy bounds how many distinct indices the store keeps.
	BucketStrategy BucketStrategy `yaml:"bucket_strategy"`

	// MaxBuckets is the hard cap under the fixed strategy, and is
	// ignored (with a logged warning) under the unlimited strategy.
	MaxBuckets int `yaml:"max_buckets"`

	// ContinuesNegative enables a mirrored negative-value store plus an
	// exact zero-count bucket, so the sketch can index the full real
	// line instead of only positive values.
	ContinuesNegative bool `yaml:"continues_negative"`
}

// DefaultConfig returns sensible defaults: a logarithmic mapping backed
// by a sparse, dynamically capped store that also tracks negatives.
func DefaultConfig() Config {
	return Config{
		RelativeAccuracy:  0.01,
		MappingKind:       MappingLogarithmic,
		StorageKind:       StorageSparse,
		BucketStrategy:    StrategyDynamic,
		MaxBuckets:        2048,
		ContinuesNegative: true,
	}
}

// Validate checks that the configuration describes a constructible
// DDSketch.
func (c *Config) Validate() error {
	if c.RelativeAccuracy <= 0 || c.RelativeAccuracy >= 1 {
		return fmt.Errorf("relative accuracy must be in (0, 1): %w", sketchcore.ErrInvalidParameter)
	}

	switch c.MappingKind {
	case MappingLogarithmic, MappingLinear, MappingCubic:
	default:
		return fmt.Errorf("unknown mapping kind %q: %w", c.MappingKind, sketchcore.ErrInvalidParameter)
	}

	switch c.StorageKind {
	case StorageDense, StorageSparse:
	default:
		return fmt.Errorf("unknown storage kind %q: %w", c.StorageKind, sketchcore.ErrInvalidParameter)
	}

	switch c.BucketStrategy {
	case StrategyFixed, StrategyDynamic, StrategyUnlimited:
	default:
		return fmt.Errorf("unknown bucket strategy %q: %w", c.BucketStrategy, sketchcore.ErrInvalidParameter)
	}

	if c.StorageKind == StorageDense && c.BucketStrategy != StrategyFixed {
		return fmt.Errorf("dense storage only supports the fixed bucket strategy: %w", sketchcore.ErrIncompatibleStorage)
	}

	if c.BucketStrategy == StrategyFixed && c.MaxBuckets <= 0 {
		return fmt.Errorf("max_buckets must be positive under the fixed strategy: %w", sketchcore.ErrInvalidParameter)
	}

	return nil
}

func (c *Config) storeStrategy() store.BucketManagementStrategy {
	switch c.BucketStrategy {
	case StrategyFixed:
		return store.Fixed
	case StrategyDynamic:
		return store.Dynamic
	default:
		return store.Unlimited
	}
}
