package ddsketch

import (
	"fmt"
	"math"
	"runtime"

	"github.com/quantileflow/sketches/ddsketch/mapping"
	"github.com/quantileflow/sketches/ddsketch/store"
	"github.com/quantileflow/sketches/sketchcore"
)

func init() {
	sketchcore.Register("ddsketch", func() sketchcore.Sketch {
		s, err := New(DefaultConfig())
		if err != nil {
			panic(fmt.Sprintf("ddsketch: default config must construct cleanly: %v", err))
		}
		return s
	})
}

// DDSketch is a fully-mergeable quantile sketch with a guaranteed
// relative-error bound, based on Masson, Rim & Lee, "DDSketch: A fast
// and fully-mergeable quantile sketch with relative-error guarantees."
// Positive and negative values are tracked in independent stores; exact
// zeros are counted separately since no mapping can index them.
type DDSketch struct {
	config        Config
	mapping       mapping.IndexMapping
	positiveStore store.Store
	negativeStore store.Store // nil when !config.ContinuesNegative
	zeroCount     uint64

	count uint64
	sum   float64
	min   float64
	max   float64
}

// New constructs a DDSketch from the given configuration.
func New(config Config) (*DDSketch, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m, err := newMapping(config.MappingKind, config.RelativeAccuracy)
	if err != nil {
		return nil, err
	}

	var negativeStore store.Store
	if config.ContinuesNegative {
		negativeStore = newStore(config)
	}

	return &DDSketch{
		config:        config,
		mapping:       m,
		positiveStore: newStore(config),
		negativeStore: negativeStore,
		min:           math.Inf(1),
		max:           math.Inf(-1),
	}, nil
}

func newMapping(kind MappingKind, relativeAccuracy float64) (mapping.IndexMapping, error) {
	switch kind {
	case MappingLogarithmic:
		return mapping.NewLogarithmicMapping(relativeAccuracy)
	case MappingLinear:
		return mapping.NewLinearInterpolationMapping(relativeAccuracy)
	case MappingCubic:
		return mapping.NewCubicInterpolationMapping(relativeAccuracy)
	default:
		return nil, fmt.Errorf("unknown mapping kind %q: %w", kind, sketchcore.ErrInvalidParameter)
	}
}

func newStore(config Config) store.Store {
	if config.StorageKind == StorageDense {
		return store.NewDenseStore(config.MaxBuckets)
	}
	return store.NewSparseStore(config.storeStrategy(), config.MaxBuckets)
}

// Insert adds a single occurrence of value to the sketch.
func (d *DDSketch) Insert(value float64) error {
	return d.InsertWithCount(value, 1)
}

// InsertWithCount adds count occurrences of value to the sketch.
func (d *DDSketch) InsertWithCount(value float64, count uint64) error {
	if count == 0 {
		return nil
	}

	switch {
	case value == 0:
		d.zeroCount += count
	case value > 0:
		if value < d.mapping.MinIndexableValue() {
			sketchcore.Warn("value below the mapping's indexable range, treating as zero", nil)
			d.zeroCount += count
		} else {
			d.positiveStore.Add(d.mapping.Index(value), count)
		}
	default: // value < 0
		if !d.config.ContinuesNegative {
			return ErrNegativesDisabled
		}
		magnitude := -value
		if magnitude < d.mapping.MinIndexableValue() {
			sketchcore.Warn("value below the mapping's indexable range, treating as zero", nil)
			d.zeroCount += count
		} else {
			d.negativeStore.Add(d.mapping.Index(magnitude), count)
		}
	}

	d.count += count
	d.sum += value * float64(count)
	if value < d.min {
		d.min = value
	}
	if value > d.max {
		d.max = value
	}
	return nil
}

// Delete removes a single occurrence of value from the sketch. Deleting
// a value whose bucket is empty or has already been collapsed away (by
// a Fixed or Dynamic cap) is a no-op that logs a warning: the count it
// represented is no longer individually addressable, so there is
// nothing correct to decrement.
func (d *DDSketch) Delete(value float64) error {
	return d.DeleteWithCount(value, 1)
}

// DeleteWithCount removes count occurrences of value from the sketch.
func (d *DDSketch) DeleteWithCount(value float64, count uint64) error {
	if count == 0 {
		return nil
	}
	if count > d.count {
		count = d.count
	}

	var removed uint64
	switch {
	case value == 0:
		if count > d.zeroCount {
			count = d.zeroCount
		}
		d.zeroCount -= count
		removed = count
	case value > 0:
		removed = d.positiveStore.Remove(d.mapping.Index(value), count)
	default:
		if !d.config.ContinuesNegative {
			return ErrNegativesDisabled
		}
		removed = d.negativeStore.Remove(d.mapping.Index(-value), count)
	}
	if removed == 0 {
		sketchcore.Warn("delete of a value with no remaining count in its bucket", nil)
	}

	d.count -= removed
	d.sum -= value * float64(removed)
	return nil
}

// Quantile returns the value at quantile q ∈ [0, 1], scanning the
// negative store in descending index order (most negative value first),
// then the zero bucket, then the positive store in ascending index
// order, returning the value at the 1-indexed rank ⌈q·count⌉ where it
// falls.
func (d *DDSketch) Quantile(q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile must be in [0, 1], got %v: %w", q, sketchcore.ErrInvalidParameter)
	}
	if d.count == 0 {
		return 0, sketchcore.ErrEmptySketch
	}

	rank := uint64(math.Ceil(q * float64(d.count)))
	if rank < 1 {
		rank = 1
	}

	negativeCount := uint64(0)
	if d.negativeStore != nil {
		negativeCount = d.negativeStore.TotalCount()
	}

	switch {
	case rank <= negativeCount:
		// The rank-th smallest value overall is the (negativeCount-rank+1)-th
		// smallest magnitude, scanning the negative store ascending by index.
		key := d.negativeStore.KeyAtRank(negativeCount - rank + 1)
		return -d.mapping.Value(key), nil
	case rank <= negativeCount+d.zeroCount:
		return 0, nil
	default:
		key := d.positiveStore.KeyAtRank(rank - negativeCount - d.zeroCount)
		return d.mapping.Value(key), nil
	}
}

// Count returns the total number of values inserted into the sketch.
func (d *DDSketch) Count() uint64 {
	return d.count
}

// Min returns the smallest value inserted into the sketch.
func (d *DDSketch) Min() (float64, error) {
	if d.count == 0 {
		return 0, sketchcore.ErrEmptySketch
	}
	return d.min, nil
}

// Max returns the largest value inserted into the sketch.
func (d *DDSketch) Max() (float64, error) {
	if d.count == 0 {
		return 0, sketchcore.ErrEmptySketch
	}
	return d.max, nil
}

// Sum returns the running sum of all values inserted into the sketch.
func (d *DDSketch) Sum() (float64, error) {
	if d.count == 0 {
		return 0, sketchcore.ErrEmptySketch
	}
	return d.sum, nil
}

// RelativeAccuracy returns the α this sketch was constructed with.
func (d *DDSketch) RelativeAccuracy() float64 {
	return d.config.RelativeAccuracy
}

// ContinuesNegative reports whether this sketch tracks negative values.
func (d *DDSketch) ContinuesNegative() bool {
	return d.config.ContinuesNegative
}

// MaxBuckets returns the configured bucket cap, or -1 under the
// Unlimited strategy. Under Dynamic it returns the configured value,
// which the stores do not use: each derives its current cap from its
// own total count via store.DynamicCap.
func (d *DDSketch) MaxBuckets() int {
	if d.config.BucketStrategy == StrategyUnlimited {
		return -1
	}
	return d.config.MaxBuckets
}

// Merge folds other into d. Both sketches must share an equivalent
// mapping; merging across mapping kinds or accuracy levels is rejected
// rather than silently producing a sketch with an undefined error
// bound.
func (d *DDSketch) Merge(other *DDSketch) error {
	if !d.mapping.Equals(other.mapping) {
		return ErrIncompatibleMapping
	}
	if d.config.ContinuesNegative != other.config.ContinuesNegative {
		return ErrIncompatibleMapping
	}

	d.positiveStore.Merge(other.positiveStore)
	if d.negativeStore != nil && other.negativeStore != nil {
		d.negativeStore.Merge(other.negativeStore)
	}
	d.zeroCount += other.zeroCount
	d.count += other.count
	d.sum += other.sum
	if other.min < d.min {
		d.min = other.min
	}
	if other.max > d.max {
		d.max = other.max
	}
	return nil
}

// Copy returns a deep, independent copy of the sketch.
func (d *DDSketch) Copy() *DDSketch {
	cp := &DDSketch{
		config:        d.config,
		mapping:       d.mapping,
		positiveStore: d.positiveStore.Copy(),
		zeroCount:     d.zeroCount,
		count:         d.count,
		sum:           d.sum,
		min:           d.min,
		max:           d.max,
	}
	if d.negativeStore != nil {
		cp.negativeStore = d.negativeStore.Copy()
	}
	return cp
}

// Resources reports the sketch's own memory footprint and shape,
// intended for the same diagnostic surface the streaming service uses
// for process-level metrics.
func (d *DDSketch) Resources() map[string]float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	buckets := d.positiveStore.BucketCount()
	memBytes := d.positiveStore.MemoryUsageBytes()
	if d.negativeStore != nil {
		buckets += d.negativeStore.BucketCount()
		memBytes += d.negativeStore.MemoryUsageBytes()
	}

	return map[string]float64{
		"sketch_count":        float64(d.count),
		"sketch_buckets":      float64(buckets),
		"sketch_memory_bytes": float64(memBytes),
	}
}
