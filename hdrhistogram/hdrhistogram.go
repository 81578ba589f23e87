package hdrhistogram

import (
	"fmt"
	"math"

	"github.com/quantileflow/sketches/sketchcore"
)

func init() {
	sketchcore.Register("hdrhistogram", func() sketchcore.Sketch {
		s, err := New(DefaultConfig())
		if err != nil {
			panic(fmt.Sprintf("hdrhistogram: default config must construct cleanly: %v", err))
		}
		return s
	})
}

// HDRHistogram is a bounded-range histogram with a fixed number of
// logarithmically spaced buckets: well suited to latency-style data
// whose domain is known in advance, in exchange for no ability to grow
// beyond it.
type HDRHistogram struct {
	config Config

	logMin       float64
	logSpan      float64
	bucketCounts []uint64
	totalCount   uint64
}

// New constructs an empty HDRHistogram from the given configuration.
func New(config Config) (*HDRHistogram, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HDRHistogram{
		config:       config,
		logMin:       math.Log(config.MinValue),
		logSpan:      math.Log(config.MaxValue) - math.Log(config.MinValue),
		bucketCounts: make([]uint64, config.NumBuckets),
	}, nil
}

// bucketFor maps a clamped value to its bucket index.
func (h *HDRHistogram) bucketFor(value float64) int {
	if value < h.config.MinValue {
		value = h.config.MinValue
	}
	if value > h.config.MaxValue {
		value = h.config.MaxValue
	}

	n := h.config.NumBuckets
	if h.logSpan == 0 {
		return 0
	}
	b := int(math.Floor(float64(n) * (math.Log(value) - h.logMin) / h.logSpan))
	if b < 0 {
		b = 0
	}
	if b >= n {
		b = n - 1
	}
	return b
}

// Insert adds a single occurrence of value to the histogram, clamping
// it into [MinValue, MaxValue] first.
func (h *HDRHistogram) Insert(value float64) error {
	return h.InsertWithCount(value, 1)
}

// InsertWithCount adds count occurrences of value to the histogram.
func (h *HDRHistogram) InsertWithCount(value float64, count uint64) error {
	if count == 0 {
		return nil
	}
	b := h.bucketFor(value)
	h.bucketCounts[b] += count
	h.totalCount += count
	return nil
}

// Delete removes a single occurrence of value from the histogram.
// Deleting from a bucket with no remaining count is a non-fatal
// warning: the bucket's count stays at zero rather than going
// negative.
func (h *HDRHistogram) Delete(value float64) error {
	b := h.bucketFor(value)
	if h.bucketCounts[b] == 0 {
		sketchcore.Warn("delete from empty histogram bucket", nil)
		return nil
	}
	h.bucketCounts[b]--
	h.totalCount--
	return nil
}

// Count returns the total number of values inserted into the
// histogram.
func (h *HDRHistogram) Count() uint64 {
	return h.totalCount
}

// TotalCount is an alias for Count, matching the external contract's
// sketch.total_count() naming for this family.
func (h *HDRHistogram) TotalCount() uint64 {
	return h.totalCount
}

// bucketMidpoint returns bucket b's geometric midpoint, the value
// reconstructed for any quantile crossing inside it.
func (h *HDRHistogram) bucketMidpoint(b int) float64 {
	n := float64(h.config.NumBuckets)
	ratio := h.config.MaxValue / h.config.MinValue
	return h.config.MinValue * math.Pow(ratio, (float64(b)+0.5)/n)
}

// Quantile returns the value at quantile q ∈ [0, 1], reconstructed as
// the geometric midpoint of the bucket where the cumulative count
// first reaches rank = ⌈q · total_count⌉.
func (h *HDRHistogram) Quantile(q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile must be in [0, 1], got %v: %w", q, sketchcore.ErrInvalidParameter)
	}
	if h.totalCount == 0 {
		return 0, sketchcore.ErrEmptySketch
	}

	rank := uint64(math.Ceil(q * float64(h.totalCount)))
	if rank < 1 {
		rank = 1
	}

	var cumulative uint64
	for b, c := range h.bucketCounts {
		cumulative += c
		if cumulative >= rank {
			return h.bucketMidpoint(b), nil
		}
	}
	return h.bucketMidpoint(h.config.NumBuckets - 1), nil
}

// Merge folds other into h. Both histograms must share the same
// (min_value, max_value, num_buckets).
func (h *HDRHistogram) Merge(other *HDRHistogram) error {
	if h.config.MinValue != other.config.MinValue ||
		h.config.MaxValue != other.config.MaxValue ||
		h.config.NumBuckets != other.config.NumBuckets {
		return ErrIncompatibleRange
	}

	for b, c := range other.bucketCounts {
		h.bucketCounts[b] += c
	}
	h.totalCount += other.totalCount
	return nil
}

// Copy returns an independent copy of the histogram.
func (h *HDRHistogram) Copy() *HDRHistogram {
	bucketCounts := make([]uint64, len(h.bucketCounts))
	copy(bucketCounts, h.bucketCounts)
	return &HDRHistogram{
		config:       h.config,
		logMin:       h.logMin,
		logSpan:      h.logSpan,
		bucketCounts: bucketCounts,
		totalCount:   h.totalCount,
	}
}
