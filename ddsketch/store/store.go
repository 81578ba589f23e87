// Package store implements the pluggable bucket-count storage strategies
// shared by every DDSketch: a dense, offset-addressed array for narrow
// value ranges and a sparse, map-backed store for wide or skewed ones.
// Both honor the same bucket-management policy (FIXED, DYNAMIC,
// UNLIMITED) that bounds how many distinct indices a store may hold.
package store

import "math"

// BucketManagementStrategy controls how a store reacts when it would
// otherwise need to track more distinct bucket indices than its cap
// allows.
type BucketManagementStrategy int

const (
	// Fixed enforces a hard cap on distinct bucket indices, collapsing
	// the lowest-indexed positive buckets into their neighbor once the
	// cap is exceeded.
	Fixed BucketManagementStrategy = iota

	// Dynamic recomputes its cap after every insert as
	// ⌊100·log10(totalCount+1)⌋, growing the allowance as the sketch
	// observes more samples instead of fixing it up front.
	Dynamic

	// Unlimited never collapses buckets. If MaxBuckets is set alongside
	// this strategy it is ignored and a warning is logged once.
	Unlimited
)

// String implements fmt.Stringer for readable config dumps and log
// fields.
func (s BucketManagementStrategy) String() string {
	switch s {
	case Fixed:
		return "fixed"
	case Dynamic:
		return "dynamic"
	case Unlimited:
		return "unlimited"
	default:
		return "unknown"
	}
}

// DynamicCap computes the DYNAMIC strategy's soft bucket cap for a given
// total sample count, recomputed after every insert per the original
// implementation's behavior.
func DynamicCap(totalCount uint64) int {
	return int(math.Floor(100 * math.Log10(float64(totalCount)+1)))
}

// Store is the bucket-count storage contract a DDSketch uses for its
// positive and negative value ranges independently. Indices are bucket
// indices, not values: index 0 is an ordinary bucket (values near 1 in
// the logarithmic mapping), while sketches track exact-zero values in a
// separate counter.
type Store interface {
	// Add increments the bucket at index by count.
	Add(index int, count uint64)

	// Remove decrements the bucket at index by count, floored at zero,
	// and returns how much was actually removed. It returns 0 without
	// effect if the index has already been collapsed away — the caller
	// is expected to use the returned amount to keep any sketch-level
	// statistics (total count, sum) consistent with what the store
	// actually holds.
	Remove(index int, count uint64) uint64

	// Get returns the count currently stored at index.
	Get(index int) uint64

	// TotalCount returns the sum of counts across all buckets.
	TotalCount() uint64

	// MinIndex and MaxIndex report the smallest/largest index with a
	// non-zero count. The bool is false for an empty store.
	MinIndex() (int, bool)
	MaxIndex() (int, bool)

	// KeyAtRank returns the index of the bucket that contains the
	// rank-th smallest value (rank is 1-indexed, in [1, TotalCount()]):
	// the first bucket, scanning from the lowest index upward, whose
	// running cumulative count is >= rank. A rank beyond TotalCount()
	// is clamped to the highest index.
	KeyAtRank(rank uint64) int

	// ForEach invokes fn for every non-empty bucket index and its
	// count, in ascending index order.
	ForEach(fn func(index int, count uint64))

	// Merge folds other's bucket counts into this store.
	Merge(other Store)

	// Copy returns a deep copy of the store.
	Copy() Store

	// BucketCount returns the number of distinct indices currently
	// tracked.
	BucketCount() int

	// MemoryUsageBytes estimates the store's heap footprint.
	MemoryUsageBytes() int64
}
