package store

import (
	"math"
	"sort"

	"github.com/quantileflow/sketches/sketchcore"
)

// SparseStore is a map-backed Store, best suited to wide or skewed
// index ranges where most candidate indices are never populated. It
// supports all three bucket-management strategies.
type SparseStore struct {
	bins     map[int]uint64
	count    uint64
	minIndex int
	maxIndex int

	strategy   BucketManagementStrategy
	maxBuckets int // cap for Fixed; ignored (with a one-time constructor warning) for Unlimited
}

// NewSparseStore builds an empty SparseStore under the given strategy.
// maxBuckets is the hard cap for Fixed. Dynamic does not use it: its
// cap is DynamicCap of the store's total count, recomputed after every
// insert. It is also unused by Unlimited, and an explicit non-zero
// value under Unlimited is warned about here, at construction time,
// since it will never take effect.
func NewSparseStore(strategy BucketManagementStrategy, maxBuckets int) *SparseStore {
	if strategy == Unlimited && maxBuckets > 0 {
		sketchcore.Warn("max_buckets is ignored under the unlimited bucket strategy", nil)
	}
	return &SparseStore{
		bins:       make(map[int]uint64),
		minIndex:   math.MaxInt32,
		maxIndex:   math.MinInt32,
		strategy:   strategy,
		maxBuckets: maxBuckets,
	}
}

func (s *SparseStore) Add(index int, count uint64) {
	if count == 0 {
		return
	}
	s.bins[index] += count
	s.count += count
	if index < s.minIndex {
		s.minIndex = index
	}
	if index > s.maxIndex {
		s.maxIndex = index
	}
	s.enforceCap()
}

func (s *SparseStore) Remove(index int, count uint64) uint64 {
	current, ok := s.bins[index]
	if !ok {
		return 0
	}
	if count >= current {
		delete(s.bins, index)
		s.count -= current
		if index == s.minIndex || index == s.maxIndex {
			s.recalculateBounds()
		}
		return current
	}
	s.bins[index] = current - count
	s.count -= count
	return count
}

func (s *SparseStore) Get(index int) uint64 {
	return s.bins[index]
}

func (s *SparseStore) TotalCount() uint64 {
	return s.count
}

func (s *SparseStore) MinIndex() (int, bool) {
	if len(s.bins) == 0 {
		return 0, false
	}
	return s.minIndex, true
}

func (s *SparseStore) MaxIndex() (int, bool) {
	if len(s.bins) == 0 {
		return 0, false
	}
	return s.maxIndex, true
}

func (s *SparseStore) KeyAtRank(rank uint64) int {
	keys := s.sortedKeys()
	var cumulative uint64
	for _, k := range keys {
		cumulative += s.bins[k]
		if cumulative >= rank {
			return k
		}
	}
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1]
}

func (s *SparseStore) ForEach(fn func(index int, count uint64)) {
	for _, k := range s.sortedKeys() {
		fn(k, s.bins[k])
	}
}

func (s *SparseStore) sortedKeys() []int {
	keys := make([]int, 0, len(s.bins))
	for k := range s.bins {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (s *SparseStore) Merge(other Store) {
	other.ForEach(func(index int, count uint64) {
		s.Add(index, count)
	})
}

func (s *SparseStore) Copy() Store {
	bins := make(map[int]uint64, len(s.bins))
	for k, v := range s.bins {
		bins[k] = v
	}
	return &SparseStore{
		bins:       bins,
		count:      s.count,
		minIndex:   s.minIndex,
		maxIndex:   s.maxIndex,
		strategy:   s.strategy,
		maxBuckets: s.maxBuckets,
	}
}

func (s *SparseStore) BucketCount() int {
	return len(s.bins)
}

func (s *SparseStore) MemoryUsageBytes() int64 {
	const (
		mapOverhead = int64(48)
		entrySize   = int64(16 + 8 + 16) // key + value + bucket overhead
		fieldsSize  = int64(8 * 6)
	)
	return mapOverhead + int64(len(s.bins))*entrySize + fieldsSize
}

// enforceCap collapses the lowest-indexed buckets into their next
// surviving neighbor until the store respects its strategy's cap. This
// is the same left-to-right collapse DataDog's internal quantile store
// uses to keep a sparse sketch bounded: the removed buckets' counts are
// folded into the bucket that absorbs them so TotalCount never changes.
func (s *SparseStore) enforceCap() {
	cap := s.effectiveCap()
	if cap <= 0 || len(s.bins) <= cap {
		return
	}

	keys := s.sortedKeys()
	nRemove := len(keys) - cap
	var absorbed uint64
	for _, k := range keys[:nRemove] {
		absorbed += s.bins[k]
		delete(s.bins, k)
	}
	survivor := keys[nRemove]
	s.bins[survivor] += absorbed
	s.recalculateBounds()
}

func (s *SparseStore) effectiveCap() int {
	switch s.strategy {
	case Fixed:
		return s.maxBuckets
	case Dynamic:
		return DynamicCap(s.count)
	default:
		return 0
	}
}

func (s *SparseStore) recalculateBounds() {
	if len(s.bins) == 0 {
		s.minIndex = math.MaxInt32
		s.maxIndex = math.MinInt32
		return
	}
	s.minIndex = math.MaxInt32
	s.maxIndex = math.MinInt32
	for k := range s.bins {
		if k < s.minIndex {
			s.minIndex = k
		}
		if k > s.maxIndex {
			s.maxIndex = k
		}
	}
}
