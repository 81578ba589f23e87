package ddsketch

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/quantileflow/sketches/sketchcore"
)

func TestDDSketchBasicOperations(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if s.Count() != 0 {
		t.Errorf("new sketch should have count 0, got %d", s.Count())
	}
	if _, err := s.Quantile(0.5); err == nil {
		t.Errorf("Quantile on empty sketch should return an error")
	}

	values := []float64{1.0, 2.0, 3.0, 4.0, 5.0}
	for _, v := range values {
		if err := s.Insert(v); err != nil {
			t.Errorf("Insert(%v) returned error: %v", v, err)
		}
	}

	if s.Count() != 5 {
		t.Errorf("expected count 5, got %d", s.Count())
	}

	min, err := s.Min()
	if err != nil || min != 1.0 {
		t.Errorf("Min() = %v, %v; want 1.0, nil", min, err)
	}
	max, err := s.Max()
	if err != nil || max != 5.0 {
		t.Errorf("Max() = %v, %v; want 5.0, nil", max, err)
	}
	sum, err := s.Sum()
	if err != nil || sum != 15.0 {
		t.Errorf("Sum() = %v, %v; want 15.0, nil", sum, err)
	}
}

func TestDDSketchQuantileAccuracy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelativeAccuracy = 0.02
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	var values []float64
	for i := 0; i < 10000; i++ {
		v := math.Exp(rng.Float64()*10 - 5)
		values = append(values, v)
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%v) returned error: %v", v, err)
		}
	}
	sortFloats(values)

	for _, q := range []float64{0.01, 0.25, 0.5, 0.75, 0.95, 0.99} {
		got, err := s.Quantile(q)
		if err != nil {
			t.Fatalf("Quantile(%v) returned error: %v", q, err)
		}
		want := values[int(q*float64(len(values)-1))]
		relErr := math.Abs(got-want) / want
		if relErr > cfg.RelativeAccuracy+1e-9 {
			t.Errorf("Quantile(%v) = %v, want ~%v (relative error %v exceeds %v)", q, got, want, relErr, cfg.RelativeAccuracy)
		}
	}
}

func sortFloats(values []float64) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j-1] > values[j]; j-- {
			values[j-1], values[j] = values[j], values[j-1]
		}
	}
}

func TestDDSketchNegativeValues(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for _, v := range []float64{-5, -1, 0, 1, 5} {
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%v) returned error: %v", v, err)
		}
	}

	median, err := s.Quantile(0.5)
	if err != nil {
		t.Fatalf("Quantile(0.5) returned error: %v", err)
	}
	if median != 0 {
		t.Errorf("Quantile(0.5) = %v, want 0", median)
	}
}

func TestDDSketchRejectsNegativesWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContinuesNegative = false
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := s.Insert(-1); err != ErrNegativesDisabled {
		t.Errorf("Insert(-1) = %v, want ErrNegativesDisabled", err)
	}
}

func TestDDSketchDeleteIsNoOpForCollapsedBucket(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BucketStrategy = StrategyFixed
	cfg.MaxBuckets = 1
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := s.Insert(1); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if err := s.Insert(1000); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("Delete of a value whose bucket was already collapsed must be a no-op: got count %d, want 2", s.Count())
	}
}

func TestDDSketchMerge(t *testing.T) {
	a, _ := New(DefaultConfig())
	b, _ := New(DefaultConfig())

	for _, v := range []float64{1, 2, 3} {
		a.Insert(v)
	}
	for _, v := range []float64{4, 5, 6} {
		b.Insert(v)
	}

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if a.Count() != 6 {
		t.Errorf("expected merged count 6, got %d", a.Count())
	}
	max, _ := a.Max()
	if max != 6 {
		t.Errorf("expected merged max 6, got %v", max)
	}
}

// TestDDSketchMergeEquivalence checks that building one sketch from a
// full sample set is indistinguishable, in both count and every tested
// quantile, from building two sketches on a partition of that set and
// merging them. Unlimited storage is used so neither half (nor the
// combined sketch) ever collapses a bucket, which would otherwise make
// the merged bucket layout path-dependent.
func TestDDSketchMergeEquivalence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BucketStrategy = StrategyUnlimited
	cfg.MaxBuckets = 0

	rng := rand.New(rand.NewSource(7))
	var values []float64
	for i := 0; i < 2000; i++ {
		values = append(values, math.Exp(rng.NormFloat64()*2))
	}

	whole, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for _, v := range values {
		whole.Insert(v)
	}

	half1, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	half2, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	mid := len(values) / 2
	for _, v := range values[:mid] {
		half1.Insert(v)
	}
	for _, v := range values[mid:] {
		half2.Insert(v)
	}
	if err := half1.Merge(half2); err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	if whole.Count() != half1.Count() {
		t.Fatalf("Count() mismatch: whole=%d, split-merged=%d", whole.Count(), half1.Count())
	}

	for _, q := range []float64{0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
		want, err := whole.Quantile(q)
		if err != nil {
			t.Fatalf("whole.Quantile(%v) returned error: %v", q, err)
		}
		got, err := half1.Quantile(q)
		if err != nil {
			t.Fatalf("split-merged.Quantile(%v) returned error: %v", q, err)
		}
		if got != want {
			t.Errorf("Quantile(%v): split-merged = %v, want %v (same as building from the whole set)", q, got, want)
		}
	}
}

// paretoSample draws a single Pareto(scale=1, shape=a) sample via
// inverse-CDF sampling: x = 1 / (1-u)^(1/a).
func paretoSample(rng *rand.Rand, a float64) float64 {
	u := rng.Float64()
	return math.Pow(1-u, -1/a)
}

// TestDDSketchParetoSplitMergeAccuracy checks that a sketch assembled by
// merging two sub-sketches built on a split of a Pareto(a=3) sample
// reports quantiles within the sketch's configured relative accuracy of
// the true order statistics of the underlying sample.
func TestDDSketchParetoSplitMergeAccuracy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelativeAccuracy = 0.01
	cfg.ContinuesNegative = false

	rng := rand.New(rand.NewSource(42))
	const n = 1000
	values := make([]float64, n)
	for i := range values {
		values[i] = paretoSample(rng, 3)
	}
	sorted := append([]float64(nil), values...)
	sortFloats(sorted)

	half1, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	half2, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	mid := n / 2
	for _, v := range values[:mid] {
		half1.Insert(v)
	}
	for _, v := range values[mid:] {
		half2.Insert(v)
	}
	if err := half1.Merge(half2); err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	for _, q := range []float64{0.25, 0.5, 0.75} {
		got, err := half1.Quantile(q)
		if err != nil {
			t.Fatalf("Quantile(%v) returned error: %v", q, err)
		}
		want := sorted[int(q*float64(n-1))]
		relErr := math.Abs(got-want) / want
		if relErr > cfg.RelativeAccuracy+1e-9 {
			t.Errorf("Quantile(%v) = %v, want within %v of %v (relative error %v)", q, got, cfg.RelativeAccuracy, want, relErr)
		}
	}
}

func TestDDSketchMergeRejectsIncompatibleMapping(t *testing.T) {
	a, _ := New(DefaultConfig())
	cfgB := DefaultConfig()
	cfgB.MappingKind = MappingLinear
	b, _ := New(cfgB)

	if err := a.Merge(b); err != ErrIncompatibleMapping {
		t.Errorf("Merge across mapping kinds = %v, want ErrIncompatibleMapping", err)
	}
	if err := a.Merge(b); !errors.Is(err, sketchcore.ErrInvalidParameter) {
		t.Errorf("Merge across mapping kinds = %v, want errors.Is(err, sketchcore.ErrInvalidParameter)", err)
	}
}

func TestDDSketchMergeRejectsMismatchedContinuesNegative(t *testing.T) {
	cfgA := DefaultConfig()
	cfgA.ContinuesNegative = false
	a, err := New(cfgA)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	cfgB := DefaultConfig()
	cfgB.ContinuesNegative = true
	b, err := New(cfgB)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := b.Insert(-5); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if err := b.Insert(3); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	beforeCount := a.Count()
	mergeErr := a.Merge(b)
	if mergeErr == nil {
		t.Fatal("Merge across different continues_negative settings should fail")
	}
	if !errors.Is(mergeErr, sketchcore.ErrInvalidParameter) {
		t.Errorf("Merge error = %v, want errors.Is(err, sketchcore.ErrInvalidParameter)", mergeErr)
	}
	if a.Count() != beforeCount {
		t.Errorf("a.Count() changed after a rejected merge: got %d, want %d", a.Count(), beforeCount)
	}
}

func TestDDSketchSerializationRoundTrip(t *testing.T) {
	s, _ := New(DefaultConfig())
	for _, v := range []float64{1, 2, 3, -4, 0, 100} {
		s.Insert(v)
	}

	data, err := s.Bytes()
	if err != nil {
		t.Fatalf("Bytes returned error: %v", err)
	}

	restored, err := FromBytes(data, DefaultConfig())
	if err != nil {
		t.Fatalf("FromBytes returned error: %v", err)
	}

	if restored.Count() != s.Count() {
		t.Errorf("restored count = %d, want %d", restored.Count(), s.Count())
	}
	q1, _ := s.Quantile(0.5)
	q2, _ := restored.Quantile(0.5)
	if q1 != q2 {
		t.Errorf("restored median = %v, want %v", q2, q1)
	}
}
