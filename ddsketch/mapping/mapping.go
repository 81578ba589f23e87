// Package mapping implements the pluggable value-to-bucket-index
// strategies shared by every DDSketch: logarithmic, linearly
// interpolated, and cubically interpolated. All three are pure,
// stateless, and deterministic, and all three satisfy the same
// contract: monotonicity, the relative-accuracy bound, and bucket-index
// round-trip stability (spec §4.2).
package mapping

import "math"

// expOverflow is the largest x for which math.Exp(x) does not overflow.
const expOverflow = 7.094361393031e+02

// minNormalFloat64 is 2^-1022, the smallest positive normal float64.
const minNormalFloat64 = 2.2250738585072014e-308

// IndexMapping maps positive floating-point values to integer bucket
// indices and back. For every positive v, Index is monotonically
// non-decreasing in v, and Value(Index(v)) reconstructs v within the
// mapping's relative accuracy.
type IndexMapping interface {
	// Index returns the bucket index for a positive value.
	Index(value float64) int

	// Value returns the representative value of a bucket index; it is
	// the inverse of Index up to the mapping's relative accuracy.
	Value(index int) float64

	// RelativeAccuracy is the α this mapping was constructed with.
	RelativeAccuracy() float64

	// MinIndexableValue is the smallest positive value this mapping can
	// index without overflowing the index range or the mapping's own
	// floating-point domain.
	MinIndexableValue() float64

	// MaxIndexableValue is the largest positive value this mapping can
	// index without overflow.
	MaxIndexableValue() float64

	// Equals reports whether other is the same mapping kind with
	// equivalent parameters, within floating-point tolerance. Two
	// DDSketches can only be merged when their mappings are Equal.
	Equals(other IndexMapping) bool
}

// gamma is the geometric step between consecutive buckets for a given
// relative accuracy: γ = (1+α)/(1−α).
func gamma(relativeAccuracy float64) float64 {
	return (1 + relativeAccuracy) / (1 - relativeAccuracy)
}

const equalsTolerance = 1e-12

func withinTolerance(x, y, tolerance float64) bool {
	if x == 0 || y == 0 {
		return math.Abs(x) <= tolerance && math.Abs(y) <= tolerance
	}
	return math.Abs(x-y) <= tolerance*math.Max(math.Abs(x), math.Abs(y))
}

func validateRelativeAccuracy(relativeAccuracy float64) error {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		return errInvalidAccuracy
	}
	return nil
}
