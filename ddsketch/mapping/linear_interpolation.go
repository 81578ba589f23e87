package mapping

import (
	"fmt"
	"math"
)

// LinearInterpolationMapping approximates log2 with a piecewise-linear
// function of a value's IEEE754 exponent and mantissa instead of calling
// math.Log. It is faster to index with than LogarithmicMapping at the
// cost of a coarser relative-accuracy constant for the same nominal α.
type LinearInterpolationMapping struct {
	relativeAccuracy float64
	gamma            float64
	multiplier       float64 // 1 / log2(γ)
	midpoint         float64 // 2γ/(γ+1), the geometric-midpoint correction
}

// NewLinearInterpolationMapping builds a LinearInterpolationMapping for
// the given relative accuracy α ∈ (0,1).
func NewLinearInterpolationMapping(relativeAccuracy float64) (*LinearInterpolationMapping, error) {
	if err := validateRelativeAccuracy(relativeAccuracy); err != nil {
		return nil, err
	}
	g := gamma(relativeAccuracy)
	return &LinearInterpolationMapping{
		relativeAccuracy: relativeAccuracy,
		gamma:            g,
		multiplier:       1 / math.Log2(g),
		midpoint:         2 * g / (g + 1),
	}, nil
}

// NewLinearInterpolationMappingWithGamma mirrors
// NewLogarithmicMappingWithGamma for merge-compatibility comparisons.
func NewLinearInterpolationMappingWithGamma(g float64) (*LinearInterpolationMapping, error) {
	if g <= 1 {
		return nil, fmt.Errorf("gamma must be greater than 1: %w", errInvalidAccuracy)
	}
	return &LinearInterpolationMapping{
		relativeAccuracy: 1 - 2/(1+g),
		gamma:            g,
		multiplier:       1 / math.Log2(g),
		midpoint:         2 * g / (g + 1),
	}, nil
}

// approximateLog2 extracts the IEEE754 exponent and mantissa of x and
// returns exponent + mantissaFraction, a piecewise-linear approximation
// of log2(x) that is exact at every power of two and linear in between.
func approximateLog2(x float64) float64 {
	bits := math.Float64bits(x)
	exponent := float64(int64((bits>>52)&0x7ff) - 1023)
	mantissaBits := bits & ((uint64(1) << 52) - 1)
	fraction := float64(mantissaBits) / float64(uint64(1)<<52)
	return exponent + fraction
}

// approximateInverseLog2 is the exact inverse of approximateLog2.
func approximateInverseLog2(x float64) float64 {
	exponent := math.Floor(x)
	fraction := x - exponent
	mantissaBits := uint64(fraction * float64(uint64(1)<<52))
	bits := uint64(int64(exponent)+1023)<<52 | mantissaBits
	return math.Float64frombits(bits)
}

func (m *LinearInterpolationMapping) Index(value float64) int {
	index := approximateLog2(value) * m.multiplier
	return int(math.Ceil(index))
}

func (m *LinearInterpolationMapping) Value(index int) float64 {
	return approximateInverseLog2(float64(index)/m.multiplier) * m.midpoint
}

func (m *LinearInterpolationMapping) RelativeAccuracy() float64 {
	return m.relativeAccuracy
}

func (m *LinearInterpolationMapping) MinIndexableValue() float64 {
	return math.Max(
		math.Exp2((float64(math.MinInt32)+1)/m.multiplier),
		minNormalFloat64*m.gamma,
	)
}

func (m *LinearInterpolationMapping) MaxIndexableValue() float64 {
	return math.Min(
		math.Exp2((float64(math.MaxInt32)-1)/m.multiplier),
		math.Exp(expOverflow)/m.gamma,
	)
}

func (m *LinearInterpolationMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*LinearInterpolationMapping)
	if !ok {
		return false
	}
	return withinTolerance(m.multiplier, o.multiplier, equalsTolerance)
}

func (m *LinearInterpolationMapping) String() string {
	return fmt.Sprintf("linearInterpolation(relativeAccuracy=%v, gamma=%v)", m.relativeAccuracy, m.gamma)
}
