package mapping

import (
	"fmt"
	"math"
)

// Cubic Hermite coefficients approximating log2(1+m) for m ∈ [0,1) with
// f(0)=0, f(1)=1, f'(0)=1/ln2, f'(1)=1/(2ln2). These four constraints
// pin down a cubic f(m) = A·m³ + B·m² + C·m uniquely.
const (
	cubicA = 0.164042561333445
	cubicB = -0.6067376022224085
	cubicC = 1.442695040888963 // 1/ln(2)
)

// CubicInterpolationMapping approximates log2 with a cubic polynomial of
// the mantissa instead of LinearInterpolationMapping's linear one. It
// costs more arithmetic per Index call but roughly triples the
// achievable accuracy for the same bucket count.
type CubicInterpolationMapping struct {
	relativeAccuracy float64
	gamma            float64
	multiplier       float64
	midpoint         float64
}

// NewCubicInterpolationMapping builds a CubicInterpolationMapping for
// the given relative accuracy α ∈ (0,1).
func NewCubicInterpolationMapping(relativeAccuracy float64) (*CubicInterpolationMapping, error) {
	if err := validateRelativeAccuracy(relativeAccuracy); err != nil {
		return nil, err
	}
	g := gamma(relativeAccuracy)
	return &CubicInterpolationMapping{
		relativeAccuracy: relativeAccuracy,
		gamma:            g,
		multiplier:       1 / math.Log2(g),
		midpoint:         2 * g / (g + 1),
	}, nil
}

// NewCubicInterpolationMappingWithGamma mirrors the other mappings'
// gamma-constructor for merge-compatibility comparisons.
func NewCubicInterpolationMappingWithGamma(g float64) (*CubicInterpolationMapping, error) {
	if g <= 1 {
		return nil, fmt.Errorf("gamma must be greater than 1: %w", errInvalidAccuracy)
	}
	return &CubicInterpolationMapping{
		relativeAccuracy: 1 - 2/(1+g),
		gamma:            g,
		multiplier:       1 / math.Log2(g),
		midpoint:         2 * g / (g + 1),
	}, nil
}

// cubicLog2 decomposes x into exponent + mantissa fraction m ∈ [0,1),
// same as approximateLog2, then replaces the linear m term with the
// Hermite cubic in m for a tighter fit to log2(1+m).
func cubicLog2(x float64) float64 {
	bits := math.Float64bits(x)
	exponent := float64(int64((bits>>52)&0x7ff) - 1023)
	mantissaBits := bits & ((uint64(1) << 52) - 1)
	m := float64(mantissaBits) / float64(uint64(1)<<52)
	return exponent + ((cubicA*m+cubicB)*m+cubicC)*m
}

// cubicInverseLog2 inverts cubicLog2 by bisecting the cubic on [0,1) for
// the fractional mantissa, then rebuilding the IEEE754 value. The cubic
// is strictly increasing on [0,1) so bisection converges monotonically.
func cubicInverseLog2(x float64) float64 {
	exponent := math.Floor(x)
	target := x - exponent

	lo, hi := 0.0, 1.0
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		f := ((cubicA*mid+cubicB)*mid+cubicC)*mid
		if f < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	m := (lo + hi) / 2

	mantissaBits := uint64(m * float64(uint64(1)<<52))
	bits := uint64(int64(exponent)+1023)<<52 | mantissaBits
	return math.Float64frombits(bits)
}

func (m *CubicInterpolationMapping) Index(value float64) int {
	index := cubicLog2(value) * m.multiplier
	return int(math.Ceil(index))
}

func (m *CubicInterpolationMapping) Value(index int) float64 {
	return cubicInverseLog2(float64(index)/m.multiplier) * m.midpoint
}

func (m *CubicInterpolationMapping) RelativeAccuracy() float64 {
	return m.relativeAccuracy
}

func (m *CubicInterpolationMapping) MinIndexableValue() float64 {
	return math.Max(
		math.Exp2((float64(math.MinInt32)+1)/m.multiplier),
		minNormalFloat64*m.gamma,
	)
}

func (m *CubicInterpolationMapping) MaxIndexableValue() float64 {
	return math.Min(
		math.Exp2((float64(math.MaxInt32)-1)/m.multiplier),
		math.Exp(expOverflow)/m.gamma,
	)
}

func (m *CubicInterpolationMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*CubicInterpolationMapping)
	if !ok {
		return false
	}
	return withinTolerance(m.multiplier, o.multiplier, equalsTolerance)
}

func (m *CubicInterpolationMapping) String() string {
	return fmt.Sprintf("cubicInterpolation(relativeAccuracy=%v, gamma=%v)", m.relativeAccuracy, m.gamma)
}
