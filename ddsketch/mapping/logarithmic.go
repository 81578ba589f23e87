package mapping

import (
	"bytes"
	"fmt"
	"math"
)

// LogarithmicMapping is the memory-optimal mapping: for a targeted
// relative accuracy it requires the fewest distinct indices to cover a
// given value range, at the cost of needing an actual math.Log per
// insert. index(v) = ⌈log_γ(v)⌉; value(i) is the geometric midpoint of
// bucket i's boundaries, 2·γ^i/(γ+1).
type LogarithmicMapping struct {
	relativeAccuracy float64
	gamma            float64
	multiplier       float64 // 1 / ln(γ)
}

// NewLogarithmicMapping builds a LogarithmicMapping for the given
// relative accuracy α ∈ (0,1).
func NewLogarithmicMapping(relativeAccuracy float64) (*LogarithmicMapping, error) {
	if err := validateRelativeAccuracy(relativeAccuracy); err != nil {
		return nil, err
	}
	g := gamma(relativeAccuracy)
	return &LogarithmicMapping{
		relativeAccuracy: relativeAccuracy,
		gamma:            g,
		multiplier:       1 / math.Log(g),
	}, nil
}

// NewLogarithmicMappingWithGamma builds a LogarithmicMapping directly
// from a γ > 1, which is how DDSketch merge-compatibility checks
// construct an equivalent mapping for comparison.
func NewLogarithmicMappingWithGamma(g float64) (*LogarithmicMapping, error) {
	if g <= 1 {
		return nil, fmt.Errorf("gamma must be greater than 1: %w", errInvalidAccuracy)
	}
	return &LogarithmicMapping{
		relativeAccuracy: 1 - 2/(1+g),
		gamma:            g,
		multiplier:       1 / math.Log(g),
	}, nil
}

func (m *LogarithmicMapping) Index(value float64) int {
	index := math.Log(value) * m.multiplier
	return int(math.Ceil(index))
}

func (m *LogarithmicMapping) Value(index int) float64 {
	return 2 * (math.Pow(m.gamma, float64(index)) / (m.gamma + 1))
}

func (m *LogarithmicMapping) RelativeAccuracy() float64 {
	return m.relativeAccuracy
}

func (m *LogarithmicMapping) MinIndexableValue() float64 {
	return math.Max(
		math.Exp((float64(math.MinInt32)+1)/m.multiplier),
		minNormalFloat64*m.gamma,
	)
}

func (m *LogarithmicMapping) MaxIndexableValue() float64 {
	return math.Min(
		math.Exp((float64(math.MaxInt32)-1)/m.multiplier),
		math.Exp(expOverflow)/m.gamma,
	)
}

func (m *LogarithmicMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*LogarithmicMapping)
	if !ok {
		return false
	}
	return withinTolerance(m.multiplier, o.multiplier, equalsTolerance)
}

func (m *LogarithmicMapping) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "logarithmic(relativeAccuracy=%v, gamma=%v)", m.relativeAccuracy, m.gamma)
	return buf.String()
}
