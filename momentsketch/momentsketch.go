package momentsketch

import (
	"fmt"
	"math"

	"github.com/quantileflow/sketches/sketchcore"
)

func init() {
	sketchcore.Register("momentsketch", func() sketchcore.Sketch {
		s, err := New(DefaultConfig())
		if err != nil {
			panic(fmt.Sprintf("momentsketch: default config must construct cleanly: %v", err))
		}
		return s
	})
}

// MomentSketch estimates quantiles from a fixed-size set of power-sum
// moments instead of retaining buckets: insert and merge are O(k) in
// the moment count, and quantile queries solve a small maximum-entropy
// problem to reconstruct the underlying density.
type MomentSketch struct {
	config Config

	count        uint64
	min          float64
	max          float64
	powerSums    []float64 // Σ v^j, j = 0..k-1
	logPowerSums []float64 // Σ (log v)^j, valid only while allPositive
	allPositive  bool
}

// New constructs an empty MomentSketch from the given configuration.
func New(config Config) (*MomentSketch, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MomentSketch{
		config:       config,
		min:          math.Inf(1),
		max:          math.Inf(-1),
		powerSums:    make([]float64, config.NumMoments),
		logPowerSums: make([]float64, config.NumMoments),
		allPositive:  true,
	}, nil
}

// Insert adds a single occurrence of value to the sketch.
func (s *MomentSketch) Insert(value float64) error {
	return s.InsertWithCount(value, 1)
}

// InsertWithCount adds count occurrences of value to the sketch.
func (s *MomentSketch) InsertWithCount(value float64, count uint64) error {
	if count == 0 {
		return nil
	}

	if value <= 0 {
		s.allPositive = false
	}

	n := float64(count)
	power := 1.0
	var logPower float64
	logValue := math.NaN()
	if s.allPositive {
		logValue = math.Log(value)
		logPower = 1.0
	}
	for j := 0; j < s.config.NumMoments; j++ {
		s.powerSums[j] += power * n
		power *= value
		if s.allPositive {
			s.logPowerSums[j] += logPower * n
			logPower *= logValue
		}
	}

	if value < s.min {
		s.min = value
	}
	if value > s.max {
		s.max = value
	}
	s.count += count
	return nil
}

// Delete removes a single occurrence of value from the sketch.
// Moments are additive, so deletion is exact subtraction; it does not
// recompute min/max, which the original implementation treats as
// monotonic watermarks rather than exact order statistics.
func (s *MomentSketch) Delete(value float64) error {
	if s.count == 0 {
		sketchcore.Warn("delete from empty moment sketch", nil)
		return nil
	}

	power := 1.0
	var logPower float64
	logValue := math.NaN()
	trackLog := s.allPositive && value > 0
	if trackLog {
		logValue = math.Log(value)
		logPower = 1.0
	}
	for j := 0; j < s.config.NumMoments; j++ {
		s.powerSums[j] -= power
		power *= value
		if trackLog {
			s.logPowerSums[j] -= logPower
			logPower *= logValue
		}
	}
	s.count--
	return nil
}

// Count returns the total number of values inserted into the sketch.
func (s *MomentSketch) Count() uint64 {
	return s.count
}

// Summary reports the sketch's exact aggregate statistics: these come
// directly from the moment accumulators rather than the maximum-entropy
// reconstruction, so they are exact up to floating-point error.
type Summary struct {
	Count uint64
	Min   float64
	Max   float64
	Mean  float64
}

// Summary returns the sketch's exact count/min/max/mean.
func (s *MomentSketch) Summary() Summary {
	mean := math.NaN()
	if s.count > 0 && len(s.powerSums) > 1 {
		mean = s.powerSums[1] / float64(s.count)
	}
	return Summary{Count: s.count, Min: s.min, Max: s.max, Mean: mean}
}

// Merge folds other into s. Both sketches must retain the same number
// of moments.
func (s *MomentSketch) Merge(other *MomentSketch) error {
	if s.config.NumMoments != other.config.NumMoments {
		return ErrIncompatibleMoments
	}

	for j := range s.powerSums {
		s.powerSums[j] += other.powerSums[j]
	}
	if s.allPositive && other.allPositive {
		for j := range s.logPowerSums {
			s.logPowerSums[j] += other.logPowerSums[j]
		}
	} else {
		s.allPositive = false
	}

	s.count += other.count
	if other.min < s.min {
		s.min = other.min
	}
	if other.max > s.max {
		s.max = other.max
	}
	return nil
}

// Quantile returns an estimate of the value at quantile q ∈ [0, 1],
// reconstructed via a maximum-entropy density fit over the retained
// moments. Solver non-convergence never fails the call: it logs a
// warning and returns the best estimate found.
func (s *MomentSketch) Quantile(q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile must be in [0, 1], got %v: %w", q, sketchcore.ErrInvalidParameter)
	}
	if s.count == 0 {
		return 0, sketchcore.ErrEmptySketch
	}
	if s.config.NumMoments == 1 || s.min == s.max {
		if q == 0 {
			return s.min, nil
		}
		return s.max, nil
	}

	useLog := s.allPositive
	a, b := s.min, s.max
	raw := s.powerSums
	if useLog {
		a, b = math.Log(s.min), math.Log(s.max)
		raw = s.logPowerSums
	}

	normalized := make([]float64, len(raw))
	for j, sum := range raw {
		normalized[j] = sum / float64(s.count)
	}

	rescaled := rescaleMoments(normalized, a, b)
	target := momentsToChebyshevMoments(rescaled)

	lambda, converged := solveMaxEntLambda(target, s.config.SolverTolerance, s.config.SolverMaxIterations)
	if !converged {
		sketchcore.Warn("moment sketch maximum-entropy solver did not converge, using best estimate", nil)
	}

	xStar := bisectQuantile(lambda, q)
	value := (xStar*(b-a) + (a + b)) / 2
	if useLog {
		value = math.Exp(value)
	}

	if value < s.min {
		value = s.min
	}
	if value > s.max {
		value = s.max
	}
	return value, nil
}

// rescaleMoments maps raw power moments E[x^j] of a variable on [a, b]
// to the power moments of y = (2x-(a+b))/(b-a) ∈ [-1, 1], via binomial
// expansion of the affine change of variable.
func rescaleMoments(raw []float64, a, b float64) []float64 {
	k := len(raw)
	scale := 2 / (b - a)
	shift := -(a + b) / (b - a)
	out := make([]float64, k)
	for j := 0; j < k; j++ {
		var sum float64
		for i := 0; i <= j; i++ {
			sum += binomial(j, i) * math.Pow(scale, float64(i)) * math.Pow(shift, float64(j-i)) * raw[i]
		}
		out[j] = sum
	}
	return out
}

func binomial(n, i int) float64 {
	if i < 0 || i > n {
		return 0
	}
	result := 1.0
	for t := 0; t < i; t++ {
		result *= float64(n-t) / float64(t+1)
	}
	return result
}
