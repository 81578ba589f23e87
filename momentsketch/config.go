// Package momentsketch implements a moment-based quantile sketch: a
// fixed number of power-sum accumulators (and, for all-positive
// streams, log-power sums) reconstructed into a quantile estimate via
// a maximum-entropy density fit over a Chebyshev polynomial basis.
package momentsketch

import (
	"fmt"

	"github.com/quantileflow/sketches/sketchcore"
)

// Config holds the construction parameters for a MomentSketch.
type Config struct {
	// NumMoments is k, the number of power moments retained (including
	// the trivial zeroth moment). Typical values are 8-12; higher k
	// captures more distributional detail at the cost of a harder
	// maximum-entropy solve.
	NumMoments int `yaml:"num_moments"`

	// SolverTolerance is the maximum acceptable moment residual before
	// the Newton solver is considered converged.
	SolverTolerance float64 `yaml:"solver_tolerance"`

	// SolverMaxIterations bounds the damped Newton iteration so the
	// solver never runs unbounded on pathological moment sequences.
	SolverMaxIterations int `yaml:"solver_max_iterations"`
}

// DefaultConfig returns a Config retaining 10 moments, matching the
// typical configuration of moment-based sketches in production use.
func DefaultConfig() Config {
	return Config{
		NumMoments:          10,
		SolverTolerance:     1e-9,
		SolverMaxIterations: 200,
	}
}

// Validate checks that the configuration describes a constructible
// MomentSketch.
func (c *Config) Validate() error {
	if c.NumMoments < 1 {
		return fmt.Errorf("num_moments must be at least 1: %w", sketchcore.ErrInvalidParameter)
	}
	if c.SolverTolerance <= 0 {
		return fmt.Errorf("solver_tolerance must be positive: %w", sketchcore.ErrInvalidParameter)
	}
	if c.SolverMaxIterations < 1 {
		return fmt.Errorf("solver_max_iterations must be at least 1: %w", sketchcore.ErrInvalidParameter)
	}
	return nil
}
