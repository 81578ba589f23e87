package momentsketch

import (
	"fmt"

	"github.com/quantileflow/sketches/sketchcore"
)

// ErrIncompatibleMoments is returned by Merge when two sketches retain
// a different number of moments.
var ErrIncompatibleMoments = fmt.Errorf("cannot merge moment sketches with a different moment count: %w", sketchcore.ErrInvalidParameter)
