// Package ddsketch implements the DDSketch relative-error quantile
// sketch: a pluggable value-to-index mapping over a pluggable bucket
// store, with separate positive and negative ranges plus an exact
// zero count.
package ddsketch

import (
	"fmt"

	"github.com/quantileflow/sketches/sketchcore"
)

// ErrNegativesDisabled is returned by Insert/Delete when a negative
// value is given to a sketch configured without ContinuesNegative.
var ErrNegativesDisabled = fmt.Errorf("sketch does not track negative values: %w", sketchcore.ErrNegativeNotAllowed)

// ErrIncompatibleMapping is returned by Merge when two sketches use
// different, non-equivalent index mappings, or a different
// continues_negative setting.
var ErrIncompatibleMapping = fmt.Errorf("cannot merge sketches with incompatible configuration: %w", sketchcore.ErrInvalidParameter)
