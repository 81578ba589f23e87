package hdrhistogram

import (
	"fmt"

	"github.com/quantileflow/sketches/sketchcore"
)

// ErrIncompatibleRange is returned by Merge when two histograms were
// constructed with a different (min_value, max_value, num_buckets).
var ErrIncompatibleRange = fmt.Errorf("cannot merge histograms with a different value range or bucket count: %w", sketchcore.ErrInvalidParameter)
