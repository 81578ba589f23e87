package mapping

import (
	"fmt"

	"github.com/quantileflow/sketches/sketchcore"
)

var errInvalidAccuracy = fmt.Errorf("relative accuracy must be in (0, 1): %w", sketchcore.ErrInvalidParameter)
