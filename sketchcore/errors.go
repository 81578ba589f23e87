// Package sketchcore holds the constructs shared by every sketch family:
// the sentinel error kinds from the error-handling contract and the
// soft-anomaly warning logger.
package sketchcore

import "errors"

var (
	// ErrInvalidParameter is returned for out-of-range construction or
	// query parameters: relative accuracy outside (0,1), a quantile
	// outside [0,1], or an incompatible merge.
	ErrInvalidParameter = errors.New("sketchcore: invalid parameter")

	// ErrNegativeNotAllowed is returned when a negative value is inserted
	// into a sketch constructed with negative values disabled.
	ErrNegativeNotAllowed = errors.New("sketchcore: negative values not allowed")

	// ErrEmptySketch is returned when querying a quantile of a sketch
	// that has not received any samples.
	ErrEmptySketch = errors.New("sketchcore: sketch is empty")

	// ErrIncompatibleStorage is returned when constructing a store/strategy
	// combination that is structurally unsupported, e.g. dense storage
	// with anything other than the FIXED bucket-management strategy.
	ErrIncompatibleStorage = errors.New("sketchcore: incompatible storage configuration")
)
