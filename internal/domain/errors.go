package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShapeParameters is returned when an observation would produce a
	// Beta posterior with a non-positive shape parameter (successes > trials or
	// negative counts).
	ErrInvalidShapeParameters = errors.New("invalid beta shape parameters")

	// ErrDivisionByZeroLift is returned when no lift draw can be computed because
	// every control draw was exactly zero.
	ErrDivisionByZeroLift = errors.New("lift undefined: control draw is zero")

	// ErrInvalidOptions is returned for malformed analysis options.
	ErrInvalidOptions = errors.New("invalid analysis options")
)

// ShapeError reports which group produced invalid shape parameters.
type ShapeError struct {
	Group     string
	Trials    int64
	Successes int64
	Alpha     float64
	Beta      float64
}

func (e *ShapeError) Error() string {
	group := e.Group
	if group == "" {
		group = "group"
	}
	return fmt.Sprintf("%s: %d successes out of %d trials gives Beta(%g, %g): %v",
		group, e.Successes, e.Trials, e.Alpha, e.Beta, ErrInvalidShapeParameters)
}

func (e *ShapeError) Unwrap() error { return ErrInvalidShapeParameters }

// LiftError reports how many paired draws were discarded because the control
// draw was zero.
type LiftError struct {
	Excluded int
	Total    int
}

func (e *LiftError) Error() string {
	return fmt.Sprintf("%d of %d draws excluded: %v", e.Excluded, e.Total, ErrDivisionByZeroLift)
}

func (e *LiftError) Unwrap() error { return ErrDivisionByZeroLift }
