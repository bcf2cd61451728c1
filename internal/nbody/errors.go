package nbody

import (
	"errors"
	"fmt"
)

// Domain errors for engine construction and runs.
var (
	// ErrDimensionMismatch indicates vectors of different length within a
	// particle or across the particles of a grid.
	ErrDimensionMismatch = errors.New("nbody: dimension mismatch")

	// ErrNonPositiveMass indicates a mass that is zero, negative or not finite.
	ErrNonPositiveMass = errors.New("nbody: mass must be positive and finite")

	// ErrInvalidTimestep indicates a delta_t that is not a positive finite number.
	ErrInvalidTimestep = errors.New("nbody: timestep must be positive and finite")

	// ErrInvalidEndTime indicates an end time that is negative, not finite,
	// or too far away to count steps to.
	ErrInvalidEndTime = errors.New("nbody: invalid end time")

	// ErrCanceled indicates the run was interrupted by its context.
	ErrCanceled = errors.New("nbody: simulation canceled")
)

// ParticleError attributes a validation failure to one particle of a grid.
type ParticleError struct {
	Index int
	Err   error
}

func (e *ParticleError) Error() string {
	return fmt.Sprintf("particle %d: %v", e.Index, e.Err)
}

func (e *ParticleError) Unwrap() error {
	return e.Err
}
