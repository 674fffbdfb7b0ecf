package dynamo

import "errors"

// Domain errors for spring operations.
var (
	// ErrInvalidValue indicates a NaN or Inf value supplied to, or produced by, a spring.
	ErrInvalidValue = errors.New("dynamo: invalid value (NaN or Inf detected)")

	// ErrInvalidTuning indicates a tuning configuration that cannot drive a spring.
	ErrInvalidTuning = errors.New("dynamo: invalid tuning configuration")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownKind indicates an unknown spring kind, integrator or mode name.
	ErrUnknownKind = errors.New("dynamo: unknown kind")

	// ErrDimensionMismatch indicates mismatched value/target dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrInvalidComponent indicates a host component missing a required reference.
	ErrInvalidComponent = errors.New("dynamo: invalid spring component")
)

// SimulationError wraps an error with run context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
