package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrConfiguration covers unknown groups, unknown parameter names and
	// missing or malformed bounds.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownOutput is returned when a model does not produce the
	// requested result variable.
	ErrUnknownOutput = errors.New("unknown output variable")

	// ErrShape is returned when a problem set is in the wrong shape
	// (unsplit vs split) for the requested operation.
	ErrShape = errors.New("problem set shape mismatch")

	// ErrExternalComputation covers sampler and estimator failures,
	// including non-conforming output shapes.
	ErrExternalComputation = errors.New("external computation failed")
)

// Error constructors with context
func NewConfigurationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func NewUnknownOutputError(model, resultVar string) error {
	return fmt.Errorf("%w: model %s has no output %q", ErrUnknownOutput, model, resultVar)
}

func NewShapeError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrShape, fmt.Sprintf(format, args...))
}

func NewExternalComputationError(collaborator string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExternalComputation, collaborator, err)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsUnknownOutputError(err error) bool {
	return errors.Is(err, ErrUnknownOutput)
}

func IsShapeError(err error) bool {
	return errors.Is(err, ErrShape)
}

func IsExternalComputationError(err error) bool {
	return errors.Is(err, ErrExternalComputation)
}
