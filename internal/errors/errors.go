package errors

import (
	"context"
	stderrors "errors"
	"fmt"

	"firesens/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. Domain errors keep their
// taxonomy code; anything else becomes INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    CodeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the first AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeUnknownOutput   = "UNKNOWN_OUTPUT"
	CodeShapeMismatch   = "SHAPE_MISMATCH"
	CodeExternalService = "EXTERNAL_COMPUTATION_ERROR"
	CodeCancelled       = "CANCELLED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// CodeFor maps an error chain onto an application code
func CodeFor(err error) string {
	var appErr *AppError
	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &appErr):
		return appErr.Code
	case core.IsConfigurationError(err):
		return CodeConfigInvalid
	case core.IsUnknownOutputError(err):
		return CodeUnknownOutput
	case core.IsShapeError(err):
		return CodeShapeMismatch
	case core.IsExternalComputationError(err):
		return CodeExternalService
	case isCancellation(err):
		return CodeCancelled
	default:
		return CodeInternalError
	}
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error onto a process exit status
func ExitCode(err error) int {
	switch CodeFor(err) {
	case "":
		return 0
	case CodeConfigInvalid, CodeUnknownOutput:
		return 2
	case CodeShapeMismatch:
		return 3
	case CodeExternalService:
		return 4
	case CodeCancelled:
		return 130
	default:
		return 1
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
