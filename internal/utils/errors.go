package utils

import "fmt"

// ValidationError represents an error occurring during request validation.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NoDataError indicates that a filter combination yields no usable history.
// Surfaced to the caller as a client error, never retried.
type NoDataError struct {
	Message string
}

// Error returns the error message string.
func (e *NoDataError) Error() string {
	return e.Message
}

// NewNoDataError creates a new NoDataError with a specific message.
func NewNoDataError(message string) error {
	return &NoDataError{Message: message}
}

// NewNoDataErrorf creates a new NoDataError with a formatted message.
func NewNoDataErrorf(format string, args ...interface{}) error {
	return &NoDataError{Message: fmt.Sprintf(format, args...)}
}

// TrainingError indicates that a model could not be fitted, e.g. from a
// degenerate series. No meaningful forecast can be produced from it.
type TrainingError struct {
	Message string
	Err     error
}

// Error returns the error message string.
func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error, if any.
func (e *TrainingError) Unwrap() error {
	return e.Err
}

// NewTrainingError creates a new TrainingError wrapping an underlying cause.
func NewTrainingError(message string, err error) error {
	return &TrainingError{Message: message, Err: err}
}

// NewTrainingErrorf creates a new TrainingError with a formatted message.
func NewTrainingErrorf(format string, args ...interface{}) error {
	return &TrainingError{Message: fmt.Sprintf(format, args...)}
}
