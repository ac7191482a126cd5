package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrMissingData        = errors.New("missing data")
	ErrInsufficientSample = errors.New("insufficient sample")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrAlreadyGraded      = errors.New("bet record already graded")
	ErrNotFound           = errors.New("record not found")
)

// MissingDataError reports a required input that was absent.
type MissingDataError struct {
	Entity string
	Field  string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data: %s.%s", e.Entity, e.Field)
}

// Unwrap allows errors.Is(err, ErrMissingData).
func (e *MissingDataError) Unwrap() error {
	return ErrMissingData
}

// InsufficientSampleError reports a statistic requested over too few samples.
type InsufficientSampleError struct {
	Required int
	Actual   int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("insufficient sample: need %d, have %d", e.Required, e.Actual)
}

// Unwrap allows errors.Is(err, ErrInsufficientSample).
func (e *InsufficientSampleError) Unwrap() error {
	return ErrInsufficientSample
}

// ConfigurationError is returned by constructors that reject out-of-range
// weights or thresholds.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
