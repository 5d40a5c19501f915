// Package errors provides a lightweight structured error type (DriverError)
// for category-based classification and retry semantics in the git driver.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a DriverError for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External tool integration errors
	CategoryGit     ErrorCategory = "git"
	CategoryLFS     ErrorCategory = "lfs"
	CategoryNetwork ErrorCategory = "network"
	CategoryProcess ErrorCategory = "process"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// DriverError is a structured error with category, retryability, and context
type DriverError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for DriverError
type ContextFields map[string]any

// Error implements the error interface
func (e *DriverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *DriverError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *DriverError) WithContext(key string, value any) *DriverError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new DriverError
func New(category ErrorCategory, severity ErrorSeverity, message string) *DriverError {
	return &DriverError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new DriverError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DriverError {
	return &DriverError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// Retryable creates a new retryable DriverError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *DriverError {
	return &DriverError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if de, ok := err.(*DriverError); ok {
		return de.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if de, ok := err.(*DriverError); ok {
		return de.Retryable
	}
	return false
}

// IsFatal checks if an error is fatal
func IsFatal(err error) bool {
	if de, ok := err.(*DriverError); ok {
		return de.Severity == SeverityFatal
	}
	return false
}
