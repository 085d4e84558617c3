package errors

import (
	"fmt"
)

// KBError is the structured error type for the knowledge base.
// It provides rich context for error handling, logging, and user presentation.
type KBError struct {
	// Code is the unique error code (e.g., "ERR_402_QUERY_TOO_SHORT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Validation, Structural, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *KBError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *KBError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with KBError.
func (e *KBError) Is(target error) bool {
	if t, ok := target.(*KBError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *KBError) WithDetail(key, value string) *KBError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new KBError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *KBError {
	return &KBError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a KBError from an existing error.
// The error's message becomes the KBError message.
func Wrap(code string, err error) *KBError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Validation creates a validation error (malformed query or input).
func Validation(message string) *KBError {
	return New(ErrCodeInvalidInput, message, nil)
}

// Unavailable creates an unavailable error: the caller asked for a feature
// whose prerequisite data is absent.
func Unavailable(code, message string) *KBError {
	return New(code, message, nil)
}

// Structural creates a fatal structural error (artifact integrity or size).
func Structural(code, message string) *KBError {
	return New(code, message, nil)
}

// Transient creates a recoverable per-unit error; callers log and skip.
func Transient(code string, cause error) *KBError {
	return Wrap(code, cause)
}

// IsValidation reports whether err is a validation-category error.
func IsValidation(err error) bool {
	return GetCategory(err) == CategoryValidation
}

// IsUnavailable reports whether err is an unavailable-category error.
func IsUnavailable(err error) bool {
	return GetCategory(err) == CategoryUnavailable
}

// IsStructural reports whether err is a structural-category error.
func IsStructural(err error) bool {
	return GetCategory(err) == CategoryStructural
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a KBError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if ke, ok := err.(*KBError); ok {
		return ke.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the current build or load.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ke, ok := err.(*KBError); ok {
		return ke.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a KBError.
// Returns empty string if not a KBError.
func GetCode(err error) string {
	if ke, ok := err.(*KBError); ok {
		return ke.Code
	}
	return ""
}

// GetCategory extracts the category from a KBError.
// Returns empty string if not a KBError.
func GetCategory(err error) Category {
	if ke, ok := err.(*KBError); ok {
		return ke.Category
	}
	return ""
}
