package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeBackend       = "BACKEND_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery       = NewDomainError(ErrCodeValidation, "query text is empty")
	ErrInvalidBatchSize = NewDomainError(ErrCodeValidation, "batch size must be a positive integer")
	ErrInvalidPageRange = NewDomainError(ErrCodeValidation, "page-min cannot be greater than page-max")
)

// Not found errors
var (
	ErrCollectionNotFound = NewDomainError(ErrCodeNotFound, "collection not found; run 'docvec ingest' first")
)

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// Backendf wraps a store failure with a formatted message.
func Backendf(err error, format string, args ...any) *DomainError {
	return NewDomainErrorWithCause(ErrCodeBackend, fmt.Sprintf(format, args...), err)
}

// CodeOf returns the domain error code for err, or INTERNAL_ERROR when
// the error does not carry one.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsBackend reports whether err is a backend error.
func IsBackend(err error) bool {
	return CodeOf(err) == ErrCodeBackend
}
