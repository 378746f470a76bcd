package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound                = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists           = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation              = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation        = new(ErrCodeInvalidOperation, "invalid operation")
	ErrInvalidAmount           = new(ErrCodeInvalidAmount, "invalid amount")
	ErrInvalidState            = new(ErrCodeInvalidState, "operation not permitted in current state")
	ErrDuplicateDocumentNumber = new(ErrCodeDuplicateDocumentNumber, "document number already issued")
	ErrUnknownCurrency         = new(ErrCodeUnknownCurrency, "unknown currency code")
	ErrUnknownRegion           = new(ErrCodeUnknownRegion, "unknown tax region")
	ErrSystem                  = new(ErrCodeSystemError, "system error")
)

const (
	ErrCodeSystemError             = "system_error"
	ErrCodeNotFound                = "not_found"
	ErrCodeAlreadyExists           = "already_exists"
	ErrCodeValidation              = "validation_error"
	ErrCodeInvalidOperation        = "invalid_operation"
	ErrCodeInvalidAmount           = "invalid_amount"
	ErrCodeInvalidState            = "invalid_state"
	ErrCodeDuplicateDocumentNumber = "duplicate_document_number"
	ErrCodeUnknownCurrency         = "unknown_currency"
	ErrCodeUnknownRegion           = "unknown_region"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsInvalidAmount checks if an error is an invalid amount error
func IsInvalidAmount(err error) bool {
	return errors.Is(err, ErrInvalidAmount)
}

// IsInvalidState checks if an error is an invalid state error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsDuplicateDocumentNumber checks if an error is a duplicate document number error
func IsDuplicateDocumentNumber(err error) bool {
	return errors.Is(err, ErrDuplicateDocumentNumber)
}

// IsConfiguration checks if an error comes from missing reference data
// (rate tables) rather than bad user input. These are logged as
// configuration problems, not surfaced as validation failures.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrUnknownCurrency) || errors.Is(err, ErrUnknownRegion)
}
