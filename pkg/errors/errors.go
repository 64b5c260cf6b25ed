package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvariantViolation      = errors.New("invariant violation")
	ErrLoanNotFound            = errors.New("loan not found")
	ErrLoanNotActive           = errors.New("loan is not active")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStoreFailure            = errors.New("record store failure")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeInvariantViolation      = "INVARIANT_VIOLATION"
	ErrCodeLoanNotFound            = "LOAN_NOT_FOUND"
	ErrCodeLoanNotActive           = "LOAN_NOT_ACTIVE"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeStoreError              = "STORE_ERROR"
)

// CodeOf returns the business code carried by err, or an empty string.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapInvalidInput(format string, args ...any) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInput,
		fmt.Sprintf(format, args...),
		ErrInvalidInput,
	)
}

func WrapInvariantViolation(format string, args ...any) *BusinessError {
	return NewBusinessError(
		ErrCodeInvariantViolation,
		fmt.Sprintf(format, args...),
		ErrInvariantViolation,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanNotActive(loanID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan with ID %s is %s", loanID, status),
		ErrLoanNotActive,
	)
}

func WrapInvalidStatusTransition(from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatusTransition,
		fmt.Sprintf("cannot move loan from %s to %s", from, to),
		ErrInvalidStatusTransition,
	)
}

// WrapStoreError keeps the underlying driver error reachable through
// errors.Is while still matching ErrStoreFailure.
func WrapStoreError(op string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStoreError,
		fmt.Sprintf("record store operation %q failed", op),
		fmt.Errorf("%w: %w", ErrStoreFailure, err),
	)
}
