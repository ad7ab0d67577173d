package service

import (
	"context"
	"errors"
	"fmt"
)

// Error classes. Every error a service returns either wraps one of these or is unexpected.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrValidation       = errors.New("validation failed")
	ErrCancelled        = errors.New("request cancelled")
)

// Error is a classified error with a message safe to show to API clients
type Error struct {
	class   error
	message string
	cause   error
}

func newError(class error, message string) *Error {
	return &Error{class: class, message: message}
}

func (e *Error) Error() string {
	return e.message
}

// Unwrap exposes the class and the underlying cause to errors.Is
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.class}
	}
	return []error{e.class, e.cause}
}

// Message returns the client-facing text
func (e *Error) Message() string {
	return e.message
}

// Specific errors
var (
	ErrTenantNotFound   = newError(ErrNotFound, "Tenant not found.")
	ErrUnitNotFound     = newError(ErrNotFound, "Rental unit not found.")
	ErrContractNotFound = newError(ErrNotFound, "Contract not found.")
	ErrPaymentNotFound  = newError(ErrNotFound, "Rent payment not found.")

	ErrDuplicatePayment = newError(ErrConflict, "A rent payment for the given contract and due date already exists.")
	ErrUnitOccupied     = newError(ErrConflict, "Rental unit is already occupied.")

	ErrReceiptUnpaid        = newError(ErrInvalidOperation, "Cannot send receipt for unpaid invoice.")
	ErrContractHasProcessed = newError(ErrInvalidOperation, "Cannot delete contract with processed payments.")
	ErrTenantHasContracts   = newError(ErrInvalidOperation, "Cannot delete tenant with existing contracts.")
	ErrUnitHasContracts     = newError(ErrInvalidOperation, "Cannot delete rental unit with existing contracts.")
	ErrNothingOutstanding   = newError(ErrInvalidOperation, "Payment has no outstanding balance.")
	ErrCardPaymentsDisabled = newError(ErrInvalidOperation, "Card payments are not configured.")
	ErrIntentMismatch       = newError(ErrInvalidOperation, "Payment intent does not belong to this payment.")
	ErrIntentNotSucceeded   = newError(ErrInvalidOperation, "Payment intent has not succeeded.")
)

// validationError classifies a domain validation failure
func validationError(err error) error {
	return &Error{class: ErrValidation, message: err.Error(), cause: err}
}

// storeError classifies an infrastructure failure; cancellation is reported as such
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{class: ErrCancelled, message: "The request was cancelled.", cause: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ClientMessage returns the message for a classified error and false for unexpected ones
func ClientMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.message, true
	}
	return "", false
}
