package domain

import "errors"

// Validation errors returned by constructors and parsers
var (
	ErrInvalidValue    = errors.New("invalid value")
	ErrRequiredField   = errors.New("required field missing")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrNonPositiveRent = errors.New("amount must be greater than zero")
)
