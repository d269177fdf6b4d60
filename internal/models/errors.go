package models

import "errors"

// Business failures are returned as wrapped sentinel errors and matched with
// errors.Is at the HTTP boundary. Panics are reserved for programming bugs.
var (
	ErrAccountNotFound              = errors.New("account not found")
	ErrTransactionNotFound          = errors.New("transaction not found")
	ErrScheduledTransactionNotFound = errors.New("scheduled transaction not found")
	ErrInsufficientBalance          = errors.New("insufficient balance")
	ErrConversionFailed             = errors.New("currency conversion failed")
	ErrPriceLookupFailed            = errors.New("currency price lookup failed")
	ErrPersistence                  = errors.New("persistence failure")
	ErrInvalidRequest               = errors.New("invalid request")
)
