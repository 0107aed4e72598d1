package service

import "errors"

// Domain errors surfaced to handlers. Business conflicts are distinct from
// generic failures so the HTTP layer can map them to 4xx instead of 500.
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidOrder           = errors.New("invalid order data")
	ErrNotServiceable         = errors.New("pincode not serviceable")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrPaymentAlreadyCaptured = errors.New("payment already captured")
	ErrPaymentNotCaptured     = errors.New("payment not captured")
	ErrNoPaymentID            = errors.New("no payment id recorded for order")
	ErrInvalidStatus          = errors.New("invalid status value")
)
