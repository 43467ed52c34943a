package structs

import "errors"

var (
	// ErrTransportFailure wraps every failed batch call, no partial results are returned with it.
	ErrTransportFailure = errors.New("transport failure")
	// ErrMalformedKey marks a key whose byte layout can't be verified.
	ErrMalformedKey       = errors.New("malformed key")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvariantViolation = errors.New("invariant violation")
)
