package client

import "errors"

var (
	ErrNotFound          = errors.New("no endpoint available")
	ErrConnectionFailure = errors.New("connection failure")
)
