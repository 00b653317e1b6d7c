package cubesim

import "errors"

// Sentinel errors for the cubesim package.
var (
	// Input errors
	ErrUnknownKey = errors.New("cubesim: key is not bound to a face")

	// State errors
	ErrClosed = errors.New("cubesim: puzzle closed")
)
