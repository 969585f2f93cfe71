package member

import "errors"

// Sentinel errors for the member service layer.
var (
	ErrNotFound   = errors.New("member not found")
	ErrValidation = errors.New("invalid payment")
)
