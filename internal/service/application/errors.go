package application

import "errors"

// Sentinel errors for the application service layer.
var (
	ErrNotFound    = errors.New("application not found")
	ErrNotPending  = errors.New("application is not pending")
	ErrInvalidKind = errors.New("unknown application kind")
)
