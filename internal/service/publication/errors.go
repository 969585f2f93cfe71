package publication

import "errors"

// Sentinel errors for the publication service layer.
var (
	ErrNotFound          = errors.New("publication not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("invalid publication")
	ErrNoFile            = errors.New("publication has no file")
)
