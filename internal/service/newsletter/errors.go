package newsletter

import "errors"

// Sentinel errors for the newsletter service layer.
var (
	ErrNotFound          = errors.New("newsletter not found")
	ErrValidation        = errors.New("invalid newsletter")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadySent       = errors.New("newsletter already sent")
	ErrSendInProgress    = errors.New("newsletter send already in progress")
	ErrNoRecipients      = errors.New("no active subscribers")
)
