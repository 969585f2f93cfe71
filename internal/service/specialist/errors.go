package specialist

import "errors"

// Sentinel errors for the specialist service layer.
var ErrNotFound = errors.New("specialist not found")
