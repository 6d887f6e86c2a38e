package journal

import "errors"

// ErrActivationNotFound is returned when an activation ID does not exist.
var ErrActivationNotFound = errors.New("journal: activation not found")
