package session

import "errors"

// ErrNoFormState is returned when a session has no state for the requested form
var ErrNoFormState = errors.New("no form state for session")
