package script

import "errors"

// Errors for script operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNilRegistrar is returned when New is given no registrar.
	ErrNilRegistrar = errors.New("registrar cannot be nil")
)
