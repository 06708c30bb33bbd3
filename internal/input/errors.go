package input

import (
	"errors"
	"fmt"

	"github.com/dshills/wordevents/internal/dictionary"
)

// Sentinel errors for the word engine.
var (
	// ErrAlreadyActive is returned when Activate is called on an active handler.
	ErrAlreadyActive = errors.New("handler is already active")

	// ErrNilSource is returned when Activate is given a nil source.
	ErrNilSource = errors.New("source cannot be nil")
)

// DispatchError wraps a failure while dispatching a completed word.
type DispatchError struct {
	// Word is the word being dispatched.
	Word string

	// Resolved is true when the dictionary found an entry and its callback
	// failed, false when resolution itself failed.
	Resolved bool

	// Matcher is the entry whose callback failed, if Resolved.
	Matcher dictionary.Matcher

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Resolved {
		return fmt.Sprintf("word %q matched %s: %v", e.Word, e.Matcher, e.Err)
	}
	return fmt.Sprintf("resolving word %q: %v", e.Word, e.Err)
}

// Unwrap returns the underlying error.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
