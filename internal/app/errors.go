package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrClosed indicates the application has been shut down.
	ErrClosed = errors.New("application closed")
)

// InitError represents a failure to build one component during New.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// BindError reports a [[words]] entry that could not be bound.
type BindError struct {
	// Index is the entry's position in the words list.
	Index int

	// Entry names the word or pattern.
	Entry string

	Err error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("words[%d] %s: %v", e.Index, e.Entry, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
