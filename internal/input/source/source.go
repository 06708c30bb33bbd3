// Package source provides keystroke sources the word engine can subscribe to.
//
// A Source delivers key.Events of one EventType to each subscribed Handler.
// Bus is an in-process source fed by Publish; Terminal reads keystrokes from
// a tcell screen and publishes them on an embedded Bus.
package source

import (
	"errors"

	"github.com/dshills/wordevents/internal/input/key"
)

// Sentinel errors for sources.
var (
	// ErrNilHandler is returned when Subscribe is given a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown or
	// already removed subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrClosed is returned by operations on a closed source.
	ErrClosed = errors.New("source is closed")
)

// Handler receives keystrokes from a source.
type Handler func(event key.Event)

// Subscription is the handle returned by Subscribe.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// EventType returns the subscribed keystroke phase.
	EventType() key.EventType
}

// Source is a subscribable stream of keystrokes.
type Source interface {
	// Subscribe registers h for events of type t.
	Subscribe(t key.EventType, h Handler) (Subscription, error)

	// Unsubscribe removes a subscription returned by Subscribe.
	Unsubscribe(sub Subscription) error
}
