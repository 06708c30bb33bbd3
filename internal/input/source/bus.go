package source

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/wordevents/internal/input/key"
)

// Bus is an in-process Source. Events passed to Publish are delivered
// synchronously, in subscription order, to every subscription of the
// event's type.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	closed bool
}

type subscription struct {
	id        string
	eventType key.EventType
	handler   Handler
}

func (s *subscription) ID() string               { return s.id }
func (s *subscription) EventType() key.EventType { return s.eventType }

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for events of type t.
func (b *Bus) Subscribe(t key.EventType, h Handler) (Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &subscription{
		id:        uuid.New().String(),
		eventType: t,
		handler:   h,
	}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// Unsubscribe removes sub. Events already being delivered when Unsubscribe
// is called may still reach it.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.ID() {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to the subscribers of its type. Handlers run
// without the bus lock held, so they may subscribe or unsubscribe.
func (b *Bus) Publish(event key.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.eventType == event.Type {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h(event)
	}
}

// PublishKeystroke publishes e as a keydown, a keypress (for character
// keys only) and a keyup, for sources that observe a keystroke once.
func (b *Bus) PublishKeystroke(e key.Event) {
	for _, typ := range []key.EventType{key.KeyDown, key.KeyPress, key.KeyUp} {
		if typ == key.KeyPress && !e.IsRune() {
			continue
		}
		e.Type = typ
		b.Publish(e)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops all subscriptions. Later Publish calls are ignored and
// Subscribe returns ErrClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = nil
}
