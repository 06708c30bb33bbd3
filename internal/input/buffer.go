package input

import (
	"strings"

	"github.com/dshills/wordevents/internal/input/key"
)

// WordBuffer accumulates the accepted keystrokes of the word being typed.
// The word text is always the concatenation of the events' Text in order.
// WordBuffer is not safe for concurrent use; the Handler guards it.
type WordBuffer struct {
	word   strings.Builder
	events []key.Event
}

// NewWordBuffer creates an empty buffer.
func NewWordBuffer() *WordBuffer {
	return &WordBuffer{
		events: make([]key.Event, 0, 8), // Most words are short
	}
}

// Append adds an accepted event to the word.
func (b *WordBuffer) Append(e key.Event) {
	b.word.WriteString(e.Text())
	b.events = append(b.events, e)
}

// Word returns the accumulated text.
func (b *WordBuffer) Word() string {
	return b.word.String()
}

// Events returns a copy of the accumulated events.
func (b *WordBuffer) Events() []key.Event {
	events := make([]key.Event, len(b.events))
	copy(events, b.events)
	return events
}

// Len returns the number of accumulated events.
func (b *WordBuffer) Len() int {
	return len(b.events)
}

// IsEmpty returns true if nothing has been accepted since the last reset.
func (b *WordBuffer) IsEmpty() bool {
	return len(b.events) == 0
}

// Reset empties the text and the events together.
func (b *WordBuffer) Reset() {
	b.word.Reset()
	b.events = make([]key.Event, 0, 8)
}
