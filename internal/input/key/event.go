package key

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// EventType identifies which phase of a keystroke an event reports.
type EventType uint8

const (
	// KeyDown is reported when a key is pressed.
	KeyDown EventType = iota + 1

	// KeyPress is reported for keys that produce a character.
	KeyPress

	// KeyUp is reported when a key is released.
	KeyUp
)

// String returns the DOM-style event name.
func (t EventType) String() string {
	switch t {
	case KeyDown:
		return "keydown"
	case KeyPress:
		return "keypress"
	case KeyUp:
		return "keyup"
	default:
		return "unknown"
	}
}

// ParseEventType parses "keydown", "keypress" or "keyup" (case-insensitive).
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keydown":
		return KeyDown, nil
	case "keypress":
		return KeyPress, nil
	case "keyup":
		return KeyUp, nil
	default:
		return 0, fmt.Errorf("unknown event type %q", s)
	}
}

// Event represents a single keystroke reported by an input source.
type Event struct {
	// Type is the keystroke phase.
	Type EventType

	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the source observed the event.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character with the current timestamp.
func NewRuneEvent(t EventType, r rune, mods Modifier) Event {
	return Event{
		Type:      t,
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key with the current timestamp.
func NewSpecialEvent(t EventType, k Key, mods Modifier) Event {
	return Event{
		Type:      t,
		Key:       k,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsModified returns true if Ctrl, Alt or Meta is held.
// Shift alone is not considered a modification of a character.
func (e Event) IsModified() bool {
	return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
}

// Text returns the key value: the character for rune events and the key
// name otherwise.
func (e Event) Text() string {
	if e.IsRune() {
		return string(e.Rune)
	}
	if e.Key == KeySpace {
		return " "
	}
	return e.Key.String()
}

// Code returns the virtual key code of the event. Letters map to the
// uppercase ASCII range (65-90) regardless of case, digits to 48-57, other
// characters to their code point and special keys to their browser key code.
func (e Event) Code() int {
	if !e.IsRune() {
		return e.Key.Code()
	}
	r := e.Rune
	if r < unicode.MaxASCII && unicode.IsLetter(r) {
		return int(unicode.ToUpper(r))
	}
	return int(r)
}

// String returns a readable form such as "keyup:Ctrl+a".
func (e Event) String() string {
	text := e.Text()
	if mods := e.Modifiers.String(); mods != "" && (e.IsModified() || !e.IsRune()) {
		text = mods + "+" + text
	}
	return e.Type.String() + ":" + text
}
