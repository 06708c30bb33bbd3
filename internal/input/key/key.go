package key

import "fmt"

// Key represents a keyboard key.
// For character keys, use KeyRune and set the Rune field in Event.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Arrow keys
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeySpace

	// KeyRune is used for character keys (letters, numbers, punctuation).
	// The actual character is stored in Event.Rune.
	KeyRune
)

var keyNames = map[Key]string{
	KeyNone:       "None",
	KeyEscape:     "Escape",
	KeyEnter:      "Enter",
	KeyTab:        "Tab",
	KeyBackspace:  "Backspace",
	KeyDelete:     "Delete",
	KeyInsert:     "Insert",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyArrowUp:    "Up",
	KeyArrowDown:  "Down",
	KeyArrowLeft:  "Left",
	KeyArrowRight: "Right",
	KeyF1:         "F1",
	KeyF2:         "F2",
	KeyF3:         "F3",
	KeyF4:         "F4",
	KeyF5:         "F5",
	KeyF6:         "F6",
	KeyF7:         "F7",
	KeyF8:         "F8",
	KeyF9:         "F9",
	KeyF10:        "F10",
	KeyF11:        "F11",
	KeyF12:        "F12",
	KeySpace:      "Space",
	KeyRune:       "Rune",
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// keyCodes holds the virtual key codes browsers report in KeyboardEvent.keyCode.
// Acceptance predicates are written against this code space.
var keyCodes = map[Key]int{
	KeyBackspace:  8,
	KeyTab:        9,
	KeyEnter:      13,
	KeyEscape:     27,
	KeySpace:      32,
	KeyPageUp:     33,
	KeyPageDown:   34,
	KeyEnd:        35,
	KeyHome:       36,
	KeyArrowLeft:  37,
	KeyArrowUp:    38,
	KeyArrowRight: 39,
	KeyArrowDown:  40,
	KeyInsert:     45,
	KeyDelete:     46,
	KeyF1:         112,
	KeyF2:         113,
	KeyF3:         114,
	KeyF4:         115,
	KeyF5:         116,
	KeyF6:         117,
	KeyF7:         118,
	KeyF8:         119,
	KeyF9:         120,
	KeyF10:        121,
	KeyF11:        122,
	KeyF12:        123,
}

// Code returns the virtual key code for a special key, or 0.
func (k Key) Code() int {
	return keyCodes[k]
}
