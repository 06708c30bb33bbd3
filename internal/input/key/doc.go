// Package key provides the keystroke event types consumed by the word engine.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Shift, Meta)
//   - EventType: The keystroke phase a source reports (keydown, keypress, keyup)
//   - Event: A single keystroke with modifiers and timestamp
//
// # Key Codes
//
// Event.Code maps every event into the virtual key code space browsers use,
// so acceptance rules such as "digits and uppercase letters" can be written
// as code ranges independently of the input source.
package key
