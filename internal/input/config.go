package input

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/dshills/wordevents/internal/input/key"
	"github.com/dshills/wordevents/internal/input/timing"
)

// AcceptFunc decides whether a keystroke contributes to the current word.
type AcceptFunc func(e key.Event) bool

// AcceptAlnum accepts digits and letters: key codes 48-57 and 65-90.
func AcceptAlnum(e key.Event) bool {
	code := e.Code()
	return (code > 47 && code < 58) || (code > 64 && code < 91)
}

// AcceptDigits accepts only digits (key codes 48-57).
func AcceptDigits(e key.Event) bool {
	code := e.Code()
	return code > 47 && code < 58
}

// AcceptLetters accepts only ASCII letters (key codes 65-90).
func AcceptLetters(e key.Event) bool {
	code := e.Code()
	return code > 64 && code < 91
}

// AcceptPrintable accepts any unmodified printable character.
func AcceptPrintable(e key.Event) bool {
	return e.IsRune() && !e.IsModified() && unicode.IsPrint(e.Rune)
}

var acceptPresets = map[string]AcceptFunc{
	"alnum":     AcceptAlnum,
	"digits":    AcceptDigits,
	"letters":   AcceptLetters,
	"printable": AcceptPrintable,
}

// AcceptPresetNames lists the names accepted by AcceptPreset.
func AcceptPresetNames() []string {
	return []string{"alnum", "digits", "letters", "printable"}
}

// AcceptPreset returns the named acceptance predicate.
func AcceptPreset(name string) (AcceptFunc, error) {
	fn, ok := acceptPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown accept preset %q (want one of %s)", name, strings.Join(AcceptPresetNames(), ", "))
	}
	return fn, nil
}

// Config configures a Handler.
type Config struct {
	// Target is passed to every callback as Match.Target.
	// When nil, the source given to Activate is used.
	Target any

	// DigitInterval is the longest gap between keystrokes of one word and
	// the inactivity delay before a word is dispatched.
	// Default: 500ms
	DigitInterval time.Duration

	// EventType is the keystroke phase subscribed to on Activate.
	// Default: keyup
	EventType key.EventType

	// Accept decides which keystrokes become part of the word.
	// Default: AcceptAlnum
	Accept AcceptFunc

	// Clock supplies keystroke arrival times. Default: timing.System.
	Clock timing.Clock

	// Scheduler runs the delayed dispatch. Default: timing.System reporting
	// dispatch errors to Logger.
	Scheduler timing.Scheduler

	// Logger receives engine diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultDigitInterval is the default inactivity window.
const DefaultDigitInterval = 500 * time.Millisecond

// DefaultConfig returns a configuration with the default interval, event
// type and acceptance predicate. Clock, Scheduler and Logger are filled in
// by NewHandler.
func DefaultConfig() Config {
	return Config{
		DigitInterval: DefaultDigitInterval,
		EventType:     key.KeyUp,
		Accept:        AcceptAlnum,
	}
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	if c.DigitInterval <= 0 {
		c.DigitInterval = DefaultDigitInterval
	}
	if c.EventType == 0 {
		c.EventType = key.KeyUp
	}
	if c.Accept == nil {
		c.Accept = AcceptAlnum
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = timing.System{}
	}
	return c
}
