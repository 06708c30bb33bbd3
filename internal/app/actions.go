package app

import (
	"fmt"
	"strings"

	"github.com/dshills/wordevents/internal/config"
	"github.com/dshills/wordevents/internal/dictionary"
)

// Built-in actions a [[words]] entry can name.
const (
	ActionPrint = "print"
	ActionQuit  = "quit"
	ActionBell  = "bell"
)

// bindWords replaces the words registered from configuration with words.
// Nothing changes if any entry fails to build.
func (app *Application) bindWords(words []config.WordConfig) error {
	matchers := make([]dictionary.Matcher, 0, len(words))
	callbacks := make([]dictionary.Callback, 0, len(words))
	for i, w := range words {
		m, err := w.Matcher()
		if err != nil {
			return &BindError{Index: i, Entry: w.String(), Err: err}
		}
		cb, err := app.action(w)
		if err != nil {
			return &BindError{Index: i, Entry: w.String(), Err: err}
		}
		matchers = append(matchers, m)
		callbacks = append(callbacks, cb)
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	app.dict.Unlisten(app.bound...)
	if err := app.dict.ListenAll(matchers, callbacks); err != nil {
		app.bound = nil
		return err
	}
	app.bound = matchers
	return nil
}

// action builds the callback for a [[words]] entry.
func (app *Application) action(w config.WordConfig) (dictionary.Callback, error) {
	switch w.Action {
	case ActionPrint, "":
		return func(m dictionary.Match) error {
			app.show(LineMatch, formatMessage(w.Message, m))
			return nil
		}, nil

	case ActionQuit:
		return func(m dictionary.Match) error {
			if w.Message != "" {
				app.show(LineInfo, formatMessage(w.Message, m))
			}
			app.logger.Info("quit word typed", "word", m.Word)
			app.Quit()
			return nil
		}, nil

	case ActionBell:
		return func(m dictionary.Match) error {
			app.currentDisplay().Bell()
			if w.Message != "" {
				app.show(LineMatch, formatMessage(w.Message, m))
			}
			return nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown action %q", w.Action)
	}
}

// formatMessage expands {word} and {matcher} in msg. An empty msg yields a
// default report of the match.
func formatMessage(msg string, m dictionary.Match) string {
	if msg == "" {
		return fmt.Sprintf("%q matched %s", m.Word, m.Matcher)
	}
	return strings.NewReplacer(
		"{word}", m.Word,
		"{matcher}", m.Matcher.String(),
	).Replace(msg)
}
