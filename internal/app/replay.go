package app

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/dshills/wordevents/internal/input"
	"github.com/dshills/wordevents/internal/input/key"
	"github.com/dshills/wordevents/internal/input/source"
	"github.com/dshills/wordevents/internal/input/timing"
)

// WordBreak in replayed text pauses for longer than the digit interval.
const WordBreak = '|'

// DefaultReplayStep is the pause between replayed keystrokes.
const DefaultReplayStep = 50 * time.Millisecond

// replayEpoch is where replay clocks start.
var replayEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Replay types text through a fresh word engine that shares the
// application's dictionary and configuration but runs on a manual clock.
// Keystrokes are step apart; WordBreak waits out the digit interval so the
// pending word is dispatched. Callback errors are collected and returned
// joined, along with ErrQuit if a word asked to quit (replay stops there).
// Replay cannot run while Run is active.
func (app *Application) Replay(text string, step time.Duration) (input.MetricsSnapshot, error) {
	quit, err := app.beginSession()
	if err != nil {
		return input.MetricsSnapshot{}, err
	}
	defer app.endSession()

	if step <= 0 {
		step = DefaultReplayStep
	}

	clock := timing.NewManual(replayEpoch)
	cfg := app.handler.Config()
	cfg.Clock = clock
	cfg.Scheduler = clock
	cfg.Target = nil

	h := input.NewHandler(app.dict, cfg)
	bus := source.NewBus()
	defer bus.Close()

	if err := h.Activate(bus); err != nil {
		return input.MetricsSnapshot{}, fmt.Errorf("activating replay engine: %w", err)
	}
	defer func() { _ = h.Deactivate() }()

	var errs []error
	advance := func(d time.Duration) bool {
		if err := clock.Advance(d); err != nil {
			errs = append(errs, err)
		}
		return !quit.fired()
	}

	pause := cfg.DigitInterval + time.Millisecond
	typed := false
	stopped := false
	for _, r := range text {
		if r == WordBreak {
			if !advance(pause) {
				stopped = true
				break
			}
			typed = false
			continue
		}
		if typed && !advance(step) {
			stopped = true
			break
		}
		ev := replayEvent(r)
		ev.Timestamp = clock.Now()
		bus.PublishKeystroke(ev)
		typed = true
	}
	if !stopped {
		stopped = !advance(pause)
	}

	app.logger.Debug("replay finished", "text", text, "words", h.Metrics().Dispatches)
	if stopped {
		errs = append(errs, ErrQuit)
	}
	return h.Metrics(), errors.Join(errs...)
}

// replayEvent converts a character of replayed text to a keystroke.
func replayEvent(r rune) key.Event {
	switch r {
	case ' ':
		return key.Event{Key: key.KeySpace}
	case '\n', '\r':
		return key.Event{Key: key.KeyEnter}
	case '\t':
		return key.Event{Key: key.KeyTab}
	}

	e := key.Event{Key: key.KeyRune, Rune: r}
	if unicode.IsUpper(r) {
		e.Modifiers = key.ModShift
	}
	return e
}
