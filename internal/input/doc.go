// Package input turns a stream of keystrokes into word events.
//
// A Handler subscribes to a keystroke source, groups keystrokes typed within
// DigitInterval of each other into a word, and when typing pauses for
// DigitInterval resolves the word against a dictionary.Dictionary and calls
// the matching callback.
//
// # Word Boundaries
//
// Every keystroke moves the inactivity clock, including keystrokes rejected
// by the acceptance predicate. A keystroke arriving more than DigitInterval
// after the previous one starts a new word. Exactly one dispatch timer is
// pending per activation: each keystroke cancels it and schedules a new one.
//
// # Usage
//
//	h := input.NewHandler(dictionary.New(), input.DefaultConfig())
//	_ = h.Listen(dictionary.Exact("hi"), func(m dictionary.Match) error {
//	    fmt.Println("typed", m.Word)
//	    return nil
//	})
//
//	bus := source.NewBus()
//	_ = h.Activate(bus)
//	defer h.Deactivate()
//
//	bus.Publish(key.NewRuneEvent(key.KeyUp, 'h', key.ModNone))
//	bus.Publish(key.NewRuneEvent(key.KeyUp, 'i', key.ModNone))
package input
