package dictionary

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dshills/wordevents/internal/input/key"
)

// Match is what a callback receives when a typed word resolves to its entry.
type Match struct {
	// Target is the object the engine was configured to dispatch on.
	Target any

	// Events are the accepted keystrokes that formed the word, in typing order.
	Events []key.Event

	// Word is the concatenated text of Events.
	Word string

	// Matcher is the entry that matched.
	Matcher Matcher
}

// Callback handles a resolved word. A returned error is propagated to
// whoever triggered the dispatch.
type Callback func(m Match) error

// Entry is a registered (matcher, callback) pair.
type Entry struct {
	Matcher  Matcher
	Callback Callback
}

// Dictionary stores exact-word and pattern entries.
// It is safe for concurrent use.
type Dictionary struct {
	mu sync.RWMutex

	// exact maps literal words to callbacks.
	exact map[string]Entry

	// patterns maps pattern sources to entries; order keeps registration order.
	patterns map[string]Entry
	order    []string
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		exact:    make(map[string]Entry),
		patterns: make(map[string]Entry),
	}
}

// Listen registers cb for m, replacing any callback already registered for
// the same word or pattern source.
func (d *Dictionary) Listen(m Matcher, cb Callback) error {
	return d.ListenAll([]Matcher{m}, []Callback{cb})
}

// ListenAll registers matchers[i] with callbacks[i] for every i. The lists
// must have the same length and every callback must be non-nil; otherwise
// ErrInvalidArgument is returned and nothing is registered.
func (d *Dictionary) ListenAll(matchers []Matcher, callbacks []Callback) error {
	if len(matchers) != len(callbacks) {
		return fmt.Errorf("%w: %d matchers but %d callbacks", ErrInvalidArgument, len(matchers), len(callbacks))
	}
	for i, cb := range callbacks {
		if cb == nil {
			return fmt.Errorf("%w: nil callback for %s", ErrInvalidArgument, matchers[i])
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i, m := range matchers {
		entry := Entry{Matcher: m, Callback: callbacks[i]}
		if !m.IsPattern() {
			d.exact[m.Key()] = entry
			continue
		}
		if _, exists := d.patterns[m.Key()]; !exists {
			d.order = append(d.order, m.Key())
		}
		d.patterns[m.Key()] = entry
	}
	return nil
}

// Unlisten removes the entries for the given matchers. Matchers that are not
// registered are ignored.
func (d *Dictionary) Unlisten(matchers ...Matcher) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, m := range matchers {
		if !m.IsPattern() {
			delete(d.exact, m.Key())
			continue
		}
		if _, exists := d.patterns[m.Key()]; !exists {
			continue
		}
		delete(d.patterns, m.Key())
		for i, src := range d.order {
			if src == m.Key() {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Resolve finds the entry for word. Exact entries take precedence over
// patterns; patterns are tried in registration order. ok is false when no
// entry matches. An error is returned only if a pattern evaluation fails.
func (d *Dictionary) Resolve(word string) (entry Entry, ok bool, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if e, found := d.exact[word]; found {
		return e, true, nil
	}

	for _, src := range d.order {
		e := d.patterns[src]
		matched, err := e.Matcher.Match(word)
		if err != nil {
			return Entry{}, false, err
		}
		if matched {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Len returns the number of registered entries.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.exact) + len(d.patterns)
}

// Entries returns all entries: exact words first in sorted order,
// then patterns in registration order.
func (d *Dictionary) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]Entry, 0, len(d.exact)+len(d.patterns))
	for _, word := range slices.Sorted(maps.Keys(d.exact)) {
		entries = append(entries, d.exact[word])
	}
	for _, src := range d.order {
		entries = append(entries, d.patterns[src])
	}
	return entries
}
