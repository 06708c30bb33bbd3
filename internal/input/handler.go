package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/wordevents/internal/dictionary"
	"github.com/dshills/wordevents/internal/input/key"
	"github.com/dshills/wordevents/internal/input/source"
	"github.com/dshills/wordevents/internal/input/timing"
)

// Handler turns keystrokes into words and dispatches them to a dictionary.
//
// Keystrokes separated by at most DigitInterval form one word. When no
// keystroke arrives for DigitInterval the word is resolved against the
// dictionary and the matching callback is invoked.
//
// Callbacks run on the scheduler's goroutine. They may use the dictionary
// and call Deactivate, but must not call HandleEvent on the same handler.
type Handler struct {
	// gate serializes keystroke handling with dispatch, so a word's
	// callback finishes before keystrokes of the next word are appended.
	gate sync.Mutex

	// mu guards session.
	mu sync.Mutex

	config  Config
	dict    *dictionary.Dictionary
	metrics *Metrics
	session *session
}

// session is the state of one activation.
type session struct {
	source source.Source
	sub    source.Subscription
	target any

	buffer *WordBuffer

	// timer is the single pending dispatch; generation identifies it.
	timer      timing.Timer
	generation uint64

	lastTime time.Time
	hasLast  bool
}

// NewHandler creates an inactive handler dispatching to dict.
// A nil dict is replaced by an empty dictionary.
func NewHandler(dict *dictionary.Dictionary, config Config) *Handler {
	if dict == nil {
		dict = dictionary.New()
	}

	config = config.withDefaults()
	if config.Scheduler == nil {
		logger := config.Logger
		config.Scheduler = timing.System{
			OnError: func(err error) {
				logger.Error("word dispatch failed", "error", err)
			},
		}
	}

	return &Handler{
		config:  config,
		dict:    dict,
		metrics: NewMetrics(),
	}
}

// Dictionary returns the dictionary words are resolved against.
func (h *Handler) Dictionary() *dictionary.Dictionary {
	return h.dict
}

// Config returns the effective configuration.
func (h *Handler) Config() Config {
	return h.config
}

// Listen registers cb for m. See dictionary.Dictionary.Listen.
func (h *Handler) Listen(m dictionary.Matcher, cb dictionary.Callback) error {
	return h.dict.Listen(m, cb)
}

// ListenAll registers matchers with their callbacks pairwise.
// See dictionary.Dictionary.ListenAll.
func (h *Handler) ListenAll(matchers []dictionary.Matcher, callbacks []dictionary.Callback) error {
	return h.dict.ListenAll(matchers, callbacks)
}

// Unlisten removes matchers from the dictionary.
func (h *Handler) Unlisten(matchers ...dictionary.Matcher) {
	h.dict.Unlisten(matchers...)
}

// Activate subscribes the handler to src. Only one source can be active at
// a time; activating an active handler returns ErrAlreadyActive.
func (h *Handler) Activate(src source.Source) error {
	if src == nil {
		return ErrNilSource
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session != nil {
		return ErrAlreadyActive
	}

	sub, err := src.Subscribe(h.config.EventType, h.HandleEvent)
	if err != nil {
		return fmt.Errorf("subscribing to %s events: %w", h.config.EventType, err)
	}

	target := h.config.Target
	if target == nil {
		target = src
	}

	h.session = &session{
		source: src,
		sub:    sub,
		target: target,
		buffer: NewWordBuffer(),
	}
	h.config.Logger.Debug("word handler activated", "event_type", h.config.EventType.String(), "digit_interval", h.config.DigitInterval)
	return nil
}

// Deactivate unsubscribes from the active source and cancels the pending
// dispatch. No word typed before Deactivate is dispatched afterwards.
// Deactivating an inactive handler is a no-op.
func (h *Handler) Deactivate() error {
	h.mu.Lock()
	s := h.session
	if s == nil {
		h.mu.Unlock()
		return nil
	}
	h.session = nil
	h.cancelLocked(s)
	s.buffer.Reset()
	h.mu.Unlock()

	if err := s.source.Unsubscribe(s.sub); err != nil {
		return fmt.Errorf("unsubscribing: %w", err)
	}
	h.config.Logger.Debug("word handler deactivated")
	return nil
}

// IsActive returns true between Activate and Deactivate.
func (h *Handler) IsActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session != nil
}

// Pending returns the word accumulated so far, or "" when inactive.
func (h *Handler) Pending() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		return ""
	}
	return h.session.buffer.Word()
}

// Metrics returns a snapshot of the handler's counters.
func (h *Handler) Metrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

// HandleEvent processes one keystroke. It is the handler subscribed to the
// source by Activate and is ignored while the handler is inactive.
func (h *Handler) HandleEvent(e key.Event) {
	h.gate.Lock()
	defer h.gate.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.session
	if s == nil {
		return
	}

	now := h.config.Clock.Now()
	gapOK := !s.hasLast || now.Sub(s.lastTime) <= h.config.DigitInterval
	s.lastTime = now
	s.hasLast = true

	if !gapOK {
		if !s.buffer.IsEmpty() {
			h.metrics.recordWordBreak()
			h.config.Logger.Debug("word abandoned after gap", "word", s.buffer.Word())
		}
		s.buffer.Reset()
	}

	// Rejected keystrokes still move the clock above.
	accepted := h.config.Accept(e)
	if accepted {
		s.buffer.Append(e)
	}
	h.metrics.recordEvent(accepted)

	h.rescheduleLocked(s)
}

// rescheduleLocked replaces the pending dispatch with a new one.
func (h *Handler) rescheduleLocked(s *session) {
	h.cancelLocked(s)
	gen := s.generation
	s.timer = h.config.Scheduler.AfterFunc(h.config.DigitInterval, func() error {
		return h.dispatch(s, gen)
	})
}

// cancelLocked stops the pending dispatch and invalidates any dispatch that
// already fired but has not yet acquired the lock.
func (h *Handler) cancelLocked(s *session) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

// dispatch resolves the buffered word and invokes its callback. It does
// nothing if the session was deactivated or the timer was replaced.
func (h *Handler) dispatch(s *session, gen uint64) error {
	h.gate.Lock()
	defer h.gate.Unlock()

	h.mu.Lock()
	if h.session != s || s.generation != gen {
		h.mu.Unlock()
		return nil
	}
	s.timer = nil
	word := s.buffer.Word()
	events := s.buffer.Events()
	s.buffer.Reset()
	target := s.target
	h.mu.Unlock()

	entry, ok, err := h.dict.Resolve(word)
	if err != nil {
		h.metrics.recordError()
		return &DispatchError{Word: word, Err: err}
	}
	h.metrics.recordDispatch(ok)
	if !ok {
		h.config.Logger.Debug("word not in dictionary", "word", word)
		return nil
	}

	h.config.Logger.Debug("dispatching word", "word", word, "matcher", entry.Matcher.String(), "events", len(events))

	start := time.Now()
	err = entry.Callback(dictionary.Match{
		Target:  target,
		Events:  events,
		Word:    word,
		Matcher: entry.Matcher,
	})
	h.metrics.recordCallback(time.Since(start))
	if err != nil {
		h.metrics.recordError()
		return &DispatchError{Word: word, Resolved: true, Matcher: entry.Matcher, Err: err}
	}
	return nil
}
