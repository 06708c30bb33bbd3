package input

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/wordevents/internal/dictionary"
	"github.com/dshills/wordevents/internal/input/key"
	"github.com/dshills/wordevents/internal/input/source"
	"github.com/dshills/wordevents/internal/input/timing"
)

type harness struct {
	clock   *timing.Manual
	bus     *source.Bus
	handler *Handler
	matches []dictionary.Match
}

func newHarness(t *testing.T, config Config) *harness {
	t.Helper()

	clock := timing.NewManual(time.Unix(0, 0))
	config.Clock = clock
	config.Scheduler = clock

	hs := &harness{
		clock:   clock,
		bus:     source.NewBus(),
		handler: NewHandler(dictionary.New(), config),
	}
	require.NoError(t, hs.handler.Activate(hs.bus))
	return hs
}

func (hs *harness) record(m dictionary.Match) error {
	hs.matches = append(hs.matches, m)
	return nil
}

func (hs *harness) press(r rune) {
	hs.bus.Publish(key.NewRuneEvent(key.KeyUp, r, key.ModNone))
}

func (hs *harness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	require.NoError(t, hs.clock.Advance(d))
}

func TestHandlerSingleWord(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("hi"), hs.record))

	hs.press('h')
	hs.advance(t, 200*time.Millisecond)
	hs.press('i')
	hs.advance(t, 499*time.Millisecond)
	assert.Empty(t, hs.matches)

	hs.advance(t, time.Millisecond)
	require.Len(t, hs.matches, 1)

	m := hs.matches[0]
	assert.Equal(t, "hi", m.Word)
	require.Len(t, m.Events, 2)
	assert.Equal(t, 'h', m.Events[0].Rune)
	assert.Equal(t, 'i', m.Events[1].Rune)
	assert.Equal(t, dictionary.Exact("hi").Key(), m.Matcher.Key())
	assert.Empty(t, hs.handler.Pending())
}

func TestHandlerGapSplitsWords(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("hi"), hs.record))

	hs.press('h')
	hs.advance(t, 700*time.Millisecond)
	hs.press('i')
	hs.advance(t, time.Second)

	assert.Empty(t, hs.matches)
	stats := hs.handler.Metrics()
	assert.Equal(t, uint64(2), stats.Dispatches)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, uint64(0), stats.Matches)
}

func TestHandlerExactBeatsPattern(t *testing.T) {
	hs := newHarness(t, DefaultConfig())

	var got []string
	require.NoError(t, hs.handler.ListenAll(
		[]dictionary.Matcher{dictionary.MustPattern("^a+$"), dictionary.Exact("aa")},
		[]dictionary.Callback{
			func(dictionary.Match) error { got = append(got, "pattern"); return nil },
			func(dictionary.Match) error { got = append(got, "exact"); return nil },
		},
	))

	hs.press('a')
	hs.press('a')
	hs.advance(t, time.Second)

	hs.press('a')
	hs.press('a')
	hs.press('a')
	hs.advance(t, time.Second)

	assert.Equal(t, []string{"exact", "pattern"}, got)
}

func TestHandlerRejectedKeystrokeKeepsWordAlive(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("hi"), hs.record))

	hs.press('h')
	hs.advance(t, 400*time.Millisecond)
	hs.press('!')
	hs.advance(t, 400*time.Millisecond)
	assert.Equal(t, "h", hs.handler.Pending())
	hs.press('i')
	hs.advance(t, time.Second)

	require.Len(t, hs.matches, 1)
	assert.Equal(t, "hi", hs.matches[0].Word)
	assert.Len(t, hs.matches[0].Events, 2)

	stats := hs.handler.Metrics()
	assert.Equal(t, uint64(3), stats.EventsTotal)
	assert.Equal(t, uint64(2), stats.AcceptedEvents)
	assert.Equal(t, uint64(1), stats.RejectedEvents)
}

func TestHandlerEmptyWordIsResolved(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact(""), hs.record))

	hs.press('!')
	hs.advance(t, time.Second)

	require.Len(t, hs.matches, 1)
	assert.Equal(t, "", hs.matches[0].Word)
	assert.Empty(t, hs.matches[0].Events)
}

func TestHandlerIgnoresOtherEventTypes(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("hi"), hs.record))

	hs.bus.Publish(key.NewRuneEvent(key.KeyDown, 'h', key.ModNone))
	hs.bus.Publish(key.NewRuneEvent(key.KeyDown, 'i', key.ModNone))
	hs.advance(t, time.Second)

	assert.Empty(t, hs.matches)
	assert.Equal(t, uint64(0), hs.handler.Metrics().EventsTotal)
	assert.Equal(t, 0, hs.clock.Pending())
}

func TestHandlerDeactivateCancelsDispatch(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("hi"), hs.record))

	hs.press('h')
	hs.press('i')
	require.NoError(t, hs.handler.Deactivate())

	assert.False(t, hs.handler.IsActive())
	assert.Equal(t, 0, hs.clock.Pending())
	assert.Equal(t, 0, hs.bus.Len())

	hs.press('h')
	hs.advance(t, time.Second)
	assert.Empty(t, hs.matches)
	assert.Empty(t, hs.handler.Pending())
}

func TestHandlerDeactivateTwice(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Deactivate())
	assert.NoError(t, hs.handler.Deactivate())
}

func TestHandlerReactivate(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("hi"), hs.record))

	hs.press('h')
	require.NoError(t, hs.handler.Deactivate())
	require.NoError(t, hs.handler.Activate(hs.bus))

	hs.press('i')
	hs.advance(t, time.Second)
	assert.Empty(t, hs.matches, "h from the earlier session must not leak")

	hs.press('h')
	hs.press('i')
	hs.advance(t, time.Second)
	assert.Len(t, hs.matches, 1)
}

func TestHandlerActivateGuards(t *testing.T) {
	hs := newHarness(t, DefaultConfig())

	err := hs.handler.Activate(source.NewBus())
	assert.ErrorIs(t, err, ErrAlreadyActive)

	h := NewHandler(nil, DefaultConfig())
	assert.ErrorIs(t, h.Activate(nil), ErrNilSource)
	assert.NotNil(t, h.Dictionary())
}

func TestHandlerActivateClosedSource(t *testing.T) {
	bus := source.NewBus()
	bus.Close()

	h := NewHandler(nil, DefaultConfig())
	err := h.Activate(bus)
	assert.ErrorIs(t, err, source.ErrClosed)
	assert.False(t, h.IsActive())
}

func TestHandlerTarget(t *testing.T) {
	t.Run("defaults to source", func(t *testing.T) {
		hs := newHarness(t, DefaultConfig())
		require.NoError(t, hs.handler.Listen(dictionary.Exact("a"), hs.record))

		hs.press('a')
		hs.advance(t, time.Second)

		require.Len(t, hs.matches, 1)
		assert.Same(t, hs.bus, hs.matches[0].Target)
	})

	t.Run("configured", func(t *testing.T) {
		config := DefaultConfig()
		config.Target = "editor"
		hs := newHarness(t, config)
		require.NoError(t, hs.handler.Listen(dictionary.Exact("a"), hs.record))

		hs.press('a')
		hs.advance(t, time.Second)

		require.Len(t, hs.matches, 1)
		assert.Equal(t, "editor", hs.matches[0].Target)
	})
}

func TestHandlerCallbackError(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	errBoom := errors.New("boom")
	require.NoError(t, hs.handler.Listen(dictionary.Exact("hi"), func(dictionary.Match) error {
		return errBoom
	}))

	hs.press('h')
	hs.press('i')
	err := hs.clock.Advance(time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, "hi", dispatchErr.Word)
	assert.True(t, dispatchErr.Resolved)
	assert.Equal(t, uint64(1), hs.handler.Metrics().Errors)

	// The buffer is reset even though the callback failed.
	assert.Empty(t, hs.handler.Pending())
}

func TestHandlerCallbackMayDeactivate(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("q"), func(dictionary.Match) error {
		return hs.handler.Deactivate()
	}))

	hs.press('q')
	hs.advance(t, time.Second)
	assert.False(t, hs.handler.IsActive())
}

func TestHandlerCallbackMayMutateDictionary(t *testing.T) {
	hs := newHarness(t, DefaultConfig())
	require.NoError(t, hs.handler.Listen(dictionary.Exact("on"), func(dictionary.Match) error {
		return hs.handler.Listen(dictionary.Exact("go"), hs.record)
	}))

	hs.press('g')
	hs.press('o')
	hs.advance(t, time.Second)
	assert.Empty(t, hs.matches)

	hs.press('o')
	hs.press('n')
	hs.advance(t, time.Second)
	hs.press('g')
	hs.press('o')
	hs.advance(t, time.Second)

	require.Len(t, hs.matches, 1)
	assert.Equal(t, "go", hs.matches[0].Word)
}

func TestHandlerAcceptPreset(t *testing.T) {
	config := DefaultConfig()
	config.Accept = AcceptDigits
	hs := newHarness(t, config)
	require.NoError(t, hs.handler.Listen(dictionary.MustPattern(`^\d+$`), hs.record))

	for _, r := range "1a2b3" {
		hs.press(r)
	}
	hs.advance(t, time.Second)

	require.Len(t, hs.matches, 1)
	assert.Equal(t, "123", hs.matches[0].Word)
}

func TestHandlerCustomInterval(t *testing.T) {
	config := DefaultConfig()
	config.DigitInterval = 100 * time.Millisecond
	hs := newHarness(t, config)
	require.NoError(t, hs.handler.Listen(dictionary.Exact("ab"), hs.record))

	hs.press('a')
	hs.advance(t, 150*time.Millisecond)
	hs.press('b')
	hs.advance(t, 150*time.Millisecond)

	assert.Empty(t, hs.matches)
	assert.Equal(t, uint64(2), hs.handler.Metrics().Dispatches)
}

// heldScheduler records scheduled functions without running them.
type heldScheduler struct {
	fns []func() error
}

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

func (s *heldScheduler) AfterFunc(_ time.Duration, fn func() error) timing.Timer {
	s.fns = append(s.fns, fn)
	return heldTimer{}
}

func TestHandlerLateKeystrokeStartsNewWord(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	sched := &heldScheduler{}
	config := DefaultConfig()
	config.Clock = clock
	config.Scheduler = sched

	h := NewHandler(nil, config)
	var got []string
	require.NoError(t, h.Listen(dictionary.MustPattern("."), func(m dictionary.Match) error {
		got = append(got, m.Word)
		return nil
	}))
	require.NoError(t, h.Activate(source.NewBus()))

	h.HandleEvent(key.NewRuneEvent(key.KeyUp, 'h', key.ModNone))
	require.NoError(t, clock.Advance(700*time.Millisecond))
	h.HandleEvent(key.NewRuneEvent(key.KeyUp, 'i', key.ModNone))

	assert.Equal(t, "i", h.Pending())
	assert.Equal(t, uint64(1), h.Metrics().WordBreaks)

	// The first timer was superseded and must not dispatch.
	require.Len(t, sched.fns, 2)
	require.NoError(t, sched.fns[0]())
	assert.Empty(t, got)

	require.NoError(t, sched.fns[1]())
	assert.Equal(t, []string{"i"}, got)
}

func TestHandlerSystemScheduler(t *testing.T) {
	var logs bytes.Buffer
	var mu sync.Mutex
	var words []string

	config := DefaultConfig()
	config.DigitInterval = 20 * time.Millisecond
	config.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	h := NewHandler(nil, config)
	require.NoError(t, h.Listen(dictionary.Exact("ok"), func(m dictionary.Match) error {
		mu.Lock()
		defer mu.Unlock()
		words = append(words, m.Word)
		return nil
	}))

	bus := source.NewBus()
	require.NoError(t, h.Activate(bus))
	defer h.Deactivate()

	bus.Publish(key.NewRuneEvent(key.KeyUp, 'o', key.ModNone))
	bus.Publish(key.NewRuneEvent(key.KeyUp, 'k', key.ModNone))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(words) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"ok"}, words)
	mu.Unlock()
}
