package source

import (
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/wordevents/internal/input/key"
)

// Terminal is a Source reading keystrokes from a tcell screen.
//
// Terminals report a keystroke once, with no separate press and release.
// Each tcell key event is therefore published as a keydown, a keypress (for
// character keys only) and a keyup, so a subscriber to any type sees every
// keystroke exactly once.
type Terminal struct {
	*Bus

	screen tcell.Screen

	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}

	// onEvent receives every non-key tcell event (resize, focus, paste).
	onEvent func(tcell.Event)
}

// NewTerminal creates a terminal source on the process's controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen creates a terminal source on an existing screen,
// such as a tcell simulation screen. The screen must not be initialized yet.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		Bus:    NewBus(),
		screen: screen,
		done:   make(chan struct{}),
	}
}

// Screen returns the underlying tcell screen for drawing.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// OnEvent registers a callback for non-key terminal events.
// It must be called before Start.
func (t *Terminal) OnEvent(fn func(tcell.Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEvent = fn
}

// Start initializes the screen and begins polling for events.
func (t *Terminal) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.started {
		return nil
	}
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.started = true

	go t.pollLoop(t.onEvent)
	return nil
}

// Close restores the terminal, stops polling and drops all subscriptions.
func (t *Terminal) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	started := t.started
	t.mu.Unlock()

	if started {
		t.screen.Fini()
		<-t.done
	}
	t.Bus.Close()
}

func (t *Terminal) pollLoop(onEvent func(tcell.Event)) {
	defer close(t.done)

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return
		}

		switch e := ev.(type) {
		case *tcell.EventKey:
			t.PublishKeystroke(convertKeyEvent(e))
		default:
			if onEvent != nil {
				onEvent(ev)
			}
		}
	}
}

// convertKeyEvent converts a tcell key event to a key.Event without a type.
// tcell reports shifted characters without ModShift; upper-case letters get
// it back so terminal and replayed keystrokes look alike.
func convertKeyEvent(ev *tcell.EventKey) key.Event {
	e := key.Event{
		Key:       convertKey(ev.Key()),
		Modifiers: convertMod(ev.Modifiers()),
		Timestamp: ev.When(),
	}
	if e.Key == key.KeyRune {
		e.Rune = ev.Rune()
		switch {
		case e.Rune == ' ':
			e.Key = key.KeySpace
			e.Rune = 0
		case unicode.IsUpper(e.Rune):
			e.Modifiers = e.Modifiers.With(key.ModShift)
		}
		return e
	}

	// Control characters arrive as dedicated tcell keys.
	k := ev.Key()
	if e.Key == key.KeyNone && k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		e.Key = key.KeyRune
		e.Rune = 'a' + rune(k-tcell.KeyCtrlA)
		e.Modifiers = e.Modifiers.With(key.ModCtrl)
	}
	return e
}

// convertKey converts a tcell key to our Key type.
func convertKey(k tcell.Key) key.Key {
	switch k {
	case tcell.KeyRune:
		return key.KeyRune
	case tcell.KeyEscape:
		return key.KeyEscape
	case tcell.KeyEnter:
		return key.KeyEnter
	case tcell.KeyTab:
		return key.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.KeyBackspace
	case tcell.KeyDelete:
		return key.KeyDelete
	case tcell.KeyInsert:
		return key.KeyInsert
	case tcell.KeyHome:
		return key.KeyHome
	case tcell.KeyEnd:
		return key.KeyEnd
	case tcell.KeyPgUp:
		return key.KeyPageUp
	case tcell.KeyPgDn:
		return key.KeyPageDown
	case tcell.KeyUp:
		return key.KeyArrowUp
	case tcell.KeyDown:
		return key.KeyArrowDown
	case tcell.KeyLeft:
		return key.KeyArrowLeft
	case tcell.KeyRight:
		return key.KeyArrowRight
	}
	if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
		return key.KeyF1 + key.Key(k-tcell.KeyF1)
	}
	return key.KeyNone
}

// convertMod converts tcell modifiers to our Modifier type.
func convertMod(m tcell.ModMask) key.Modifier {
	var mod key.Modifier
	if m&tcell.ModShift != 0 {
		mod = mod.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mod = mod.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mod = mod.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mod = mod.With(key.ModMeta)
	}
	return mod
}
