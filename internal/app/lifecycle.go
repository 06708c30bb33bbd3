package app

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/wordevents/internal/config"
	"github.com/dshills/wordevents/internal/input/key"
	"github.com/dshills/wordevents/internal/input/source"
)

// Run activates the word engine on term and blocks until ctx is done, Quit
// is called, or Escape or Ctrl+C is pressed. It returns ErrQuit when the
// session ended through Quit or a quit key, nil when ctx ended it.
func (app *Application) Run(ctx context.Context, term *source.Terminal) error {
	quit, err := app.beginSession()
	if err != nil {
		return err
	}
	defer app.endSession()

	screen := NewScreenDisplay(term.Screen(), "wordevents  (Esc or Ctrl+C to quit)", app.status)
	term.OnEvent(func(ev tcell.Event) {
		if _, ok := ev.(*tcell.EventResize); ok {
			term.Screen().Sync()
			screen.Redraw()
		}
	})
	if err := term.Start(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer term.Close()

	prev := app.setDisplay(screen)
	defer app.setDisplay(prev)

	if err := app.handler.Activate(term); err != nil {
		return fmt.Errorf("activating word engine: %w", err)
	}
	defer func() { _ = app.handler.Deactivate() }()

	// Subscribed after the handler so the status row sees the updated word.
	if _, err := term.Subscribe(app.handler.Config().EventType, func(key.Event) { screen.Redraw() }); err != nil {
		return fmt.Errorf("subscribing status updates: %w", err)
	}
	if _, err := term.Subscribe(key.KeyDown, app.handleQuitKey); err != nil {
		return fmt.Errorf("subscribing quit keys: %w", err)
	}

	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.opts.ConfigPath, app.reload, app.reloadFailed, app.logger.With("subsystem", "config"))
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
		if err := w.Start(); err != nil {
			return fmt.Errorf("starting config watcher: %w", err)
		}
	}

	app.show(LineInfo, fmt.Sprintf("listening for %s events, %d words bound", app.handler.Config().EventType, app.dict.Len()))
	app.logger.Info("session started", "words", app.dict.Len())

	select {
	case <-ctx.Done():
		app.logger.Info("session ended", "reason", ctx.Err())
		return nil
	case <-quit.done():
		app.logger.Info("session ended", "reason", "quit")
		return ErrQuit
	}
}

// handleQuitKey ends the session on Escape or Ctrl+C.
func (app *Application) handleQuitKey(e key.Event) {
	if e.Key == key.KeyEscape || (e.Modifiers.Has(key.ModCtrl) && e.Rune == 'c') {
		app.Quit()
	}
}

// status fills the screen's bottom row.
func (app *Application) status() string {
	m := app.handler.Metrics()
	return fmt.Sprintf("word: %-20s  words: %d  matched: %d  missed: %d",
		app.handler.Pending(), m.Dispatches, m.Matches, m.Misses)
}

// reload re-binds the configured words from a reloaded configuration.
// Engine and logging settings take effect on the next start.
func (app *Application) reload(cfg config.Config) {
	if err := app.bindWords(cfg.Words); err != nil {
		app.reloadFailed(err)
		return
	}

	app.mu.Lock()
	if cfg.Engine != app.cfg.Engine {
		app.logger.Warn("engine settings changed; restart to apply")
	}
	app.cfg.Words = cfg.Words
	app.mu.Unlock()

	app.show(LineInfo, fmt.Sprintf("configuration reloaded, %d words bound", len(cfg.Words)))
}

func (app *Application) reloadFailed(err error) {
	app.logger.Error("configuration reload failed", "error", err)
	app.show(LineError, "reload failed: "+err.Error())
}
