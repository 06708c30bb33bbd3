// Package app wires configuration, logging, the word dictionary, the word
// engine and the Lua script runtime into one application, and runs it
// against a terminal or a scripted keystroke replay.
package app

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/wordevents/internal/config"
	"github.com/dshills/wordevents/internal/dictionary"
	"github.com/dshills/wordevents/internal/input"
	"github.com/dshills/wordevents/internal/logging"
	"github.com/dshills/wordevents/internal/script"
)

// Application is the central coordinator for all wordevents components.
type Application struct {
	mu sync.RWMutex

	opts      Options
	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer

	dict    *dictionary.Dictionary
	handler *input.Handler
	script  *script.Runtime

	// bound holds the matchers registered from cfg.Words.
	bound []dictionary.Matcher

	display Display

	// quit ends the current Run or Replay. Each session gets a fresh one.
	quit *quitSignal

	running atomic.Bool
	closed  atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means
	// defaults plus environment.
	ConfigPath string

	// LogLevel overrides the configured logging level when set.
	LogLevel string

	// Debug forces debug logging.
	Debug bool

	// Accept overrides the configured acceptance preset when set.
	Accept string

	// Output receives action output outside Run. Default: os.Stdout.
	Output io.Writer

	// Watch reloads the [[words]] bindings when the configuration file
	// changes while Run is active.
	Watch bool
}

// New loads the configuration and builds every component. Options override
// the loaded configuration.
func New(opts Options) (*Application, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig builds the application from an already loaded configuration.
// opts.ConfigPath is ignored in favour of cfg.Path.
func NewWithConfig(cfg config.Config, opts Options) (*Application, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Accept != "" {
		cfg.Engine.Accept = opts.Accept
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}
	opts.ConfigPath = cfg.Path

	app := &Application{
		opts:    opts,
		cfg:     cfg,
		display: NewWriterDisplay(opts.Output),
		quit:    newQuitSignal(),
	}

	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes the components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Logging
	logCfg, err := app.cfg.LoggingConfig()
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	app.logger, app.logCloser, err = logging.New(logCfg)
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}

	// 2. Word engine
	inputCfg, err := app.cfg.InputConfig(app.logger.With("subsystem", "input"))
	if err != nil {
		return &InitError{Component: "input", Err: err}
	}
	app.dict = dictionary.New()
	app.handler = input.NewHandler(app.dict, inputCfg)

	// 3. Configured words
	if err := app.bindWords(app.cfg.Words); err != nil {
		return &InitError{Component: "words", Err: err}
	}

	// 4. Script, whose words override configured ones
	if path := app.cfg.Script.Path; path != "" {
		rt, err := script.New(app.handler,
			script.WithOutput(lineWriter{app: app}),
			script.WithLogger(app.logger.With("subsystem", "script")),
		)
		if err != nil {
			return &InitError{Component: "script", Err: err}
		}
		app.script = rt
		if err := rt.LoadFile(path); err != nil {
			return &InitError{Component: "script", Err: err}
		}
	}

	app.logger.Debug("application ready",
		"config", app.cfg.Path,
		"words", app.dict.Len(),
		"digit_interval", app.cfg.Engine.DigitInterval,
		"event_type", app.cfg.Engine.EventType,
		"accept", app.cfg.Engine.Accept,
	)
	return nil
}

// Resolve looks word up in the dictionary without invoking its callback.
func (app *Application) Resolve(word string) (dictionary.Entry, bool, error) {
	return app.dict.Resolve(word)
}

// Quit asks the active Run or Replay to stop. It is safe to call more than
// once and from word callbacks. A later Run or Replay starts afresh.
func (app *Application) Quit() {
	app.mu.RLock()
	q := app.quit
	app.mu.RUnlock()
	q.fire()
}

// beginSession marks the application running and installs the quit signal
// for the new Run or Replay. The caller must call endSession.
func (app *Application) beginSession() (*quitSignal, error) {
	if app.closed.Load() {
		return nil, ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	q := newQuitSignal()
	app.mu.Lock()
	app.quit = q
	app.mu.Unlock()

	// Shutdown may have fired the previous signal in between.
	if app.closed.Load() {
		app.running.Store(false)
		return nil, ErrClosed
	}
	return q, nil
}

func (app *Application) endSession() {
	app.running.Store(false)
}

// quitSignal is closed once to end one session.
type quitSignal struct {
	once sync.Once
	ch   chan struct{}
}

func newQuitSignal() *quitSignal {
	return &quitSignal{ch: make(chan struct{})}
}

func (q *quitSignal) fire() {
	q.once.Do(func() { close(q.ch) })
}

func (q *quitSignal) done() <-chan struct{} {
	return q.ch
}

func (q *quitSignal) fired() bool {
	select {
	case <-q.ch:
		return true
	default:
		return false
	}
}

// Shutdown releases every component. It is idempotent.
func (app *Application) Shutdown() {
	if !app.closed.CompareAndSwap(false, true) {
		return
	}
	app.Quit()

	if app.script != nil {
		if err := app.script.Close(); err != nil {
			app.logger.Warn("closing script runtime", "error", err)
		}
	}
	if app.handler != nil {
		_ = app.handler.Deactivate()
	}
	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}
}

// IsRunning returns true while Run or Replay is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration the application was built from, with
// option overrides applied.
func (app *Application) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger
}

// Dictionary returns the word dictionary.
func (app *Application) Dictionary() *dictionary.Dictionary {
	return app.dict
}

// Handler returns the word engine.
func (app *Application) Handler() *input.Handler {
	return app.handler
}

// Script returns the Lua runtime, or nil when no script is configured.
func (app *Application) Script() *script.Runtime {
	return app.script
}

// show writes a line to the current display.
func (app *Application) show(kind LineKind, line string) {
	app.currentDisplay().Show(kind, line)
}

func (app *Application) currentDisplay() Display {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.display
}

// setDisplay replaces the display and returns the previous one.
func (app *Application) setDisplay(d Display) Display {
	app.mu.Lock()
	defer app.mu.Unlock()
	prev := app.display
	app.display = d
	return prev
}

// lineWriter sends script output to the current display, one line per
// Show.
type lineWriter struct {
	app *Application
}

func (w lineWriter) Write(p []byte) (int, error) {
	text := string(p)
	if n := len(text); n > 0 && text[n-1] == '\n' {
		text = text[:n-1]
	}
	w.app.show(LineScript, text)
	return len(p), nil
}
