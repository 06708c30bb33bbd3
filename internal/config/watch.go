package config

import (
	"fmt"
	"log/slog"

	"github.com/dshills/wordevents/internal/config/watcher"
)

// Watcher reloads a configuration file whenever it changes.
type Watcher struct {
	path     string
	load     func(path string) (Config, error)
	onReload func(Config)
	onError  func(error)
	fw       *watcher.Watcher
	logger   *slog.Logger
}

// NewWatcher watches path and calls onReload with each successfully
// loaded and validated configuration. Failed reloads go to onError and the
// previous configuration stays in effect.
func NewWatcher(path string, onReload func(Config), onError func(error), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		path:     path,
		load:     Load,
		onReload: onReload,
		onError:  onError,
		logger:   logger,
	}

	fw, err := watcher.New(watcher.WithErrorHandler(w.fail))
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Watch(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	fw.OnChange(w.handle)
	w.fw = fw
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	return w.fw.Start()
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) handle(ev watcher.Event) {
	if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
		w.logger.Warn("config file removed; keeping current configuration", "path", ev.Path)
		return
	}

	cfg, err := w.load(w.path)
	if err != nil {
		w.fail(fmt.Errorf("reloading %s: %w", w.path, err))
		return
	}

	w.logger.Info("config reloaded", "path", w.path, "op", ev.Op.String(), "words", len(cfg.Words))
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

func (w *Watcher) fail(err error) {
	if w.onError != nil {
		w.onError(err)
		return
	}
	w.logger.Error("config watcher", "error", err)
}
