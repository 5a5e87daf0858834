package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"practicetimer/internal/core/model"
	xlog "practicetimer/internal/log"
)

// DefaultReloadDelay debounces editors that write a file in several steps.
const DefaultReloadDelay = 500 * time.Millisecond

// Watcher reloads the settings file when it changes on disk.
type Watcher struct {
	store    *Store
	delay    time.Duration
	onChange func(model.TimerConfig)
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger

	mu        sync.Mutex
	timer     *time.Timer
	stopped   bool
	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching the directory of store's file. onChange receives every
// successfully parsed, normalized configuration; unreadable files are logged
// and skipped.
func Watch(store *Store, delay time.Duration, onChange func(model.TimerConfig)) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultReloadDelay
	}
	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// The directory is watched because atomic saves replace the file.
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	watcher := &Watcher{
		store:    store,
		delay:    delay,
		onChange: onChange,
		watcher:  fsWatcher,
		logger:   xlog.WithComponent("storage"),
		done:     make(chan struct{}),
	}
	go watcher.loop()

	watcher.logger.Info().
		Str("event", "settings.watcher_started").
		Str("path", store.Path()).
		Msg("watching settings file for changes")
	return watcher, nil
}

// Close stops watching and cancels any pending reload.
func (watcher *Watcher) Close() error {
	var err error
	watcher.closeOnce.Do(func() {
		watcher.mu.Lock()
		watcher.stopped = true
		if watcher.timer != nil {
			watcher.timer.Stop()
		}
		watcher.mu.Unlock()

		err = watcher.watcher.Close()
		<-watcher.done
	})
	return err
}

func (watcher *Watcher) loop() {
	defer close(watcher.done)
	target := filepath.Clean(watcher.store.Path())

	for {
		select {
		case event, ok := <-watcher.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				watcher.logger.Debug().
					Str("event", "settings.file_changed").
					Str("op", event.Op.String()).
					Msg("settings file changed")
				watcher.schedule()
			}

		case err, ok := <-watcher.watcher.Errors:
			if !ok {
				return
			}
			watcher.logger.Error().
				Err(err).
				Str("event", "settings.watcher_error").
				Msg("settings watcher error")
		}
	}
}

func (watcher *Watcher) schedule() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.stopped {
		return
	}
	if watcher.timer != nil {
		watcher.timer.Stop()
	}
	watcher.timer = time.AfterFunc(watcher.delay, watcher.reload)
}

func (watcher *Watcher) reload() {
	watcher.mu.Lock()
	stopped := watcher.stopped
	watcher.mu.Unlock()
	if stopped {
		return
	}

	config, err := watcher.store.Load()
	if err != nil {
		watcher.logger.Warn().
			Err(err).
			Str("event", "settings.reload_failed").
			Msg("keeping current settings")
		return
	}
	watcher.logger.Info().Str("event", "settings.reloaded").Msg("settings reloaded from disk")
	if watcher.onChange != nil {
		watcher.onChange(config)
	}
}
