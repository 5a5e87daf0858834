package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"practicetimer/internal/core/model"
	xlog "practicetimer/internal/log"
)

// DefaultSaveDelay coalesces bursts of edits into one write.
const DefaultSaveDelay = 120 * time.Millisecond

// Saver writes the latest configuration after a quiet period.
type Saver struct {
	mu      sync.Mutex
	store   *Store
	delay   time.Duration
	timer   *time.Timer
	pending *model.TimerConfig
	closed  bool
	logger  zerolog.Logger
}

// NewSaver creates a debounced writer for store.
func NewSaver(store *Store, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Saver{
		store:  store,
		delay:  delay,
		logger: xlog.WithComponent("storage"),
	}
}

// Save schedules config to be written once no newer Save arrives within the
// delay. Saves after Close are dropped.
func (saver *Saver) Save(config model.TimerConfig) {
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if saver.closed {
		return
	}
	saver.pending = &config
	if saver.timer != nil {
		saver.timer.Stop()
	}
	saver.timer = time.AfterFunc(saver.delay, func() {
		if err := saver.Flush(); err != nil {
			saver.logger.Error().
				Err(err).
				Str("event", "settings.save_failed").
				Str("path", saver.store.Path()).
				Msg("failed to save settings")
		}
	})
}

// Flush writes any pending configuration now.
func (saver *Saver) Flush() error {
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if saver.timer != nil {
		saver.timer.Stop()
		saver.timer = nil
	}
	if saver.pending == nil {
		return nil
	}
	config := *saver.pending
	saver.pending = nil

	if err := saver.store.Save(config); err != nil {
		return err
	}
	saver.logger.Debug().
		Str("event", "settings.saved").
		Str("path", saver.store.Path()).
		Msg("settings saved")
	return nil
}

// Close flushes pending changes and rejects further saves.
func (saver *Saver) Close() error {
	saver.mu.Lock()
	saver.closed = true
	saver.mu.Unlock()
	return saver.Flush()
}
