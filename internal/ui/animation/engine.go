// Package animation runs short colour sequences on the display window.
package animation

import (
	"context"
	"image/color"
	"sync"
	"time"
)

// Config contains flash timing values.
type Config struct {
	Flashes     int
	OnDuration  time.Duration
	OffDuration time.Duration
}

// FlashSpec defines the two colours a flash alternates between. Rest is
// the colour left in place when the sequence ends or is cancelled.
type FlashSpec struct {
	Highlight color.Color
	Rest      color.Color
}

// Engine alternates a colour through an update callback.
type Engine struct {
	mu          sync.Mutex
	config      Config
	updateColor func(color.Color)
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New creates a new animation engine.
func New(config Config, updateColor func(color.Color)) *Engine {
	if config.Flashes <= 0 {
		config.Flashes = DefaultConfig().Flashes
	}
	return &Engine{
		config:      config,
		updateColor: updateColor,
	}
}

// Flash starts a flash sequence, replacing any sequence still running.
func (engine *Engine) Flash(ctx context.Context, flash FlashSpec) {
	engine.start(ctx, func(runCtx context.Context) {
		defer engine.updateColor(flash.Rest)
		for i := 0; i < engine.config.Flashes; i++ {
			engine.updateColor(flash.Highlight)
			if !sleepWithContext(runCtx, engine.config.OnDuration) {
				return
			}
			engine.updateColor(flash.Rest)
			if !sleepWithContext(runCtx, engine.config.OffDuration) {
				return
			}
		}
	})
}

// Stop terminates any active sequence and waits for it to restore its
// rest colour.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cancelLocked()
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cancelLocked()

	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.wg.Add(1)
	go func() {
		defer engine.wg.Done()
		run(runCtx)
	}()
}

func (engine *Engine) cancelLocked() {
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
	engine.wg.Wait()
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
