// Package practice wires the interval timer, the metronome and the audio
// output together.
package practice

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"practicetimer/internal/audio"
	"practicetimer/internal/clock"
	"practicetimer/internal/core/metronome"
	"practicetimer/internal/core/model"
	"practicetimer/internal/core/phase"
	"practicetimer/internal/core/timekeeper"
	xlog "practicetimer/internal/log"
)

// DefaultCueDelay is how far ahead of the audio clock a phase cue is placed.
const DefaultCueDelay = 0.15

// Persister receives every accepted configuration change.
type Persister interface {
	Save(model.TimerConfig)
}

// Options contains runtime options for Controller.
type Options struct {
	Clock        clock.Clock
	TickInterval time.Duration
	Metronome    metronome.Options
	CueDelay     float64
	Persister    Persister
}

// Controller owns one practice session: the timer, its phase cues and the
// metronome that follows it.
type Controller struct {
	mu        sync.RWMutex
	config    model.TimerConfig
	output    audio.Output
	keeper    *timekeeper.TimeKeeper
	scheduler *metronome.Scheduler
	cueDelay  float64
	persister Persister
	logger    zerolog.Logger

	// tuning orders snapshot reads with the Reconfigure calls built from them.
	tuning sync.Mutex
}

// New creates a stopped controller. config is normalized first.
func New(config model.TimerConfig, output audio.Output, options Options) *Controller {
	if output == nil {
		output = audio.NewSilent()
	}
	if options.CueDelay <= 0 {
		options.CueDelay = DefaultCueDelay
	}
	config = config.Normalize()

	controller := &Controller{
		config:    config,
		output:    output,
		cueDelay:  options.CueDelay,
		persister: options.Persister,
		logger:    xlog.WithComponent("practice"),
	}
	controller.scheduler = metronome.New(output, metronome.EmitterFunc(func(click metronome.Click) {
		output.EmitTone(ClickTone(click))
	}), options.Metronome)
	controller.keeper = timekeeper.New(config, timekeeper.Config{
		TickInterval: options.TickInterval,
		Clock:        options.Clock,
		OnTransition: controller.onTransition,
	})
	return controller
}

// Config returns the active configuration.
func (controller *Controller) Config() model.TimerConfig {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.config
}

// Snapshot returns the current timer state.
func (controller *Controller) Snapshot() timekeeper.Snapshot {
	return controller.keeper.Snapshot()
}

// Metronome returns the metronome cadence state.
func (controller *Controller) Metronome() metronome.State {
	return controller.scheduler.State()
}

// Subscribe registers a timer event observer.
func (controller *Controller) Subscribe(buffer int) <-chan timekeeper.Event {
	return controller.keeper.Subscribe(buffer)
}

// Start starts or resumes the timer. A fresh start plays the cue of the first
// phase and lines the metronome up with it; a resume does neither.
func (controller *Controller) Start() (timekeeper.StartKind, error) {
	kind, err := controller.keeper.Start()
	if err != nil {
		controller.silenceMetronome()
		return kind, err
	}

	switch kind {
	case timekeeper.StartFresh:
		startAt := controller.playCue(controller.keeper.Snapshot().Phase)
		controller.reconfigureMetronome(metronome.ReconfigureOptions{Force: true, StartAt: startAt})
	case timekeeper.StartResumed:
		controller.reconfigureMetronome(metronome.ReconfigureOptions{Force: true})
	}
	return kind, nil
}

// Pause freezes the timer and silences the metronome.
func (controller *Controller) Pause() bool {
	paused := controller.keeper.Pause()
	controller.silenceMetronome()
	return paused
}

// Stop resets the timer and silences the metronome.
func (controller *Controller) Stop() bool {
	stopped := controller.keeper.Stop()
	controller.silenceMetronome()
	return stopped
}

// Toggle pauses a running timer and starts or resumes any other.
func (controller *Controller) Toggle() error {
	if controller.keeper.Snapshot().State == timekeeper.StateRunning {
		controller.Pause()
		return nil
	}
	_, err := controller.Start()
	return err
}

// Sync evaluates the timer immediately.
func (controller *Controller) Sync() {
	controller.keeper.Sync()
}

// UpdateConfig applies a configuration edit and hands it to the persister.
// It reports whether anything changed.
func (controller *Controller) UpdateConfig(config model.TimerConfig) bool {
	return controller.apply(config, true)
}

// Reload applies a configuration read back from storage without persisting it
// again.
func (controller *Controller) Reload(config model.TimerConfig) bool {
	return controller.apply(config, false)
}

// Close stops the timer and the metronome and waits for their loops.
func (controller *Controller) Close() {
	controller.keeper.Close()
	controller.scheduler.Close()
}

func (controller *Controller) apply(config model.TimerConfig, persist bool) bool {
	config = config.Normalize()

	controller.mu.Lock()
	previous := controller.config
	if previous == config {
		controller.mu.Unlock()
		return false
	}
	controller.config = config
	controller.mu.Unlock()

	controller.keeper.UpdateConfig(config)
	controller.reconfigureMetronome(metronome.ReconfigureOptions{
		Force: previous.Metronome.Enabled != config.Metronome.Enabled ||
			previous.Metronome.AutoMuteRest != config.Metronome.AutoMuteRest ||
			previous.Metronome.Tempo != config.Metronome.Tempo ||
			previous.Metronome.BeatsPerBar() != config.Metronome.BeatsPerBar(),
	})

	controller.logger.Debug().
		Str("event", "settings.apply").
		Bool("persist", persist).
		Int("practice", config.Practice.TotalSeconds()).
		Int("rest", config.Rest.TotalSeconds()).
		Bool("metronome", config.Metronome.Enabled).
		Int("tempo", config.Metronome.Tempo).
		Msg("configuration applied")

	if persist && controller.persister != nil {
		controller.persister.Save(config)
	}
	return true
}

// onTransition runs on the timer loop after each phase advance.
func (controller *Controller) onTransition(transition timekeeper.Transition) {
	if transition.Stopped {
		controller.silenceMetronome()
		return
	}

	options := metronome.ReconfigureOptions{Force: true}
	if transition.Cue {
		options.StartAt = controller.playCue(transition.To)
	}
	controller.reconfigureMetronome(options)
}

// playCue schedules the entry cue for p and returns the audio time it starts at.
func (controller *Controller) playCue(p phase.Phase) float64 {
	startAt := controller.output.Now() + controller.cueDelay
	for _, tone := range CueTones(p, startAt, controller.Config().TimerVolume) {
		controller.output.EmitTone(tone)
	}
	controller.logger.Debug().
		Str("event", "audio.cue").
		Str("phase", string(p)).
		Float64("at", startAt).
		Msg("phase cue scheduled")
	return startAt
}

// silenceMetronome stops the grid under tuning, so a reconfigure that read a
// running snapshot before the timer stopped cannot restart it afterwards.
func (controller *Controller) silenceMetronome() {
	controller.tuning.Lock()
	defer controller.tuning.Unlock()
	controller.scheduler.Stop()
}

func (controller *Controller) reconfigureMetronome(options metronome.ReconfigureOptions) {
	controller.tuning.Lock()
	defer controller.tuning.Unlock()

	config := controller.Config()
	snapshot := controller.keeper.Snapshot()
	controller.scheduler.Reconfigure(metronome.Settings{
		Gate: metronome.GateInput{
			Enabled:      config.Metronome.Enabled,
			AutoMuteRest: config.Metronome.AutoMuteRest,
			Running:      snapshot.State == timekeeper.StateRunning,
			Phase:        snapshot.Phase,
		},
		Tempo:       config.Metronome.Tempo,
		BeatsPerBar: config.Metronome.BeatsPerBar(),
		Volume:      config.Metronome.Volume,
	}, options)
}
