package metronome

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"practicetimer/internal/clock"
	"practicetimer/internal/core/model"
	xlog "practicetimer/internal/log"
)

// Options tunes the lookahead scheduler.
type Options struct {
	// FillInterval is how often the queue of upcoming clicks is topped up.
	FillInterval time.Duration
	// Lookahead is how far past the audio clock clicks are scheduled, in seconds.
	Lookahead float64
	// StartMargin is the minimum distance between now and the first click, in seconds.
	StartMargin float64
	// TempoEpsilon is the beat interval difference, in seconds, below which a
	// tempo change does not restart the grid.
	TempoEpsilon float64
}

// DefaultOptions returns the scheduler timing used by the application.
func DefaultOptions() Options {
	return Options{
		FillInterval: 25 * time.Millisecond,
		Lookahead:    0.12,
		StartMargin:  0.02,
		TempoEpsilon: 0.0005,
	}
}

// Settings is the immutable snapshot the scheduler works from.
type Settings struct {
	Gate        GateInput
	Tempo       int
	BeatsPerBar int
	Volume      int
}

// BeatInterval returns seconds per beat.
func (settings Settings) BeatInterval() float64 {
	tempo := settings.Tempo
	if tempo <= 0 {
		tempo = model.TempoMin
	}
	return 60 / float64(tempo)
}

func (settings Settings) beatsPerBar() int {
	if settings.BeatsPerBar <= 0 {
		return model.DefaultBeatsPerBar
	}
	return settings.BeatsPerBar
}

// Click is one scheduled metronome event on the audio timeline.
type Click struct {
	At     float64
	Beat   int
	Accent bool
	Volume int
}

// Emitter receives scheduled clicks. It is called with the scheduler lock
// held and must not call back into the Scheduler.
type Emitter interface {
	EmitClick(Click)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Click)

// EmitClick calls fn.
func (fn EmitterFunc) EmitClick(click Click) {
	fn(click)
}

// State is the scheduler's private cadence state.
type State struct {
	Active        bool
	BeatIndex     int
	NextClickTime float64
	BeatInterval  float64
}

// ReconfigureOptions controls how Reconfigure treats a running grid.
type ReconfigureOptions struct {
	// Force rebuilds the beat grid even if nothing relevant changed.
	Force bool
	// StartAt requests the first click at this audio time. Zero means as soon
	// as possible. Times already in the past are clamped to now plus margin.
	StartAt float64
}

// Scheduler fills a lookahead window of clicks on the audio clock.
type Scheduler struct {
	mu              sync.Mutex
	options         Options
	clock           clock.AudioClock
	emitter         Emitter
	settings        Settings
	state           State
	lastInterval    float64
	lastBeatsPerBar int
	stopCh          chan struct{}
	doneCh          chan struct{}
	loops           sync.WaitGroup
	logger          zerolog.Logger
}

// New creates an idle scheduler.
func New(audioClock clock.AudioClock, emitter Emitter, options Options) *Scheduler {
	defaults := DefaultOptions()
	if options.FillInterval <= 0 {
		options.FillInterval = defaults.FillInterval
	}
	if options.Lookahead <= 0 {
		options.Lookahead = defaults.Lookahead
	}
	if options.StartMargin <= 0 {
		options.StartMargin = defaults.StartMargin
	}
	if options.TempoEpsilon <= 0 {
		options.TempoEpsilon = defaults.TempoEpsilon
	}
	return &Scheduler{
		options: options,
		clock:   audioClock,
		emitter: emitter,
		logger:  xlog.WithComponent("metronome"),
	}
}

// State returns a copy of the cadence state.
func (scheduler *Scheduler) State() State {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.state
}

// Reconfigure applies a new settings snapshot. A closed gate stops the
// scheduler. Otherwise the grid is rebuilt from now when forced, when the
// scheduler was idle, or when the beat interval or bar length changed; an
// in-flight grid is never stretched to a new tempo.
func (scheduler *Scheduler) Reconfigure(settings Settings, options ReconfigureOptions) {
	scheduler.mu.Lock()
	scheduler.settings = settings

	if !Gate(settings.Gate) {
		done := scheduler.stopLocked()
		scheduler.mu.Unlock()
		wait(done)
		return
	}

	interval := settings.BeatInterval()
	tempoChanged := scheduler.lastInterval > 0 &&
		math.Abs(scheduler.lastInterval-interval) > scheduler.options.TempoEpsilon
	barChanged := scheduler.state.Active && settings.beatsPerBar() != scheduler.lastBeatsPerBar

	var done <-chan struct{}
	if options.Force || !scheduler.state.Active || tempoChanged || barChanged {
		done = scheduler.stopLocked()
		scheduler.startLocked(options.StartAt)
	}
	scheduler.mu.Unlock()
	wait(done)
}

// Stop cancels the fill loop and clears the cadence state. It is safe to call
// when already stopped.
func (scheduler *Scheduler) Stop() {
	scheduler.mu.Lock()
	done := scheduler.stopLocked()
	scheduler.mu.Unlock()
	wait(done)
}

// Fill runs one fill cycle immediately.
func (scheduler *Scheduler) Fill() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.state.Active {
		scheduler.fillLocked()
	}
}

// Close stops the scheduler and waits for every fill loop to exit.
func (scheduler *Scheduler) Close() {
	scheduler.Stop()
	scheduler.loops.Wait()
}

func (scheduler *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer scheduler.loops.Done()
	defer close(done)

	ticker := time.NewTicker(scheduler.options.FillInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			scheduler.mu.Lock()
			if scheduler.stopCh == stop {
				scheduler.fillLocked()
			}
			scheduler.mu.Unlock()
		}
	}
}

func (scheduler *Scheduler) startLocked(startAt float64) {
	interval := scheduler.settings.BeatInterval()
	next := scheduler.clock.Now() + scheduler.options.StartMargin
	if startAt > next {
		next = startAt
	}

	scheduler.state = State{
		Active:        true,
		BeatIndex:     0,
		NextClickTime: next,
		BeatInterval:  interval,
	}
	scheduler.lastInterval = interval
	scheduler.lastBeatsPerBar = scheduler.settings.beatsPerBar()

	stop := make(chan struct{})
	done := make(chan struct{})
	scheduler.stopCh = stop
	scheduler.doneCh = done
	scheduler.loops.Add(1)
	go scheduler.run(stop, done)

	scheduler.logger.Debug().
		Str("event", "metronome.start").
		Int("tempo", scheduler.settings.Tempo).
		Int("beats_per_bar", scheduler.lastBeatsPerBar).
		Float64("first_click", next).
		Msg("metronome grid started")

	scheduler.fillLocked()
}

// stopLocked clears the state and signals the fill loop. The returned channel
// closes once the loop has exited; do not wait on it with the lock held.
func (scheduler *Scheduler) stopLocked() <-chan struct{} {
	wasActive := scheduler.state.Active
	scheduler.state = State{}
	if scheduler.stopCh == nil {
		return nil
	}
	close(scheduler.stopCh)
	done := scheduler.doneCh
	scheduler.stopCh = nil
	scheduler.doneCh = nil
	if wasActive {
		scheduler.logger.Debug().Str("event", "metronome.stop").Msg("metronome stopped")
	}
	return done
}

func (scheduler *Scheduler) fillLocked() {
	if !Gate(scheduler.settings.Gate) {
		scheduler.stopLocked()
		return
	}

	now := scheduler.clock.Now()
	interval := scheduler.state.BeatInterval
	if interval <= 0 {
		return
	}

	// The loop was starved past at least one click; drop the stale grid
	// points but keep counting beats so accents stay on the bar.
	if scheduler.state.NextClickTime < now {
		missed := int(math.Floor((now-scheduler.state.NextClickTime)/interval)) + 1
		scheduler.state.BeatIndex += missed
		scheduler.state.NextClickTime += float64(missed) * interval
	}

	beatsPerBar := scheduler.settings.beatsPerBar()
	horizon := now + scheduler.options.Lookahead
	for scheduler.state.NextClickTime < horizon {
		scheduler.emitter.EmitClick(Click{
			At:     scheduler.state.NextClickTime,
			Beat:   scheduler.state.BeatIndex,
			Accent: scheduler.state.BeatIndex%beatsPerBar == 0,
			Volume: scheduler.settings.Volume,
		})
		scheduler.state.BeatIndex++
		scheduler.state.NextClickTime += interval
	}
}

func wait(done <-chan struct{}) {
	if done != nil {
		<-done
	}
}
