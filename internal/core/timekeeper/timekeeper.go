package timekeeper

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"practicetimer/internal/clock"
	"practicetimer/internal/core/model"
	"practicetimer/internal/core/phase"
	xlog "practicetimer/internal/log"
)

// DefaultTickInterval is the evaluation period of the running timer.
const DefaultTickInterval = 250 * time.Millisecond

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Clock        clock.Clock
	// OnTransition is called for every phase advance, outside the lock and in
	// the order the advances happened. It must not call Pause or Sync.
	OnTransition func(Transition)
}

// TimeKeeper polls the wall clock against the armed phase end and drives the
// Session forward. The evaluation loop only runs while the session runs.
type TimeKeeper struct {
	mu       sync.Mutex
	options  Config
	config   model.TimerConfig
	resolver phase.Resolver
	session  *Session
	events   []chan Event
	stopCh   chan struct{}
	doneCh   chan struct{}
	loops    sync.WaitGroup
	closed   bool
	logger   zerolog.Logger

	// evaluating serializes evaluation passes including their hooks, so an
	// on-demand Sync returns only after a concurrent loop pass has finished.
	evaluating sync.Mutex
}

// New creates a TimeKeeper with the provided configuration.
func New(config model.TimerConfig, options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.Clock == nil {
		options.Clock = clock.System{}
	}

	resolver := phase.NewResolver(config)
	return &TimeKeeper{
		options:  options,
		config:   config,
		resolver: resolver,
		session:  NewSession(resolver),
		logger:   xlog.WithComponent("timekeeper"),
	}
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	if keeper.closed {
		close(ch)
	} else {
		keeper.events = append(keeper.events, ch)
	}
	keeper.mu.Unlock()
	return ch
}

// Snapshot returns the current session state.
func (keeper *TimeKeeper) Snapshot() Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.snapshotLocked()
}

// Start starts a fresh session or resumes a paused one and launches the
// evaluation loop. ErrCannotStart is returned when both durations are zero.
func (keeper *TimeKeeper) Start() (StartKind, error) {
	keeper.mu.Lock()
	now := keeper.options.Clock.Now()
	kind, err := keeper.session.Start(now, keeper.resolver)
	if err != nil {
		done := keeper.stopLoopLocked()
		keeper.emitLocked(Event{
			Type:     EventCannotStart,
			Snapshot: keeper.snapshotLocked(),
			Message:  "Set a duration",
			At:       now,
		})
		keeper.mu.Unlock()
		wait(done)
		keeper.logger.Info().Str("event", "timer.cannot_start").Msg("both phase durations are zero")
		return kind, err
	}
	if kind == StartAlreadyRunning {
		keeper.mu.Unlock()
		return kind, nil
	}

	keeper.startLoopLocked()
	snapshot := keeper.snapshotLocked()
	keeper.emitLocked(Event{
		Type:     EventStateChange,
		Snapshot: snapshot,
		Cue:      kind == StartFresh,
		At:       now,
	})
	keeper.mu.Unlock()

	keeper.logger.Info().
		Str("event", "timer.start").
		Bool("resumed", kind == StartResumed).
		Str("phase", string(snapshot.Phase)).
		Int("remaining", snapshot.Remaining).
		Msg("timer running")
	return kind, nil
}

// Pause processes any pending expiry, freezes the remaining time and stops
// the evaluation loop.
func (keeper *TimeKeeper) Pause() bool {
	keeper.evaluate(nil)

	keeper.mu.Lock()
	now := keeper.options.Clock.Now()
	if !keeper.session.Pause(now) {
		keeper.mu.Unlock()
		return false
	}
	done := keeper.stopLoopLocked()
	snapshot := keeper.snapshotLocked()
	keeper.emitLocked(Event{
		Type:     EventStateChange,
		Snapshot: snapshot,
		At:       now,
	})
	keeper.mu.Unlock()
	wait(done)

	keeper.logger.Info().
		Str("event", "timer.pause").
		Int("remaining", snapshot.Remaining).
		Msg("timer paused")
	return true
}

// Stop resets the session and stops the evaluation loop. It is safe to call
// when already stopped.
func (keeper *TimeKeeper) Stop() bool {
	keeper.mu.Lock()
	wasActive := keeper.session.State() != StateStopped
	keeper.session.Reset(keeper.resolver)
	done := keeper.stopLoopLocked()
	keeper.emitLocked(Event{
		Type:     EventStateChange,
		Snapshot: keeper.snapshotLocked(),
		At:       keeper.options.Clock.Now(),
	})
	keeper.mu.Unlock()
	wait(done)

	if wasActive {
		keeper.logger.Info().Str("event", "timer.stop").Msg("timer stopped")
	}
	return wasActive
}

// Sync evaluates immediately. Hosts call it when they become visible or
// focused again to flush transitions missed while callbacks were stalled.
func (keeper *TimeKeeper) Sync() {
	keeper.evaluate(nil)
}

// UpdateConfig replaces the configuration. A running phase keeps its armed end;
// the new durations apply from the next transition. While stopped the
// remaining time follows the new duration immediately.
func (keeper *TimeKeeper) UpdateConfig(config model.TimerConfig) {
	keeper.mu.Lock()
	keeper.config = config
	keeper.resolver = phase.NewResolver(config)
	keeper.session.Refresh(keeper.resolver)
	keeper.emitLocked(Event{
		Type:     EventProgress,
		Snapshot: keeper.snapshotLocked(),
		At:       keeper.options.Clock.Now(),
	})
	keeper.mu.Unlock()
}

// Close stops the timer, waits for the loop and closes observers.
func (keeper *TimeKeeper) Close() {
	keeper.Stop()
	keeper.loops.Wait()

	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.closed = true
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (keeper *TimeKeeper) run(stop <-chan struct{}, done chan<- struct{}) {
	defer keeper.loops.Done()
	defer close(done)

	ticker := time.NewTicker(keeper.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			keeper.evaluate(stop)
		}
	}
}

// evaluate runs one pass of the interval timer. A nil generation means the
// call is on demand rather than from the loop.
func (keeper *TimeKeeper) evaluate(generation <-chan struct{}) {
	keeper.evaluating.Lock()
	defer keeper.evaluating.Unlock()

	keeper.mu.Lock()
	if keeper.session.State() != StateRunning {
		keeper.mu.Unlock()
		return
	}
	if generation != nil && generation != keeper.stopCh {
		keeper.mu.Unlock()
		return
	}

	now := keeper.options.Clock.Now()
	transitions := keeper.session.Advance(now, keeper.resolver, keeper.liveWindow())
	snapshot := keeper.snapshotLocked()

	skipped := 0
	for i, transition := range transitions {
		if transition.Stopped {
			keeper.stopLoopLocked()
			keeper.emitLocked(Event{
				Type:     EventStateChange,
				Snapshot: snapshot,
				Message:  "no phase to run",
				At:       now,
			})
			continue
		}
		if !transition.Cue {
			skipped++
		}
		entered := snapshot
		if i < len(transitions)-1 {
			entered = keeper.transitionSnapshotLocked(transition)
		}
		keeper.emitLocked(Event{
			Type:     EventPhaseChange,
			Snapshot: entered,
			Cue:      transition.Cue,
			At:       transition.At,
		})
	}
	keeper.emitLocked(Event{
		Type:     EventProgress,
		Snapshot: snapshot,
		At:       now,
	})
	hook := keeper.options.OnTransition
	keeper.mu.Unlock()

	if skipped > 0 {
		keeper.logger.Info().
			Str("event", "timer.catch_up").
			Int("transitions", len(transitions)).
			Int("silent", skipped).
			Msg("replayed missed phase transitions")
	}
	for _, transition := range transitions {
		keeper.logger.Debug().
			Str("event", "timer.phase_change").
			Str("from", string(transition.From)).
			Str("to", string(transition.To)).
			Int("cycle", transition.Cycle).
			Bool("cue", transition.Cue).
			Bool("stopped", transition.Stopped).
			Msg("phase advanced")
		if hook != nil {
			hook(transition)
		}
	}
}

func (keeper *TimeKeeper) liveWindow() time.Duration {
	return 2 * keeper.options.TickInterval
}

func (keeper *TimeKeeper) startLoopLocked() {
	keeper.stopLoopLocked()
	stop := make(chan struct{})
	done := make(chan struct{})
	keeper.stopCh = stop
	keeper.doneCh = done
	keeper.loops.Add(1)
	go keeper.run(stop, done)
}

// stopLoopLocked signals the loop to exit and returns a channel closed once it
// has. Callers must not wait on it while holding the lock.
func (keeper *TimeKeeper) stopLoopLocked() <-chan struct{} {
	if keeper.stopCh == nil {
		return nil
	}
	close(keeper.stopCh)
	done := keeper.doneCh
	keeper.stopCh = nil
	keeper.doneCh = nil
	return done
}

func (keeper *TimeKeeper) snapshotLocked() Snapshot {
	next := keeper.session.Phase().Opposite()
	if transition, ok := keeper.resolver.Next(keeper.session.Phase()); ok {
		next = transition.Phase
	}
	return Snapshot{
		State:     keeper.session.State(),
		Phase:     keeper.session.Phase(),
		NextPhase: next,
		Cycle:     keeper.session.Cycle(),
		Remaining: keeper.session.Remaining(),
		Startable: keeper.resolver.Startable(),
	}
}

// transitionSnapshotLocked describes the session as it was right after
// transition, before any later advance in the same pass.
func (keeper *TimeKeeper) transitionSnapshotLocked(transition Transition) Snapshot {
	snapshot := keeper.snapshotLocked()
	snapshot.Phase = transition.To
	snapshot.Cycle = transition.Cycle
	snapshot.Remaining = transition.Remaining
	snapshot.NextPhase = transition.To.Opposite()
	if next, ok := keeper.resolver.Next(transition.To); ok {
		snapshot.NextPhase = next.Phase
	}
	return snapshot
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func wait(done <-chan struct{}) {
	if done != nil {
		<-done
	}
}
