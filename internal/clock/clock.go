// Package clock provides the wall clock used for phase timing and the audio
// clock used for scheduling sound. Both are injectable so tests can simulate
// starvation and catch-up deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock reports wall-clock time.
type Clock interface {
	Now() time.Time
}

// AudioClock reports the position of the audio output timeline in seconds.
// It is independent of the wall clock and only ever moves forward.
type AudioClock interface {
	Now() float64
}

// System is the real wall clock.
type System struct{}

// Now returns time.Now.
func (System) Now() time.Time {
	return time.Now()
}

// Monotonic is an audio clock derived from the monotonic reading of the wall
// clock. It is used when no audio device drives the timeline.
type Monotonic struct {
	origin time.Time
}

// NewMonotonic starts a monotonic audio clock at zero.
func NewMonotonic() *Monotonic {
	return &Monotonic{origin: time.Now()}
}

// Now returns the seconds elapsed since the clock was created.
func (clock *Monotonic) Now() float64 {
	return time.Since(clock.origin).Seconds()
}

// Manual is a wall clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (clock *Manual) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

// Advance moves the clock forward by delta.
func (clock *Manual) Advance(delta time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(delta)
	clock.mu.Unlock()
}

// Set moves the clock to an absolute time.
func (clock *Manual) Set(now time.Time) {
	clock.mu.Lock()
	clock.now = now
	clock.mu.Unlock()
}

// ManualAudio is an audio clock that only moves when told to.
type ManualAudio struct {
	mu  sync.Mutex
	now float64
}

// NewManualAudio returns a manual audio clock positioned at start seconds.
func NewManualAudio(start float64) *ManualAudio {
	return &ManualAudio{now: start}
}

// Now returns the current manual audio time.
func (clock *ManualAudio) Now() float64 {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

// Advance moves the audio clock forward by seconds.
func (clock *ManualAudio) Advance(seconds float64) {
	clock.mu.Lock()
	clock.now += seconds
	clock.mu.Unlock()
}
