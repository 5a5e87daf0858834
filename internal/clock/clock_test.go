package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualAdvance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	manual := NewManual(start)

	manual.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), manual.Now())

	manual.Set(start)
	assert.Equal(t, start, manual.Now())
}

func TestManualAudioAdvance(t *testing.T) {
	audio := NewManualAudio(2)
	audio.Advance(0.25)
	assert.InDelta(t, 2.25, audio.Now(), 1e-9)
}

func TestMonotonicStartsNearZero(t *testing.T) {
	mono := NewMonotonic()
	first := mono.Now()
	assert.GreaterOrEqual(t, first, 0.0)
	assert.Less(t, first, 1.0)
	assert.GreaterOrEqual(t, mono.Now(), first)
}
