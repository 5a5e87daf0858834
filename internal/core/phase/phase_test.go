package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practicetimer/internal/core/model"
)

func resolverFor(practiceSeconds, restSeconds int) Resolver {
	return NewResolver(model.TimerConfig{
		Practice: model.PhaseDuration{Minutes: practiceSeconds / 60, Seconds: practiceSeconds % 60},
		Rest:     model.PhaseDuration{Minutes: restSeconds / 60, Seconds: restSeconds % 60},
	})
}

func TestDuration(t *testing.T) {
	resolver := resolverFor(95, 30)
	assert.Equal(t, 95, resolver.Duration(Practice))
	assert.Equal(t, 30, resolver.Duration(Rest))
}

func TestStartPhase(t *testing.T) {
	phase, duration, ok := resolverFor(10, 5).StartPhase()
	require.True(t, ok)
	assert.Equal(t, Practice, phase)
	assert.Equal(t, 10, duration)

	phase, duration, ok = resolverFor(0, 5).StartPhase()
	require.True(t, ok)
	assert.Equal(t, Rest, phase)
	assert.Equal(t, 5, duration)

	_, _, ok = resolverFor(0, 0).StartPhase()
	assert.False(t, ok)
}

func TestNextPolicy(t *testing.T) {
	tests := []struct {
		name     string
		practice int
		rest     int
		current  Phase
		want     Transition
		ok       bool
	}{
		{"practice to rest", 5, 3, Practice, Transition{Phase: Rest, Duration: 3}, true},
		{"rest to practice", 5, 3, Rest, Transition{Phase: Practice, Duration: 5, IncrementCycle: true}, true},
		{"practice repeats without rest", 5, 0, Practice, Transition{Phase: Practice, Duration: 5, IncrementCycle: true}, true},
		{"rest repeats without practice", 0, 3, Rest, Transition{Phase: Rest, Duration: 3}, true},
		{"practice with zero practice goes to rest", 0, 3, Practice, Transition{Phase: Rest, Duration: 3}, true},
		{"rest with zero rest goes to practice", 5, 0, Rest, Transition{Phase: Practice, Duration: 5, IncrementCycle: true}, true},
		{"both zero from practice", 0, 0, Practice, Transition{}, false},
		{"both zero from rest", 0, 0, Rest, Transition{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolverFor(tt.practice, tt.rest).Next(tt.current)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Practice", Practice.Label())
	assert.Equal(t, "Rest", Rest.Label())
	assert.Equal(t, Rest, Practice.Opposite())
	assert.Equal(t, Practice, Rest.Opposite())
}
