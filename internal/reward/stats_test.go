package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsTracker_RollingAverage(t *testing.T) {
	tracker := NewStatsTracker()

	tracker.Observe("proposal_gen", 0.8)
	s, ok := tracker.Get("proposal_gen")
	assert.True(t, ok)
	assert.InDelta(t, 0.8, s.Avg, 1e-9)
	assert.Equal(t, 1, s.Count)

	tracker.Observe("proposal_gen", 0.4)
	s, _ = tracker.Get("proposal_gen")
	assert.InDelta(t, 0.6, s.Avg, 1e-9)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 0.4, s.Last, 1e-9)
}

func TestStatsTracker_UnknownAgent(t *testing.T) {
	tracker := NewStatsTracker()
	_, ok := tracker.Get("nobody")
	assert.False(t, ok)
	assert.Equal(t, "", tracker.PromptBias("nobody"))
}

func TestPromptBias_Bands(t *testing.T) {
	const eps = 1e-6
	cases := []struct {
		name string
		avg  float64
		want string
	}{
		{"deep low", 0.10, lowBandText},
		{"just below low ceiling", lowBandCeiling - eps, lowBandText},
		{"at low ceiling", lowBandCeiling, subNeutralBandText},
		{"just below sub-neutral ceiling", subNeutralBandCeiling - eps, subNeutralBandText},
		{"at sub-neutral ceiling", subNeutralBandCeiling, ""},
		{"mid neutral", 0.6, ""},
		{"at high floor", highBandFloor, ""},
		{"just above high floor", highBandFloor + eps, highBandText},
		{"deep high", 0.95, highBandText},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tracker := NewStatsTracker()
			// A single observation sets the rolling average exactly.
			tracker.Observe("agent", c.avg)
			assert.Equal(t, c.want, tracker.PromptBias("agent"))
		})
	}
}
