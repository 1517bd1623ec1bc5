package reward

import "sync"

// Prompt bias band boundaries. The rolling average maps into one of four
// fixed bands; the neutral band yields no bias text.
const (
	lowBandCeiling        = 0.35
	subNeutralBandCeiling = 0.5
	highBandFloor         = 0.75
)

const (
	lowBandText = "System reminder: Recent feedback indicates low satisfaction. " +
		"Prioritize clarity, concrete next steps, and ensure the tone is proactive and reassuring."
	subNeutralBandText = "System reminder: Emphasize specificity and align proposals " +
		"with the prospect's business outcomes."
	highBandText = "System reminder: Continue the concise, action-oriented style " +
		"that users responded positively to."
)

// AgentStats holds one agent's rolling acceptance statistics.
type AgentStats struct {
	Avg   float64
	Count int
	Last  float64
}

// StatsTracker maintains rolling acceptance averages per agent for the
// process lifetime. Single-writer-at-a-time, many-reader.
type StatsTracker struct {
	mu    sync.RWMutex
	stats map[string]AgentStats
}

func NewStatsTracker() *StatsTracker {
	return &StatsTracker{stats: make(map[string]AgentStats)}
}

// Observe folds a new score into the agent's rolling average.
func (t *StatsTracker) Observe(agent string, score float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[agent]
	if !ok {
		s = AgentStats{Avg: 0.5}
	}
	count := float64(s.Count)
	s.Avg = (s.Avg*count + score) / (count + 1)
	s.Count++
	s.Last = score
	t.stats[agent] = s
}

// Get returns the agent's stats and whether any scores were observed.
func (t *StatsTracker) Get(agent string) (AgentStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.stats[agent]
	return s, ok
}

// PromptBias maps an agent's rolling average to a fixed hint string that
// callers prepend to the generation prompt. Agents in the neutral band,
// or never observed, get no bias.
func (t *StatsTracker) PromptBias(agent string) string {
	s, ok := t.Get(agent)
	if !ok {
		return ""
	}
	switch {
	case s.Avg < lowBandCeiling:
		return lowBandText
	case s.Avg < subNeutralBandCeiling:
		return subNeutralBandText
	case s.Avg > highBandFloor:
		return highBandText
	default:
		return ""
	}
}
