// Package reward trains a lightweight acceptance classifier from human
// feedback and tracks per-agent acceptance trends.
package reward

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/leadflowhq/leadflow/internal/model"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// Model is a sparse logistic-regression classifier over bag-of-token
// features of prompt + input + output. Weights are rebuilt from scratch
// on every training pass; there is no warm start.
type Model struct {
	mu           sync.RWMutex
	learningRate float64
	epochs       int
	l2           float64
	weights      map[string]float64
	bias         float64
	trained      bool
}

func NewModel(cfg model.RewardConfig) *Model {
	learningRate := cfg.LearningRate
	if learningRate <= 0 {
		learningRate = 0.15
	}
	epochs := cfg.Epochs
	if epochs <= 0 {
		epochs = 120
	}
	l2 := cfg.L2
	if l2 < 0 {
		l2 = 0
	}
	return &Model{
		learningRate: learningRate,
		epochs:       epochs,
		l2:           l2,
		weights:      make(map[string]float64),
	}
}

func tokenize(text string) map[string]int {
	counts := make(map[string]int)
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		counts[token]++
	}
	return counts
}

func featurize(prompt, input, output string) map[string]int {
	return tokenize(prompt + "\n" + input + "\n" + output)
}

func sigmoid(value float64) float64 {
	// Guard against overflow
	if value < -50 {
		return 0.0
	}
	if value > 50 {
		return 1.0
	}
	return 1.0 / (1.0 + math.Exp(-value))
}

// Reset clears all learned state; predictions return neutral 0.5 until
// the next training pass.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.weights = make(map[string]float64)
	m.bias = 0
	m.trained = false
}

// Train fits the classifier on the full sample set. An empty set resets
// the model instead of failing.
func (m *Model) Train(samples []model.Sample) {
	if len(samples) == 0 {
		m.Reset()
		return
	}

	weights := make(map[string]float64)
	features := make([]map[string]int, len(samples))
	for i, sample := range samples {
		features[i] = featurize(sample.Prompt, sample.Input, sample.Output)
		for token := range features[i] {
			if _, ok := weights[token]; !ok {
				weights[token] = 0
			}
		}
	}

	bias := 0.0
	for epoch := 0; epoch < m.epochs; epoch++ {
		for i, sample := range samples {
			activation := bias
			for token, count := range features[i] {
				activation += weights[token] * float64(count)
			}
			prediction := sigmoid(activation)
			err := prediction - float64(sample.Label)

			bias -= m.learningRate * err
			for token, count := range features[i] {
				gradient := err*float64(count) + m.l2*weights[token]
				weights[token] -= m.learningRate * gradient
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.weights = weights
	m.bias = bias
	m.trained = true
}

// Predict returns the acceptance probability for a generation, or a
// neutral 0.5 when the model has no training data.
func (m *Model) Predict(prompt, input, output string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained || len(m.weights) == 0 {
		return 0.5
	}
	activation := m.bias
	for token, count := range featurize(prompt, input, output) {
		activation += m.weights[token] * float64(count)
	}
	return sigmoid(activation)
}

// Trained reports whether a training pass has completed since the last
// reset.
func (m *Model) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}
