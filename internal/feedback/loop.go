// Package feedback closes the learning loop: it assembles training
// samples from stored human feedback, retrains the reward model lazily,
// and exposes generation scoring, prompt biasing, and dataset export.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leadflowhq/leadflow/internal/jsonio"
	"github.com/leadflowhq/leadflow/internal/model"
	"github.com/leadflowhq/leadflow/internal/reward"
	"github.com/leadflowhq/leadflow/internal/store"
)

// Label inference vocabularies. Ambiguous feedback defaults to negative;
// that conservative bias is a policy choice, tuned here rather than
// hard-coded at the call sites.
var (
	PositiveHints = []string{"accept", "approve", "approved", "positive", "great", "love", "good", "ship"}
	NegativeHints = []string{"reject", "decline", "negative", "bad", "issue", "problem", "redo", "fail"}
)

// DefaultLabel is applied when neither vocabulary matches.
const DefaultLabel = 0

var (
	agentPattern    = regexp.MustCompile(`(?i)agent[:=]\s*([A-Za-z0-9_\-]+)`)
	sanitizePattern = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
)

const corpusFilename = "training.jsonl"

// Loop owns the reward model and its training lifecycle.
type Loop struct {
	store       store.Store
	model       *reward.Model
	stats       *reward.StatsTracker
	trainingDir string
	logger      *log.Logger

	mu             sync.Mutex
	dirty          bool
	trainedSamples int
	lastExportPath string

	trainGroup singleflight.Group
}

func NewLoop(st store.Store, rewardModel *reward.Model, stats *reward.StatsTracker, trainingDir string, logger *log.Logger) *Loop {
	return &Loop{
		store:       st,
		model:       rewardModel,
		stats:       stats,
		trainingDir: trainingDir,
		logger:      logger,
		dirty:       true,
	}
}

// MarkDirty flags that new feedback arrived; the next scoring call will
// retrain. Retraining cost is amortized against bursty feedback instead
// of paying it per save.
func (l *Loop) MarkDirty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty = true
}

// LastExportPath returns the destination of the most recent export.
func (l *Loop) LastExportPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastExportPath
}

// EnsureTrained retrains the reward model if feedback changed since the
// last pass. Concurrent callers share one training run.
func (l *Loop) EnsureTrained(ctx context.Context) error {
	l.mu.Lock()
	needed := l.dirty || !l.model.Trained()
	l.mu.Unlock()
	if !needed {
		return nil
	}

	_, err, _ := l.trainGroup.Do("train", func() (any, error) {
		return nil, l.train(ctx)
	})
	return err
}

func (l *Loop) train(ctx context.Context) error {
	samples, err := l.CollectSamples(ctx, "")
	if err != nil {
		return fmt.Errorf("collect samples: %w", err)
	}

	if len(samples) == 0 {
		l.model.Reset()
		l.mu.Lock()
		l.trainedSamples = 0
		l.dirty = false
		l.mu.Unlock()
		return nil
	}

	corpusPath := filepath.Join(l.trainingDir, corpusFilename)
	if err := jsonio.AtomicWriteLines(corpusPath, samples); err != nil {
		return fmt.Errorf("write training corpus: %w", err)
	}

	l.model.Train(samples)

	l.mu.Lock()
	l.trainedSamples = len(samples)
	l.dirty = false
	l.mu.Unlock()

	l.logger.Printf("[INFO] reward_model_trained samples=%d corpus=%s", len(samples), corpusPath)
	return nil
}

// ScoreGeneration predicts the acceptance probability for a fresh
// generation and folds it into the agent's rolling statistics.
func (l *Loop) ScoreGeneration(ctx context.Context, agent, prompt, output string, genContext map[string]string) (float64, error) {
	if err := l.EnsureTrained(ctx); err != nil {
		return 0, err
	}
	input := ""
	if genContext != nil {
		if v := genContext["feedback"]; v != "" {
			input = v
		} else if v := genContext["comment"]; v != "" {
			input = v
		}
	}
	score := l.model.Predict(prompt, input, output)
	l.stats.Observe(agent, score)
	return score, nil
}

// PromptBias returns the fixed hint text for the agent's current
// acceptance band, or an empty string in the neutral band.
func (l *Loop) PromptBias(agent string) string {
	return l.stats.PromptBias(agent)
}

// CollectSamples turns stored feedback into training samples. Samples
// are ephemeral; they are recomputed on every call.
func (l *Loop) CollectSamples(ctx context.Context, ownerID string) ([]model.Sample, error) {
	entries, err := l.store.ListFeedback(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	samples := make([]model.Sample, 0, len(entries))
	for _, entry := range entries {
		var lead *model.Lead
		if entry.LeadID != "" {
			lead, err = l.store.GetLead(ctx, entry.LeadID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("get lead %s: %w", entry.LeadID, err)
			}
		}

		prompt := entry.Comment
		if lead != nil && lead.Message != "" {
			prompt = lead.Message
		}

		output := entry.EditedText
		if output == "" && entry.LeadID != "" {
			proposal, err := l.store.LatestProposal(ctx, entry.LeadID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("latest proposal for %s: %w", entry.LeadID, err)
			}
			if proposal != nil {
				output = proposal.Content
			}
		}

		agent := InferAgent(entry)
		samples = append(samples, model.Sample{
			Prompt: prompt,
			Input:  entry.Comment,
			Output: output,
			Label:  InferLabel(entry),
			Agent:  agent,
			Metadata: map[string]string{
				"owner_id":  entry.OwnerID,
				"lead_id":   entry.LeadID,
				"type":      entry.Type,
				"timestamp": entry.Timestamp.UTC().Format(time.RFC3339),
				"agent":     agent,
			},
		})
	}
	return samples, nil
}

// InferLabel classifies feedback as accept (1) or reject (0) by keyword
// matching against the hint vocabularies, positive hints first.
func InferLabel(entry model.Feedback) int {
	text := strings.ToLower(entry.Type)
	comment := strings.ToLower(entry.Comment)
	for _, hint := range PositiveHints {
		if strings.Contains(text, hint) || strings.Contains(comment, hint) {
			return 1
		}
	}
	for _, hint := range NegativeHints {
		if strings.Contains(text, hint) || strings.Contains(comment, hint) {
			return 0
		}
	}
	return DefaultLabel
}

// InferAgent extracts the agent name from an "agent: name" marker in the
// comment, else from the type's "agent:kind" or "agent_kind" prefix.
func InferAgent(entry model.Feedback) string {
	if match := agentPattern.FindStringSubmatch(entry.Comment); match != nil {
		return strings.ToLower(match[1])
	}
	if idx := strings.Index(entry.Type, ":"); idx > 0 {
		return strings.ToLower(entry.Type[:idx])
	}
	if idx := strings.Index(entry.Type, "_"); idx > 0 {
		return strings.ToLower(entry.Type[:idx])
	}
	return "default"
}

func sanitizeOwner(ownerID string) string {
	return sanitizePattern.ReplaceAllString(ownerID, "_")
}
