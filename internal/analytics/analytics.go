// Package analytics recomputes per-tenant aggregates from recorded
// stage runs. Recomputation is a best-effort side effect: callers log
// failures and move on.
package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leadflowhq/leadflow/internal/model"
	"github.com/leadflowhq/leadflow/internal/store"
)

type Service struct {
	store  store.Store
	logger *log.Logger
}

func NewService(st store.Store, logger *log.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Recompute rebuilds the tenant's snapshot from all recorded run
// entries and persists it.
func (s *Service) Recompute(ctx context.Context, ownerID string) (model.Snapshot, error) {
	entries, err := s.store.ListRunEntries(ctx, ownerID)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("list run entries: %w", err)
	}

	snap := model.Snapshot{
		OwnerID:     ownerID,
		TotalRuns:   len(entries),
		StageCounts: make(map[string]int),
		ComputedAt:  time.Now().UTC(),
	}

	successes := 0
	totalDuration := 0.0
	for _, entry := range entries {
		snap.StageCounts[entry.Stage]++
		totalDuration += entry.DurationMS
		if entry.Success {
			successes++
		}
	}
	if len(entries) > 0 {
		snap.SuccessRate = float64(successes) / float64(len(entries))
		snap.AvgDuration = totalDuration / float64(len(entries))
	}

	if err := s.store.PutSnapshot(ctx, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("put snapshot: %w", err)
	}
	s.logger.Printf("[INFO] snapshot_recomputed owner=%s runs=%d success_rate=%.2f", ownerID, snap.TotalRuns, snap.SuccessRate)
	return snap, nil
}
