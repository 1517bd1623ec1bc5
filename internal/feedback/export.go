package feedback

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/leadflowhq/leadflow/internal/jsonio"
)

// ExportDataset serializes feedback-derived samples as JSONL, optionally
// filtered to one tenant, and returns the record count and path. The
// file is rewritten wholesale on every call.
func (l *Loop) ExportDataset(ctx context.Context, ownerID string) (int, string, error) {
	samples, err := l.CollectSamples(ctx, ownerID)
	if err != nil {
		return 0, "", fmt.Errorf("collect samples: %w", err)
	}

	path := l.exportPath(ownerID)

	l.mu.Lock()
	l.lastExportPath = path
	l.mu.Unlock()

	if len(samples) == 0 {
		return 0, path, nil
	}
	if err := jsonio.AtomicWriteLines(path, samples); err != nil {
		return 0, "", fmt.Errorf("write export: %w", err)
	}
	l.logger.Printf("[INFO] dataset_exported records=%d path=%s", len(samples), path)
	return len(samples), path, nil
}

func (l *Loop) exportPath(ownerID string) string {
	if ownerID == "" {
		return filepath.Join(l.trainingDir, corpusFilename)
	}
	return filepath.Join(l.trainingDir, fmt.Sprintf("training_%s.jsonl", sanitizeOwner(ownerID)))
}
