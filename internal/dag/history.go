package dag

import (
	"sync"

	"github.com/leadflowhq/leadflow/internal/model"
)

const defaultHistoryCapacity = 50

// History is a bounded, most-recent-first buffer of run records. Once
// capacity is reached, the oldest record is evicted.
type History struct {
	mu       sync.RWMutex
	capacity int
	records  []model.RunRecord
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Push inserts the record at the front.
func (h *History) Push(rec model.RunRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append([]model.RunRecord{rec}, h.records...)
	if len(h.records) > h.capacity {
		h.records = h.records[:h.capacity]
	}
}

// List returns the buffered records, most recent first, filtered to
// one tenant. An empty ownerID returns every record.
func (h *History) List(ownerID string) []model.RunRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]model.RunRecord, 0, len(h.records))
	for _, rec := range h.records {
		if ownerID != "" && rec.OwnerID != ownerID {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Len reports the number of buffered records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
