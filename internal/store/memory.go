package store

import (
	"context"
	"sort"
	"sync"

	"github.com/leadflowhq/leadflow/internal/model"
)

// MemoryStore is an in-process Store used by tests and single-node
// deployments. Every method copies records on the way in and out so
// callers never share mutable state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	leads       map[string]model.Lead
	proposals   []model.Proposal
	feedback    []model.Feedback
	runs        []model.RunEntry
	credentials map[string]model.ChannelCredentials
	usage       map[string]int // key: owner|action|month
	snapshots   map[string]model.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads:       make(map[string]model.Lead),
		credentials: make(map[string]model.ChannelCredentials),
		usage:       make(map[string]int),
		snapshots:   make(map[string]model.Snapshot),
	}
}

func (s *MemoryStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &lead, nil
}

func (s *MemoryStore) PutLead(ctx context.Context, lead *model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads[lead.ID] = *lead
	return nil
}

func (s *MemoryStore) PutProposal(ctx context.Context, proposal *model.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.proposals = append(s.proposals, *proposal)
	return nil
}

func (s *MemoryStore) LatestProposal(ctx context.Context, leadID string) (*model.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.Proposal
	for i := range s.proposals {
		p := s.proposals[i]
		if p.LeadID != leadID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			cp := p
			latest = &cp
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *MemoryStore) PutFeedback(ctx context.Context, fb *model.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feedback = append(s.feedback, *fb)
	return nil
}

func (s *MemoryStore) ListFeedback(ctx context.Context, ownerID string) ([]model.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Feedback
	for _, fb := range s.feedback {
		if ownerID != "" && fb.OwnerID != ownerID {
			continue
		}
		out = append(out, fb)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) PutRunEntry(ctx context.Context, entry *model.RunEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, *entry)
	return nil
}

func (s *MemoryStore) ListRunEntries(ctx context.Context, ownerID string) ([]model.RunEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.RunEntry
	for _, entry := range s.runs {
		if ownerID != "" && entry.OwnerID != ownerID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *MemoryStore) GetCredentials(ctx context.Context, ownerID string) (*model.ChannelCredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creds, ok := s.credentials[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &creds, nil
}

func (s *MemoryStore) PutCredentials(ctx context.Context, creds *model.ChannelCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials[creds.OwnerID] = *creds
	return nil
}

func (s *MemoryStore) IncrementUsage(ctx context.Context, ownerID, actionType, month string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usage[ownerID+"|"+actionType+"|"+month]++
	return s.monthlyTotalLocked(ownerID, month), nil
}

func (s *MemoryStore) MonthlyUsage(ctx context.Context, ownerID, month string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.monthlyTotalLocked(ownerID, month), nil
}

func (s *MemoryStore) monthlyTotalLocked(ownerID, month string) int {
	total := 0
	prefix := ownerID + "|"
	suffix := "|" + month
	for key, count := range s.usage {
		if len(key) > len(prefix)+len(suffix) &&
			key[:len(prefix)] == prefix && key[len(key)-len(suffix):] == suffix {
			total += count
		}
	}
	return total
}

func (s *MemoryStore) PutSnapshot(ctx context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.OwnerID] = *snap
	return nil
}

func (s *MemoryStore) GetSnapshot(ctx context.Context, ownerID string) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &snap, nil
}

var _ Store = (*MemoryStore)(nil)
