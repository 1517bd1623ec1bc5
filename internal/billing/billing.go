// Package billing meters per-tenant usage against plan quotas.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leadflowhq/leadflow/internal/lock"
	"github.com/leadflowhq/leadflow/internal/store"
)

// ErrUsageLimitExceeded is raised when a tenant exceeds its plan quota.
// Callers must never retry on this error.
var ErrUsageLimitExceeded = errors.New("monthly usage limit reached for the current plan")

type Meter struct {
	store store.Store
	limit int
	locks *lock.MutexMap
	now   func() time.Time
}

func NewMeter(st store.Store, freePlanLimit int) *Meter {
	return &Meter{
		store: st,
		limit: freePlanLimit,
		locks: lock.NewMutexMap(),
		now:   time.Now,
	}
}

// Increment records one metered action for the tenant and enforces the
// monthly quota. The check runs before the increment so rejected
// attempts leave the recorded count untouched; the pair runs under a
// per-tenant lock so concurrent workflow runs cannot race past the
// limit.
func (m *Meter) Increment(ctx context.Context, ownerID, actionType string) error {
	m.locks.Lock(ownerID)
	defer m.locks.Unlock(ownerID)

	month := m.now().UTC().Format("2006-01")
	total, err := m.store.MonthlyUsage(ctx, ownerID, month)
	if err != nil {
		return fmt.Errorf("read usage: %w", err)
	}
	if m.limit > 0 && total >= m.limit {
		return fmt.Errorf("owner %s action %s: %w", ownerID, actionType, ErrUsageLimitExceeded)
	}
	if _, err := m.store.IncrementUsage(ctx, ownerID, actionType, month); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}
