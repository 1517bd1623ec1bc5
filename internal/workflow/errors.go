package workflow

import (
	"errors"

	"github.com/leadflowhq/leadflow/internal/billing"
	"github.com/leadflowhq/leadflow/internal/store"
)

// ErrNoCredentials marks a tenant without an outbound channel
// configured. It is a structural precondition, not a transient fault.
var ErrNoCredentials = errors.New("no channel credentials configured")

type errKind int

const (
	// kindTransient failures are retried with backoff.
	kindTransient errKind = iota
	// kindQuota failures propagate immediately and are never retried.
	kindQuota
	// kindPrecondition failures cannot be fixed by retrying.
	kindPrecondition
)

func classify(err error) errKind {
	switch {
	case errors.Is(err, billing.ErrUsageLimitExceeded):
		return kindQuota
	case errors.Is(err, ErrNoCredentials), errors.Is(err, store.ErrNotFound):
		return kindPrecondition
	default:
		return kindTransient
	}
}
