// Package store abstracts the persistent record store. The real storage
// engine lives outside this module; callers depend on the Store
// interface and the engine is assumed durable and strongly consistent
// for single-record operations.
package store

import (
	"context"
	"errors"

	"github.com/leadflowhq/leadflow/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type Store interface {
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	PutLead(ctx context.Context, lead *model.Lead) error

	PutProposal(ctx context.Context, proposal *model.Proposal) error
	// LatestProposal returns the most recently created proposal for a lead.
	LatestProposal(ctx context.Context, leadID string) (*model.Proposal, error)

	PutFeedback(ctx context.Context, fb *model.Feedback) error
	// ListFeedback returns feedback ordered oldest-first. An empty ownerID
	// returns all tenants.
	ListFeedback(ctx context.Context, ownerID string) ([]model.Feedback, error)

	PutRunEntry(ctx context.Context, entry *model.RunEntry) error
	ListRunEntries(ctx context.Context, ownerID string) ([]model.RunEntry, error)

	GetCredentials(ctx context.Context, ownerID string) (*model.ChannelCredentials, error)
	PutCredentials(ctx context.Context, creds *model.ChannelCredentials) error

	// IncrementUsage bumps the (owner, action, month) counter and returns
	// the owner's total across all actions for that month.
	IncrementUsage(ctx context.Context, ownerID, actionType, month string) (int, error)
	// MonthlyUsage returns the owner's total across all actions for a
	// month without modifying any counter.
	MonthlyUsage(ctx context.Context, ownerID, month string) (int, error)

	PutSnapshot(ctx context.Context, snap *model.Snapshot) error
	GetSnapshot(ctx context.Context, ownerID string) (*model.Snapshot, error)
}
