package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/internal/model"
)

func TestMemoryStore_LeadRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	lead := &model.Lead{ID: "lead_1", OwnerID: "org_1", Name: "Acme Founder", Status: model.LeadStatusNew}
	require.NoError(t, s.PutLead(ctx, lead))

	got, err := s.GetLead(ctx, "lead_1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Founder", got.Name)

	// Mutating the returned record must not affect the stored copy.
	got.Name = "changed"
	again, err := s.GetLead(ctx, "lead_1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Founder", again.Name)
}

func TestMemoryStore_GetLead_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetLead(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_LatestProposal(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.PutProposal(ctx, &model.Proposal{ID: "prop_1", LeadID: "lead_1", Content: "first", CreatedAt: base}))
	require.NoError(t, s.PutProposal(ctx, &model.Proposal{ID: "prop_2", LeadID: "lead_1", Content: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.PutProposal(ctx, &model.Proposal{ID: "prop_3", LeadID: "lead_2", Content: "other lead", CreatedAt: base.Add(time.Hour)}))

	latest, err := s.LatestProposal(ctx, "lead_1")
	require.NoError(t, err)
	assert.Equal(t, "prop_2", latest.ID)

	_, err = s.LatestProposal(ctx, "lead_9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListFeedback_OrderedAndFiltered(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.PutFeedback(ctx, &model.Feedback{ID: "fb_2", OwnerID: "org_1", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.PutFeedback(ctx, &model.Feedback{ID: "fb_1", OwnerID: "org_1", Timestamp: base}))
	require.NoError(t, s.PutFeedback(ctx, &model.Feedback{ID: "fb_3", OwnerID: "org_2", Timestamp: base.Add(2 * time.Minute)}))

	all, err := s.ListFeedback(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "fb_1", all[0].ID)

	scoped, err := s.ListFeedback(ctx, "org_1")
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, "fb_1", scoped[0].ID)
	assert.Equal(t, "fb_2", scoped[1].ID)
}

func TestMemoryStore_IncrementUsage_TotalsAcrossActions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	total, err := s.IncrementUsage(ctx, "org_1", "proposal", "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = s.IncrementUsage(ctx, "org_1", "followup", "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// Other tenants and months are isolated.
	total, err = s.IncrementUsage(ctx, "org_2", "proposal", "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = s.IncrementUsage(ctx, "org_1", "proposal", "2026-09")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestMemoryStore_MonthlyUsage_DoesNotMutate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	total, err := s.MonthlyUsage(ctx, "org_1", "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, err = s.IncrementUsage(ctx, "org_1", "proposal", "2026-08")
	require.NoError(t, err)
	_, err = s.IncrementUsage(ctx, "org_1", "followup", "2026-08")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		total, err = s.MonthlyUsage(ctx, "org_1", "2026-08")
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	}
}

func TestMemoryStore_Credentials(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetCredentials(ctx, "org_1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutCredentials(ctx, &model.ChannelCredentials{OwnerID: "org_1", Address: "ops@org1.io"}))
	creds, err := s.GetCredentials(ctx, "org_1")
	require.NoError(t, err)
	assert.Equal(t, "ops@org1.io", creds.Address)
}

func TestMemoryStore_RunEntries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutRunEntry(ctx, &model.RunEntry{ID: "run_1", OwnerID: "org_1", Stage: "lead_scoring", Success: true}))
	require.NoError(t, s.PutRunEntry(ctx, &model.RunEntry{ID: "run_2", OwnerID: "org_2", Stage: "followup", Success: false}))

	entries, err := s.ListRunEntries(ctx, "org_1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lead_scoring", entries[0].Stage)
}
