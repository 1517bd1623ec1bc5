// Package workflow drives the four-step lead pipeline: score a lead,
// draft a proposal, send it, and schedule the follow-up. Each step is
// wrapped by a retry policy and recorded for analytics.
package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leadflowhq/leadflow/internal/agent"
	"github.com/leadflowhq/leadflow/internal/billing"
	"github.com/leadflowhq/leadflow/internal/dag"
	"github.com/leadflowhq/leadflow/internal/events"
	"github.com/leadflowhq/leadflow/internal/feedback"
	"github.com/leadflowhq/leadflow/internal/memory"
	"github.com/leadflowhq/leadflow/internal/model"
	"github.com/leadflowhq/leadflow/internal/monitoring"
	"github.com/leadflowhq/leadflow/internal/store"
)

// Sender dispatches an outbound message through a tenant's channel.
type Sender interface {
	Send(ctx context.Context, creds model.ChannelCredentials, to, subject, body string) error
}

// Analytics recomputes the per-tenant snapshot. Satisfied by
// analytics.Service.
type Analytics interface {
	Recompute(ctx context.Context, ownerID string) (model.Snapshot, error)
}

// Deps wires the workflow's collaborators.
type Deps struct {
	Config    model.WorkflowConfig
	Store     store.Store
	Registry  dag.Registry
	Loop      *feedback.Loop
	Memory    memory.Store
	Meter     *billing.Meter
	Recorder  *monitoring.Recorder
	Analytics Analytics
	Sender    Sender
	Bus       *events.Bus
	Logger    *log.Logger
	// Sleep overrides the backoff sleeper; nil uses time.Sleep.
	Sleep func(time.Duration)
}

// Workflow executes lead pipelines. One Workflow serves many runs;
// per-run state lives in the run type, so runs for different leads may
// execute concurrently.
type Workflow struct {
	cfg       model.WorkflowConfig
	store     store.Store
	registry  dag.Registry
	loop      *feedback.Loop
	memory    memory.Store
	meter     *billing.Meter
	recorder  *monitoring.Recorder
	analytics Analytics
	sender    Sender
	bus       *events.Bus
	logger    *log.Logger
	sleep     func(time.Duration)
}

func New(deps Deps) *Workflow {
	sleep := deps.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Workflow{
		cfg:       deps.Config,
		store:     deps.Store,
		registry:  deps.Registry,
		loop:      deps.Loop,
		memory:    deps.Memory,
		meter:     deps.Meter,
		recorder:  deps.Recorder,
		analytics: deps.Analytics,
		sender:    deps.Sender,
		bus:       deps.Bus,
		logger:    deps.Logger,
		sleep:     sleep,
	}
}

// run is the per-run state: one lead, one tenant, one pass through the
// pipeline.
type run struct {
	w             *Workflow
	leadID        string
	ownerID       string
	usageRecorded map[string]bool
}

// Run executes the pipeline for one lead, starting at startFrom.
// Earlier steps are skipped entirely; their effects are assumed
// present from a prior partial run. Whatever the outcome, the tenant's
// analytics snapshot is recomputed before returning.
func (w *Workflow) Run(ctx context.Context, leadID, ownerID string, startFrom model.Step) (model.WorkflowResult, error) {
	result := model.WorkflowResult{LeadID: leadID}

	startIdx, err := model.StepIndex(startFrom)
	if err != nil {
		return result, err
	}

	r := &run{w: w, leadID: leadID, ownerID: ownerID, usageRecorded: make(map[string]bool)}
	runErr := r.execute(ctx, startIdx, &result)

	// Best effort: a snapshot failure never overrides the pipeline's
	// own outcome.
	if _, err := w.analytics.Recompute(ctx, ownerID); err != nil {
		w.logger.Printf("[WARN] snapshot_recompute_failed owner=%s err=%v", ownerID, err)
	}

	status := "succeeded"
	if runErr != nil {
		status = "failed"
	}
	w.bus.Publish(events.EventWorkflowCompleted, map[string]interface{}{
		"lead_id":  leadID,
		"owner_id": ownerID,
		"status":   status,
	})
	return result, runErr
}

func (r *run) execute(ctx context.Context, startIdx int, result *model.WorkflowResult) error {
	if startIdx <= stepIdx(model.StepScore) {
		score, err := runWithRetry(ctx, r, model.StepScore, false, r.scoreLead)
		if err != nil {
			return err
		}
		result.Score = score
	}

	if startIdx <= stepIdx(model.StepProposal) {
		proposal, err := runWithRetry(ctx, r, model.StepProposal, false, r.generateProposal)
		if err != nil {
			return err
		}
		if proposal != nil {
			result.ProposalID = proposal.ID
			result.RewardScore = proposal.Reward
		}
	}

	if startIdx <= stepIdx(model.StepSend) {
		sent, err := runWithRetry(ctx, r, model.StepSend, true, r.sendProposal)
		if err != nil {
			return err
		}
		result.EmailSent = sent
	}

	if startIdx <= stepIdx(model.StepFollowup) {
		status, err := runWithRetry(ctx, r, model.StepFollowup, false, r.scheduleFollowup)
		if err != nil {
			return err
		}
		result.FollowupStatus = status
	}
	return nil
}

// stepIdx is StepIndex for the fixed built-in steps, which cannot fail.
func stepIdx(step model.Step) int {
	idx, _ := model.StepIndex(step)
	return idx
}

func (r *run) lead(ctx context.Context) (*model.Lead, error) {
	lead, err := r.w.store.GetLead(ctx, r.leadID)
	if err != nil {
		return nil, fmt.Errorf("lead %s: %w", r.leadID, err)
	}
	return lead, nil
}

func (r *run) invoke(ctx context.Context, tag string, inputs map[string]any) (map[string]any, error) {
	exec, ok := r.w.registry.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("no executor registered for %q", tag)
	}
	output, _, err := exec.Execute(ctx, inputs, nil)
	return output, err
}

// scoreLead invokes the scoring agent, persists the score on the lead,
// and records the interaction in similarity memory.
func (r *run) scoreLead(ctx context.Context) (float64, error) {
	lead, err := r.lead(ctx)
	if err != nil {
		return 0, err
	}

	output, err := r.invoke(ctx, agent.TagLeadScorer, map[string]any{"lead": lead})
	if err != nil {
		return 0, err
	}
	score, ok := output["score"].(float64)
	if !ok {
		return 0, fmt.Errorf("scorer returned no score for lead %s", r.leadID)
	}

	lead.Score = score
	if err := r.w.store.PutLead(ctx, lead); err != nil {
		return 0, fmt.Errorf("persist score: %w", err)
	}

	r.saveMemory(ctx, agent.TagLeadScorer, lead,
		fmt.Sprintf("Inquiry from %s: %s", lead.Name, lead.Message),
		fmt.Sprintf("scored %.3f", score))
	return score, nil
}

// generateProposal drafts a proposal, scores it through the reward
// model, persists both, and advances the lead status.
func (r *run) generateProposal(ctx context.Context) (*model.Proposal, error) {
	lead, err := r.lead(ctx)
	if err != nil {
		return nil, err
	}

	output, err := r.invoke(ctx, agent.TagProposalGen, map[string]any{"lead": lead, "score": lead.Score})
	if err != nil {
		return nil, err
	}
	content, ok := output["proposal"].(string)
	if !ok || content == "" {
		return nil, fmt.Errorf("drafter returned no proposal for lead %s", r.leadID)
	}

	id, err := model.NewID(model.IDTypeProposal)
	if err != nil {
		return nil, err
	}
	proposal := &model.Proposal{
		ID:        id,
		LeadID:    lead.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	reward, err := r.w.loop.ScoreGeneration(ctx, agent.TagProposalGen, lead.Message, content, nil)
	if err != nil {
		r.w.logger.Printf("[WARN] reward_scoring_failed lead=%s err=%v", r.leadID, err)
	} else {
		proposal.Reward = reward
	}

	if err := r.w.store.PutProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("persist proposal: %w", err)
	}
	if err := r.transition(ctx, lead, model.LeadStatusProposalSent); err != nil {
		return nil, err
	}

	r.saveMemory(ctx, agent.TagProposalGen, lead, content, fmt.Sprintf("reward %.3f", proposal.Reward))
	return proposal, nil
}

// sendProposal dispatches the latest draft through the tenant's
// channel. Missing credentials are a precondition failure; the step is
// skippable, so the pipeline proceeds without sending.
func (r *run) sendProposal(ctx context.Context) (bool, error) {
	creds, err := r.w.store.GetCredentials(ctx, r.ownerID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}

	lead, err := r.lead(ctx)
	if err != nil {
		return false, err
	}
	proposal, err := r.w.store.LatestProposal(ctx, r.leadID)
	if err != nil {
		return false, fmt.Errorf("proposal for lead %s: %w", r.leadID, err)
	}

	subject := "Proposal for " + lead.Name
	if err := r.w.sender.Send(ctx, *creds, lead.Email, subject, proposal.Content); err != nil {
		return false, fmt.Errorf("send proposal: %w", err)
	}
	return true, nil
}

// scheduleFollowup composes the follow-up message and parks the lead
// in followup_pending.
func (r *run) scheduleFollowup(ctx context.Context) (model.LeadStatus, error) {
	lead, err := r.lead(ctx)
	if err != nil {
		return "", err
	}

	output, err := r.invoke(ctx, agent.TagFollowupAgent, map[string]any{"lead": lead})
	if err != nil {
		return "", err
	}
	text, _ := output["followup"].(string)

	if err := r.transition(ctx, lead, model.LeadStatusFollowupPending); err != nil {
		return "", err
	}

	r.saveMemory(ctx, agent.TagFollowupAgent, lead, text, "followup scheduled")
	return lead.Status, nil
}

func (r *run) transition(ctx context.Context, lead *model.Lead, to model.LeadStatus) error {
	if err := model.ValidateLeadTransition(lead.Status, to); err != nil {
		return err
	}
	lead.Status = to
	if err := r.w.store.PutLead(ctx, lead); err != nil {
		return fmt.Errorf("persist lead status: %w", err)
	}
	return nil
}

// saveMemory records an interaction; memory failures are logged, never
// propagated.
func (r *run) saveMemory(ctx context.Context, agentTag string, lead *model.Lead, text, outcome string) {
	if r.w.memory == nil {
		return
	}
	if err := r.w.memory.Save(ctx, agentTag, lead, text, outcome); err != nil {
		r.w.logger.Printf("[WARN] memory_save_failed agent=%s lead=%s err=%v", agentTag, lead.ID, err)
	}
}
