// Package model defines the data structures shared across the leadflow
// engine: leads, proposals, feedback, workflow results, and run entries.
package model

import "time"

// Lead is one inbound request worked by the pipeline.
type Lead struct {
	ID      string     `yaml:"id" json:"id"`
	OwnerID string     `yaml:"owner_id" json:"owner_id"`
	Name    string     `yaml:"name" json:"name"`
	Email   string     `yaml:"email" json:"email"`
	Message string     `yaml:"message" json:"message"`
	Score   float64    `yaml:"score" json:"score"`
	Status  LeadStatus `yaml:"status" json:"status"`
}

// Proposal is a drafted outbound document for a lead.
type Proposal struct {
	ID        string    `yaml:"id" json:"id"`
	LeadID    string    `yaml:"lead_id" json:"lead_id"`
	Content   string    `yaml:"content" json:"content"`
	Reward    float64   `yaml:"reward" json:"reward"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Feedback is one human review of a generated output.
type Feedback struct {
	ID         string    `yaml:"id" json:"id"`
	OwnerID    string    `yaml:"owner_id" json:"owner_id"`
	LeadID     string    `yaml:"lead_id" json:"lead_id"`
	Type       string    `yaml:"type" json:"type"`
	Comment    string    `yaml:"comment" json:"comment"`
	EditedText string    `yaml:"edited_text" json:"edited_text"`
	Timestamp  time.Time `yaml:"timestamp" json:"timestamp"`
}

// ChannelCredentials holds a tenant's outbound channel configuration.
// Absence of credentials is a structural precondition failure, not a
// transient error.
type ChannelCredentials struct {
	OwnerID string `yaml:"owner_id" json:"owner_id"`
	Address string `yaml:"address" json:"address"`
	Secret  string `yaml:"secret" json:"secret"`
}

// RunEntry records one stage attempt (success or failure) for analytics.
type RunEntry struct {
	ID         string    `yaml:"id" json:"id"`
	OwnerID    string    `yaml:"owner_id" json:"owner_id"`
	LeadID     string    `yaml:"lead_id" json:"lead_id"`
	Stage      string    `yaml:"stage" json:"stage"`
	Success    bool      `yaml:"success" json:"success"`
	DurationMS float64   `yaml:"duration_ms" json:"duration_ms"`
	Error      string    `yaml:"error,omitempty" json:"error,omitempty"`
	Timestamp  time.Time `yaml:"timestamp" json:"timestamp"`
}

// WorkflowResult is the outcome of one linear pipeline run for a lead.
// It is returned to the caller; persistence happens through the side
// effects of each step.
type WorkflowResult struct {
	LeadID         string     `json:"lead_id"`
	Score          float64    `json:"score"`
	ProposalID     string     `json:"proposal_id,omitempty"`
	EmailSent      bool       `json:"email_sent"`
	FollowupStatus LeadStatus `json:"followup_status,omitempty"`
	RewardScore    float64    `json:"reward_score"`
}

// Sample is one training example derived from a feedback record.
// Samples are ephemeral: recomputed on every training pass, persisted
// only as lines of the exported corpus.
type Sample struct {
	Prompt   string            `json:"prompt"`
	Input    string            `json:"input"`
	Output   string            `json:"output"`
	Label    int               `json:"label"`
	Agent    string            `json:"-"`
	Metadata map[string]string `json:"metadata"`
}

// Usage is one month/action usage counter for a tenant.
type Usage struct {
	OwnerID    string `yaml:"owner_id" json:"owner_id"`
	ActionType string `yaml:"action_type" json:"action_type"`
	Month      string `yaml:"month" json:"month"`
	Count      int    `yaml:"count" json:"count"`
}

// Snapshot is the per-tenant analytics aggregate recomputed after each
// workflow run.
type Snapshot struct {
	OwnerID     string             `yaml:"owner_id" json:"owner_id"`
	TotalRuns   int                `yaml:"total_runs" json:"total_runs"`
	SuccessRate float64            `yaml:"success_rate" json:"success_rate"`
	AvgDuration float64            `yaml:"avg_duration_ms" json:"avg_duration_ms"`
	StageCounts map[string]int     `yaml:"stage_counts" json:"stage_counts"`
	ComputedAt  time.Time          `yaml:"computed_at" json:"computed_at"`
}
