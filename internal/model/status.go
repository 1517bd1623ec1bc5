package model

import "fmt"

// NodeStatus is the terminal status of one DAG task execution.
type NodeStatus string

const (
	NodeSucceeded NodeStatus = "succeeded"
	NodeFailed    NodeStatus = "failed"
)

// RunStatus is the overall status of a DAG run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// LeadStatus tracks where a lead sits in the pipeline.
type LeadStatus string

const (
	LeadStatusNew             LeadStatus = "new"
	LeadStatusProposalSent    LeadStatus = "proposal_sent"
	LeadStatusFollowupPending LeadStatus = "followup_pending"
	LeadStatusClosed          LeadStatus = "closed"
)

// Lead status transitions: new → proposal_sent → followup_pending → closed.
// A partial run resumed via start_from re-enters mid-sequence, so a status
// may also transition to itself.
var validLeadTransitions = map[LeadStatus]map[LeadStatus]bool{
	LeadStatusNew: {
		LeadStatusNew:          true,
		LeadStatusProposalSent: true,
	},
	LeadStatusProposalSent: {
		LeadStatusProposalSent:    true,
		LeadStatusFollowupPending: true,
	},
	LeadStatusFollowupPending: {
		LeadStatusFollowupPending: true,
		LeadStatusProposalSent:    true, // re-run from proposal after feedback
		LeadStatusClosed:          true,
	},
}

func ValidateLeadTransition(from, to LeadStatus) error {
	if from == LeadStatusClosed {
		return fmt.Errorf("cannot transition from terminal lead status %q", from)
	}
	allowed, ok := validLeadTransitions[from]
	if !ok {
		return fmt.Errorf("unknown lead status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid lead transition: %q → %q", from, to)
	}
	return nil
}

// Step identifies one stage of the linear workflow.
type Step string

const (
	StepScore    Step = "score"
	StepProposal Step = "proposal"
	StepSend     Step = "send"
	StepFollowup Step = "followup"
)

// Steps lists the workflow stages in execution order.
var Steps = []Step{StepScore, StepProposal, StepSend, StepFollowup}

// StepIndex returns the position of step in the pipeline, or an error for
// an unknown step name.
func StepIndex(step Step) (int, error) {
	for i, s := range Steps {
		if s == step {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown workflow step %q", step)
}

// StageName maps a workflow step to the stage label recorded in run entries.
var stageNames = map[Step]string{
	StepScore:    "lead_scoring",
	StepProposal: "proposal_generation",
	StepSend:     "proposal_email",
	StepFollowup: "followup",
}

func StageName(step Step) string {
	if name, ok := stageNames[step]; ok {
		return name
	}
	return string(step)
}
