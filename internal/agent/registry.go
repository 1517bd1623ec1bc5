// Package agent provides the closed set of task executors and the
// registry that maps agent tags onto them.
package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/leadflowhq/leadflow/internal/dag"
	"github.com/leadflowhq/leadflow/internal/memory"
	"github.com/leadflowhq/leadflow/internal/router"
)

// Agent tags. The set is closed: registration rejects anything else.
const (
	TagLeadScorer    = "lead_scorer"
	TagProposalGen   = "proposal_gen"
	TagFollowupAgent = "followup_agent"
)

var knownTags = map[string]bool{
	TagLeadScorer:    true,
	TagProposalGen:   true,
	TagFollowupAgent: true,
}

// Generator executes a routed generation call. Satisfied by
// router.Router.
type Generator interface {
	Execute(ctx context.Context, prompt string, genContext map[string]string) router.Response
}

// BiasProvider supplies the per-agent prompt nudge derived from
// feedback statistics.
type BiasProvider interface {
	PromptBias(agent string) string
}

// Deps are the collaborators shared by the built-in executors.
type Deps struct {
	Generator Generator
	Memory    memory.Store
	Bias      BiasProvider
	Logger    *log.Logger
}

// Registry maps agent tags to executors.
type Registry struct {
	executors map[string]dag.Executor
}

// NewRegistry builds a registry holding the three built-in executors.
func NewRegistry(deps Deps) *Registry {
	r := &Registry{executors: make(map[string]dag.Executor, len(knownTags))}
	r.executors[TagLeadScorer] = &Scorer{deps: deps}
	r.executors[TagProposalGen] = &Drafter{deps: deps}
	r.executors[TagFollowupAgent] = &Composer{deps: deps}
	return r
}

// Register installs a custom executor for a known tag. Tags outside
// the closed set are rejected.
func (r *Registry) Register(tag string, exec dag.Executor) error {
	if !knownTags[tag] {
		return fmt.Errorf("unknown agent tag %q", tag)
	}
	r.executors[tag] = exec
	return nil
}

// Lookup returns the executor for a tag.
func (r *Registry) Lookup(agent string) (dag.Executor, bool) {
	exec, ok := r.executors[agent]
	return exec, ok
}

var _ dag.Registry = (*Registry)(nil)
