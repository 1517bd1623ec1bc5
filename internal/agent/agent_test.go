package agent

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/internal/memory"
	"github.com/leadflowhq/leadflow/internal/model"
	"github.com/leadflowhq/leadflow/internal/router"
)

type stubGenerator struct {
	lastPrompt string
	resp       router.Response
}

func (g *stubGenerator) Execute(_ context.Context, prompt string, _ map[string]string) router.Response {
	g.lastPrompt = prompt
	return g.resp
}

type stubMemory struct {
	snippets []memory.Snippet
	saved    int
}

func (m *stubMemory) Save(context.Context, string, *model.Lead, string, string) error {
	m.saved++
	return nil
}

func (m *stubMemory) Retrieve(context.Context, string, string, int) ([]memory.Snippet, error) {
	return m.snippets, nil
}

type stubBias string

func (b stubBias) PromptBias(string) string { return string(b) }

func testDeps(gen Generator) Deps {
	return Deps{
		Generator: gen,
		Memory:    &stubMemory{},
		Bias:      stubBias(""),
		Logger:    log.New(io.Discard, "", 0),
	}
}

func testLeadInput() map[string]any {
	return map[string]any{
		"id":      "lead_1",
		"name":    "Acme Founder",
		"email":   "founder@acme.io",
		"message": "We need an MVP in four weeks with a $10k budget.",
	}
}

func TestRegistryClosedTagSet(t *testing.T) {
	r := NewRegistry(testDeps(&stubGenerator{}))

	for _, tag := range []string{TagLeadScorer, TagProposalGen, TagFollowupAgent} {
		_, ok := r.Lookup(tag)
		assert.True(t, ok, "built-in tag %s should resolve", tag)
	}

	_, ok := r.Lookup("mystery_agent")
	assert.False(t, ok)

	err := r.Register("mystery_agent", &Scorer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown agent tag")

	assert.NoError(t, r.Register(TagLeadScorer, &Scorer{deps: testDeps(&stubGenerator{})}))
}

func TestScorerParsesGeneratedScore(t *testing.T) {
	gen := &stubGenerator{resp: router.Response{Output: `{"score": 0.81}`}}
	scorer := &Scorer{deps: testDeps(gen)}

	out, cost, err := scorer.Execute(context.Background(), map[string]any{"lead": testLeadInput()}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.81, out["score"])
	assert.Equal(t, scorerCost, cost)
	assert.Contains(t, gen.lastPrompt, "Acme Founder")
	assert.Contains(t, gen.lastPrompt, "founder@acme.io")
}

func TestScorerFallsBackToHeuristic(t *testing.T) {
	gen := &stubGenerator{resp: router.Response{Output: "backend degraded", Error: "backend down"}}
	scorer := &Scorer{deps: testDeps(gen)}

	out, _, err := scorer.Execute(context.Background(), map[string]any{"lead": testLeadInput()}, nil)
	require.NoError(t, err)

	score := out["score"].(float64)
	assert.Greater(t, score, 0.4, "budget plus timeline message should score well")
	assert.LessOrEqual(t, score, 1.0)
}

func TestScorerRejectsMissingLead(t *testing.T) {
	scorer := &Scorer{deps: testDeps(&stubGenerator{})}
	_, _, err := scorer.Execute(context.Background(), map[string]any{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead")
}

func TestDrafterPrependsBiasAndContext(t *testing.T) {
	gen := &stubGenerator{resp: router.Response{Output: "Dear Acme, here is the plan."}}
	deps := testDeps(gen)
	deps.Bias = stubBias("System reminder: keep tone concise.")
	deps.Memory = &stubMemory{snippets: []memory.Snippet{
		{Text: "Shipped an MVP for a fintech startup.", Metadata: map[string]string{"lead_name": "FinCo", "outcome": "won"}},
	}}
	drafter := &Drafter{deps: deps}

	out, cost, err := drafter.Execute(context.Background(), map[string]any{"lead": testLeadInput()}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Dear Acme, here is the plan.", out["proposal"])
	assert.Equal(t, drafterCost, cost)
	assert.True(t, strings.HasPrefix(gen.lastPrompt, "System reminder:"), "bias goes first in the prompt")
	assert.Contains(t, gen.lastPrompt, "FinCo")
	assert.Contains(t, gen.lastPrompt, "Outcome: won")
}

func TestDrafterFallbackOnGenerationError(t *testing.T) {
	gen := &stubGenerator{resp: router.Response{Output: "echo", Error: "backend down"}}
	drafter := &Drafter{deps: testDeps(gen)}

	out, _, err := drafter.Execute(context.Background(), map[string]any{"lead": testLeadInput()}, nil)
	require.NoError(t, err)

	proposal := out["proposal"].(string)
	assert.Contains(t, proposal, "Hi Acme Founder")
	assert.Contains(t, proposal, "Scope:")
	assert.Contains(t, proposal, "$10k budget")
}

func TestComposerDefaultsDaysAfter(t *testing.T) {
	gen := &stubGenerator{resp: router.Response{Error: "backend down"}}
	composer := &Composer{deps: testDeps(gen)}

	out, cost, err := composer.Execute(context.Background(), map[string]any{"lead": testLeadInput()}, nil)
	require.NoError(t, err)

	followup := out["followup"].(string)
	assert.Contains(t, followup, "about 3 days")
	assert.Equal(t, composerCost, cost)
}

func TestComposerHonorsDaysAfterInput(t *testing.T) {
	gen := &stubGenerator{resp: router.Response{Error: "backend down"}}
	composer := &Composer{deps: testDeps(gen)}

	inputs := map[string]any{"lead": testLeadInput(), "days_after": 7}
	out, _, err := composer.Execute(context.Background(), inputs, nil)
	require.NoError(t, err)
	assert.Contains(t, out["followup"].(string), "about 7 days")
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`{"score": 0.75}`, 0.75, true},
		{`0.4`, 0.4, true},
		{` 0.9 `, 0.9, true},
		{`{"score": 1.5}`, 0, false},
		{`-0.2`, 0, false},
		{`not a number`, 0, false},
		{`{"other": 1}`, 0, false},
	}
	for _, tt := range tests {
		got, ok := extractScore(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		}
	}
}

func TestHeuristicScoreBounds(t *testing.T) {
	assert.Less(t, heuristicScore("hi"), 0.3)

	rich := "Urgent: we have a $50k budget and a hard launch deadline next month. " + strings.Repeat("Details. ", 40)
	assert.Greater(t, heuristicScore(rich), 0.7)
	assert.LessOrEqual(t, heuristicScore(rich), 1.0)
}
