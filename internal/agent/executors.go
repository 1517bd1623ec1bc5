package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadflowhq/leadflow/internal/router"
)

// Per-call accounting costs, in dollars.
const (
	scorerCost   = 0.002
	drafterCost  = 0.003
	composerCost = 0.001
)

const defaultFollowupDays = 3

// Scorer rates an inbound lead between 0 and 1.
type Scorer struct {
	deps Deps
}

func (s *Scorer) Execute(ctx context.Context, inputs map[string]any, _ map[string]any) (map[string]any, float64, error) {
	lead, ok := leadFields(inputs["lead"])
	if !ok {
		return nil, 0, fmt.Errorf("lead_scorer: missing or malformed %q input", "lead")
	}

	contextBlock := s.retrieveContext(ctx, lead.Message)

	var b strings.Builder
	b.WriteString("You classify inbound leads. Return JSON like {\"score\": 0.0-1.0}. ")
	b.WriteString("Score higher when the prospect mentions budget, timeline, or clear intent to start. ")
	b.WriteString("Score lower when intent is vague or exploratory.\n\n")
	if contextBlock != "" {
		fmt.Fprintf(&b, "Recent outcomes:\n%s\n\n", contextBlock)
	}
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nMessage: %s", lead.Name, lead.Email, lead.Message)

	resp := s.deps.Generator.Execute(ctx, b.String(), map[string]string{
		"agent":                      TagLeadScorer,
		router.ContextExpectedTokens: "40",
	})
	if resp.Error == "" {
		if score, ok := extractScore(resp.Output); ok {
			return map[string]any{"score": score}, scorerCost, nil
		}
	}

	return map[string]any{"score": heuristicScore(lead.Message)}, scorerCost, nil
}

func (s *Scorer) retrieveContext(ctx context.Context, query string) string {
	if s.deps.Memory == nil {
		return ""
	}
	snippets, err := s.deps.Memory.Retrieve(ctx, TagLeadScorer, query, 3)
	if err != nil {
		s.deps.Logger.Printf("[WARN] memory_retrieve_failed agent=%s err=%v", TagLeadScorer, err)
		return ""
	}
	return formatSnippets(snippets)
}

// Drafter writes a proposal email body for a lead.
type Drafter struct {
	deps Deps
}

func (d *Drafter) Execute(ctx context.Context, inputs map[string]any, _ map[string]any) (map[string]any, float64, error) {
	lead, ok := leadFields(inputs["lead"])
	if !ok {
		return nil, 0, fmt.Errorf("proposal_gen: missing or malformed %q input", "lead")
	}

	var bias string
	if d.deps.Bias != nil {
		bias = d.deps.Bias.PromptBias(TagProposalGen)
	}
	contextBlock := d.retrieveContext(ctx, lead.Message)

	var b strings.Builder
	if bias != "" {
		b.WriteString(strings.TrimSpace(bias) + "\n\n")
	}
	b.WriteString("Write a concise, friendly service proposal email. ")
	b.WriteString("Cover scope, timeline, and investment, and close with a clear next step.\n\n")
	if contextBlock != "" {
		fmt.Fprintf(&b, "Similar engagements:\n%s\n\n", contextBlock)
	}
	fmt.Fprintf(&b, "Prospect: %s\nInquiry: %s", lead.Name, lead.Message)

	resp := d.deps.Generator.Execute(ctx, b.String(), map[string]string{"agent": TagProposalGen})
	text := resp.Output
	if resp.Error != "" || strings.TrimSpace(text) == "" {
		text = fallbackProposal(lead.Name, lead.Message, contextBlock, bias)
	}
	return map[string]any{"proposal": text}, drafterCost, nil
}

func (d *Drafter) retrieveContext(ctx context.Context, query string) string {
	if d.deps.Memory == nil {
		return ""
	}
	snippets, err := d.deps.Memory.Retrieve(ctx, TagProposalGen, query, 5)
	if err != nil {
		d.deps.Logger.Printf("[WARN] memory_retrieve_failed agent=%s err=%v", TagProposalGen, err)
		return ""
	}
	return formatSnippets(snippets)
}

// Composer writes a follow-up message after a proposal went out.
type Composer struct {
	deps Deps
}

func (c *Composer) Execute(ctx context.Context, inputs map[string]any, _ map[string]any) (map[string]any, float64, error) {
	lead, ok := leadFields(inputs["lead"])
	if !ok {
		return nil, 0, fmt.Errorf("followup_agent: missing or malformed %q input", "lead")
	}

	daysAfter := defaultFollowupDays
	switch v := inputs["days_after"].(type) {
	case int:
		daysAfter = v
	case float64:
		daysAfter = int(v)
	}

	var b strings.Builder
	b.WriteString("Draft a friendly follow-up email to a prospect after sending a proposal. ")
	b.WriteString("Reference the original request, offer to adjust scope or timing, and keep it under 180 words.\n\n")
	fmt.Fprintf(&b, "Prospect: %s\nDays since proposal: %d\nOriginal inquiry: %s", lead.Name, daysAfter, lead.Message)

	resp := c.deps.Generator.Execute(ctx, b.String(), map[string]string{"agent": TagFollowupAgent})
	text := resp.Output
	if resp.Error != "" || strings.TrimSpace(text) == "" {
		text = fallbackFollowup(lead.Name, daysAfter, lead.Message)
	}
	return map[string]any{"followup": text}, composerCost, nil
}
