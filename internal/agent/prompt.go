package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leadflowhq/leadflow/internal/memory"
	"github.com/leadflowhq/leadflow/internal/model"
)

const snippetMaxLen = 280

// leadFields pulls the lead identity out of a task input, accepting
// both the structured type and the generic map a graph context yields.
func leadFields(v any) (lead *model.Lead, ok bool) {
	switch l := v.(type) {
	case *model.Lead:
		return l, true
	case model.Lead:
		return &l, true
	case map[string]any:
		lead := &model.Lead{}
		lead.ID, _ = l["id"].(string)
		lead.Name, _ = l["name"].(string)
		lead.Email, _ = l["email"].(string)
		lead.Message, _ = l["message"].(string)
		if lead.Name == "" && lead.Email == "" && lead.Message == "" {
			return nil, false
		}
		return lead, true
	default:
		return nil, false
	}
}

// formatSnippets renders retrieved interactions as a bulleted context
// block for a prompt.
func formatSnippets(snippets []memory.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		text := strings.ReplaceAll(strings.TrimSpace(s.Text), "\n", " ")
		if len(text) > snippetMaxLen {
			text = text[:snippetMaxLen] + "..."
		}
		label := s.Metadata["lead_name"]
		if label == "" {
			label = s.Metadata["lead_id"]
		}
		if label == "" {
			label = "Lead"
		}
		line := fmt.Sprintf("- %s: %s", label, text)
		if outcome := s.Metadata["outcome"]; outcome != "" {
			line += " | Outcome: " + outcome
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// extractScore parses a generation answer into a [0,1] score. Accepts
// either a JSON object with a "score" field or a bare number.
func extractScore(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)

	var payload struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err == nil && payload.Score != nil {
		if *payload.Score >= 0 && *payload.Score <= 1 {
			return *payload.Score, true
		}
		return 0, false
	}

	if score, err := strconv.ParseFloat(raw, 64); err == nil && score >= 0 && score <= 1 {
		return score, true
	}
	return 0, false
}

// heuristicScore is the deterministic fallback when no generation
// backend produced a usable score.
func heuristicScore(message string) float64 {
	text := strings.ToLower(message)
	score := 0.25
	if strings.Contains(text, "budget") || strings.Contains(text, "$") {
		score += 0.15
	}
	for _, k := range []string{"timeline", "deadline", "launch", "ship"} {
		if strings.Contains(text, k) {
			score += 0.15
			break
		}
	}
	for _, k := range []string{"urgent", "asap", "rush"} {
		if strings.Contains(text, k) {
			score += 0.1
			break
		}
	}
	score += 0.25 * math.Tanh(float64(len(message))/300.0)
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*1000) / 1000
}

// fallbackProposal is the deterministic draft used when the generation
// backend is unavailable.
func fallbackProposal(name, message, contextBlock, bias string) string {
	summary := strings.TrimSpace(message)
	if summary == "" {
		summary = "No additional context provided."
	}
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	if bias != "" {
		b.WriteString(strings.TrimSpace(bias) + "\n\n")
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	b.WriteString("Thanks for reaching out. Here's a quick proposal based on what you've shared:\n\n")
	fmt.Fprintf(&b, "Summary of your request:\n%s\n\n", summary)
	if contextBlock != "" {
		fmt.Fprintf(&b, "Similar engagements:\n%s\n\n", contextBlock)
	}
	b.WriteString("Scope:\n")
	b.WriteString("- Kickoff session to confirm goals and success metrics.\n")
	b.WriteString("- Implement a focused MVP addressing the top priority.\n")
	b.WriteString("- Provide documentation and walkthrough at handoff.\n\n")
	b.WriteString("Timeline: 2-4 weeks with weekly progress check-ins.\n")
	b.WriteString("Investment: Fixed project fee with milestone-based bonus for hitting stretch goals.\n\n")
	b.WriteString("Let me know if you have questions or adjustments. Once you approve, I'll send a formal agreement.")
	return b.String()
}

// fallbackFollowup is the deterministic follow-up used when the
// generation backend is unavailable.
func fallbackFollowup(name string, daysAfter int, lastMessage string) string {
	if name == "" {
		name = "there"
	}
	last := strings.TrimSpace(lastMessage)
	if last == "" {
		last = "No additional context provided."
	}
	return fmt.Sprintf(
		"Hi %s,\n\nHope you're well. I wanted to check in since it's been about %d days since we shared the proposal. "+
			"Happy to adjust scope or timelines based on the details you mentioned:\n%s\n\n"+
			"Let me know what feels like the right next step.",
		name, daysAfter, last)
}
