package feedback

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	insightsWindow      = 500
	topIssuesPerAgent   = 5
	topKeywordsPerAgent = 8
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// IssueCount is one issue category frequency for an agent.
type IssueCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// AgentInsights summarizes recent feedback for one agent.
type AgentInsights struct {
	Agent    string       `json:"agent"`
	Total    int          `json:"total"`
	Issues   []IssueCount `json:"issues"`
	Keywords []string     `json:"keywords"`
}

// Insights groups recent feedback by inferred agent and issue type for
// human review. Read-only; model weights are untouched.
func (l *Loop) Insights(ctx context.Context, ownerID string) ([]AgentInsights, error) {
	entries, err := l.store.ListFeedback(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	// Most recent window only; ListFeedback returns oldest-first.
	if len(entries) > insightsWindow {
		entries = entries[len(entries)-insightsWindow:]
	}

	issueCounts := make(map[string]map[string]int)
	keywordCounts := make(map[string]map[string]int)
	for _, entry := range entries {
		agent := InferAgent(entry)
		issue := entry.Type
		if issue == "" {
			issue = "general"
		}
		if issueCounts[agent] == nil {
			issueCounts[agent] = make(map[string]int)
			keywordCounts[agent] = make(map[string]int)
		}
		issueCounts[agent][issue]++
		for _, word := range wordPattern.FindAllString(strings.ToLower(entry.Comment), -1) {
			keywordCounts[agent][word]++
		}
	}

	summaries := make([]AgentInsights, 0, len(issueCounts))
	for agent, issues := range issueCounts {
		total := 0
		for _, count := range issues {
			total += count
		}
		summaries = append(summaries, AgentInsights{
			Agent:    agent,
			Total:    total,
			Issues:   topIssues(issues, topIssuesPerAgent),
			Keywords: topKeywords(keywordCounts[agent], topKeywordsPerAgent),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Total != summaries[j].Total {
			return summaries[i].Total > summaries[j].Total
		}
		return summaries[i].Agent < summaries[j].Agent
	})
	return summaries, nil
}

func topIssues(counts map[string]int, n int) []IssueCount {
	issues := make([]IssueCount, 0, len(counts))
	for issueType, count := range counts {
		issues = append(issues, IssueCount{Type: issueType, Count: count})
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Count != issues[j].Count {
			return issues[i].Count > issues[j].Count
		}
		return issues[i].Type < issues[j].Type
	})
	if len(issues) > n {
		issues = issues[:n]
	}
	return issues
}

func topKeywords(counts map[string]int, n int) []string {
	type kw struct {
		word  string
		count int
	}
	words := make([]kw, 0, len(counts))
	for word, count := range counts {
		words = append(words, kw{word, count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].count != words[j].count {
			return words[i].count > words[j].count
		}
		return words[i].word < words[j].word
	})
	if len(words) > n {
		words = words[:n]
	}
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.word
	}
	return out
}
