// Package router selects an execution target for a text-generation
// call, executes it, and memoizes idempotent results.
package router

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/leadflowhq/leadflow/internal/model"
)

// Target identifies a generation backend.
type Target string

const (
	// TargetLocal is the cheapest default backend.
	TargetLocal Target = "local"
	// TargetFast serves short prompts and low token budgets.
	TargetFast Target = "fast"
	// TargetReasoning serves high-stakes prompts.
	TargetReasoning Target = "reasoning"
)

var knownTargets = map[Target]bool{
	TargetLocal:     true,
	TargetFast:      true,
	TargetReasoning: true,
}

// Context keys recognized by the router.
const (
	ContextExpectedTokens = "expected_tokens"
	ContextSystemPrompt   = "system_prompt"
)

const fallbackSnippetLen = 240

// Invoker executes a prompt against a concrete backend. Implementations
// are expected to be I/O-bound and honor ctx cancellation.
type Invoker interface {
	Invoke(ctx context.Context, target Target, prompt, systemPrompt string) (string, error)
}

// Response is the result of one routed generation call.
type Response struct {
	Target Target `json:"target"`
	Output string `json:"output"`
	Cached bool   `json:"cached"`
	// Error carries the backend failure text when the output is the
	// degraded fallback; empty on clean executions.
	Error string `json:"error,omitempty"`
}

// Router picks a target per request and caches results keyed by a
// content hash of the prompt and context.
type Router struct {
	invoker          Invoker
	cache            *responseCache
	shortPromptChars int
	lowTokenBudget   int
	keywords         []string
	logger           *log.Logger
}

func New(invoker Invoker, cfg model.RouterConfig, logger *log.Logger) *Router {
	shortPromptChars := cfg.ShortPromptChars
	if shortPromptChars <= 0 {
		shortPromptChars = 500
	}
	lowTokenBudget := cfg.LowTokenBudget
	if lowTokenBudget <= 0 {
		lowTokenBudget = 200
	}
	keywords := cfg.EscalateKeywords
	if len(keywords) == 0 {
		keywords = []string{"financial", "strategic"}
	}
	return &Router{
		invoker:          invoker,
		cache:            newResponseCache(cfg.CacheSize),
		shortPromptChars: shortPromptChars,
		lowTokenBudget:   lowTokenBudget,
		keywords:         keywords,
		logger:           logger,
	}
}

// Execute routes the prompt to the best-fit target, executes it, and
// caches the response. A response is always returned: backend failures
// degrade to a deterministic truncated-echo answer.
func (r *Router) Execute(ctx context.Context, prompt string, genContext map[string]string) Response {
	key := cacheKey(prompt, genContext)
	if cached, ok := r.cache.Get(key); ok {
		return Response{Target: cached.target, Output: cached.output, Cached: true}
	}

	target := r.selectTarget(prompt, genContext)

	var systemPrompt string
	if genContext != nil {
		systemPrompt = genContext[ContextSystemPrompt]
	}

	output, err := r.invoker.Invoke(ctx, target, prompt, systemPrompt)
	resp := Response{Target: target, Output: output}
	if err != nil {
		r.logger.Printf("[ERROR] generation_failed target=%s err=%v", target, err)
		resp = Response{
			Target: TargetLocal,
			Output: fallbackResponse(prompt),
			Error:  err.Error(),
		}
	}

	r.cache.Set(key, cachedResponse{output: resp.Output, target: resp.Target})
	return resp
}

// selectTarget applies the routing rules: local by default, fast for
// short prompts or low expected-token budgets, reasoning when a
// high-stakes keyword appears. The keyword escalation takes precedence
// over the short-prompt fast path.
func (r *Router) selectTarget(prompt string, genContext map[string]string) Target {
	target := TargetLocal

	if len(prompt) < r.shortPromptChars || r.lowExpectedTokens(genContext) {
		target = TargetFast
	}
	if r.containsKeyword(prompt) {
		target = TargetReasoning
	}

	// Collapse anything unexpected back to the default target.
	if !knownTargets[target] {
		target = TargetLocal
	}
	return target
}

func (r *Router) lowExpectedTokens(genContext map[string]string) bool {
	if genContext == nil {
		return false
	}
	expected, err := strconv.Atoi(genContext[ContextExpectedTokens])
	if err != nil {
		return false
	}
	return expected > 0 && expected < r.lowTokenBudget
}

func (r *Router) containsKeyword(prompt string) bool {
	lowered := strings.ToLower(prompt)
	for _, keyword := range r.keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// cacheKey hashes the prompt and the full context map. Keys are sorted
// so the hash is independent of map iteration order.
func cacheKey(prompt string, genContext map[string]string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte{0})

	keys := make([]string, 0, len(genContext))
	for k := range genContext {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(genContext[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fallbackResponse(prompt string) string {
	snippet := strings.TrimSpace(prompt)
	if len(snippet) > fallbackSnippetLen {
		snippet = snippet[:fallbackSnippetLen-3] + "..."
	}
	return "Generation is currently unavailable. Here is a truncated echo of your request:\n\n" + snippet
}
