package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPInvoker executes prompts against per-target HTTP generation
// endpoints speaking a simple JSON protocol: {"model","prompt","stream"}
// in, one of {"output","response","text"} out.
type HTTPInvoker struct {
	endpoints map[Target]string
	client    *http.Client
}

func NewHTTPInvoker(endpoints map[Target]string, timeout time.Duration) *HTTPInvoker {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPInvoker{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Output   string `json:"output"`
	Response string `json:"response"`
	Text     string `json:"text"`
}

func (i *HTTPInvoker) Invoke(ctx context.Context, target Target, prompt, systemPrompt string) (string, error) {
	endpoint, ok := i.endpoints[target]
	if !ok || endpoint == "" {
		return "", fmt.Errorf("no endpoint configured for target %q", target)
	}

	finalPrompt := prompt
	if systemPrompt != "" {
		finalPrompt = strings.TrimSpace(systemPrompt) + "\n\n" + prompt
	}

	body, err := json.Marshal(generateRequest{Model: string(target), Prompt: finalPrompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation endpoint returned %d", resp.StatusCode)
	}

	var payload generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, candidate := range []string{payload.Output, payload.Response, payload.Text} {
		if candidate != "" {
			return strings.TrimSpace(candidate), nil
		}
	}
	return "", fmt.Errorf("generation endpoint returned an empty payload")
}

var _ Invoker = (*HTTPInvoker)(nil)
