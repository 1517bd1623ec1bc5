package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/leadflowhq/leadflow/internal/model"
)

// HTTPSender dispatches outbound messages through the tenant's channel
// webhook. The credential address is the endpoint, the secret is its
// bearer token.
type HTTPSender struct {
	client *http.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{client: &http.Client{Timeout: timeout}}
}

type outboundMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *HTTPSender) Send(ctx context.Context, creds model.ChannelCredentials, to, subject, body string) error {
	if creds.Address == "" {
		return ErrNoCredentials
	}

	payload, err := json.Marshal(outboundMessage{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.Address, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if creds.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Secret)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("channel endpoint returned %d", resp.StatusCode)
	}
	return nil
}

var _ Sender = (*HTTPSender)(nil)
