package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/internal/model"
)

func TestHTTPSenderPostsMessage(t *testing.T) {
	var got outboundMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewHTTPSender(time.Second)
	creds := model.ChannelCredentials{OwnerID: "org-1", Address: srv.URL, Secret: "tok"}
	err := sender.Send(context.Background(), creds, "founder@acme.io", "Proposal for Acme", "body text")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "founder@acme.io", got.To)
	assert.Equal(t, "Proposal for Acme", got.Subject)
}

func TestHTTPSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewHTTPSender(time.Second)
	err := sender.Send(context.Background(), model.ChannelCredentials{Address: srv.URL}, "a@b.c", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPSenderMissingAddress(t *testing.T) {
	sender := NewHTTPSender(time.Second)
	err := sender.Send(context.Background(), model.ChannelCredentials{}, "a@b.c", "s", "b")
	assert.True(t, errors.Is(err, ErrNoCredentials))
}
