package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/myrjola/lastbroadcast/internal/ai"
	"github.com/myrjola/lastbroadcast/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientSelectsOfflineWithoutKey(t *testing.T) {
	logger := testhelpers.NewLogger(io.Discard)

	client := ai.NewClient(ai.Options{APIKey: ""}, logger)
	_, offline := client.(*ai.OfflineClient)
	assert.True(t, offline)

	client = ai.NewClient(ai.Options{APIKey: "key", Model: "mistral-large-latest"}, logger)
	_, live := client.(*ai.LiveClient)
	assert.True(t, live)
}

func TestOfflineClientReturnsValidCallerJSON(t *testing.T) {
	client := ai.NewOfflineClient()

	raw, err := client.Complete(context.Background(), "any prompt")
	require.NoError(t, err)

	var payload struct {
		ID              string  `json:"id"`
		Name            string  `json:"name"`
		Archetype       string  `json:"archetype"`
		Trustworthiness float64 `json:"trustworthiness"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.NotEmpty(t, payload.ID)
	assert.NotEmpty(t, payload.Name)
	assert.Equal(t, "scared_kid", payload.Archetype)
	assert.InDelta(t, 0.7, payload.Trustworthiness, 0.001)
}

// newBackend serves the chat-completions endpoint, failing the first
// failures requests with a 500 before answering with content.
func newBackend(t *testing.T, failures int64, content string) (*httptest.Server, *int64) {
	t.Helper()
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&requests, 1)
		w.Header().Set("Content-Type", "application/json")
		if n <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "backend exploded", "type": "server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1", "object": "chat.completion", "created": 1, "model": "test",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": ` + content + `}}]
		}`))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestLiveClientRetriesThenSucceeds(t *testing.T) {
	server, requests := newBackend(t, 2, `"still here"`)
	client := ai.NewClient(ai.Options{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test",
	}, testhelpers.NewLogger(io.Discard))

	out, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "still here", out)
	assert.EqualValues(t, 3, atomic.LoadInt64(requests))
}

func TestLiveClientGivesUpAfterRetries(t *testing.T) {
	server, requests := newBackend(t, 999, "")
	client := ai.NewClient(ai.Options{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test",
	}, testhelpers.NewLogger(io.Discard))

	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt64(requests))
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ai.CleanJSON(tt.in))
		})
	}
}
