package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Advise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		_, _ = w.Write([]byte(`{"id":"1","model":"gpt-4o-mini","choices":[{"message":{"role":"assistant","content":" Sleep on it. "}}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	advice, err := client.Advise(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Sleep on it.", advice)
}

func TestAnthropicClient_Advise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Buy it if it replaces daily cafe visits."}]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	advice, err := client.Advise(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Buy it if it replaces daily cafe visits.", advice)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantNil  bool
		wantErr  bool
	}{
		{name: "gemini", provider: "gemini"},
		{name: "openai", provider: "OpenAI"},
		{name: "anthropic", provider: "anthropic"},
		{name: "heuristic", provider: "heuristic", wantNil: true},
		{name: "empty", provider: "", wantNil: true},
		{name: "unknown", provider: "palm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{Provider: tt.provider, APIKey: "k"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, client)
			} else {
				assert.NotNil(t, client)
			}
		})
	}
}
