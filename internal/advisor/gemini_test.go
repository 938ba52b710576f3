package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid config", config: Config{APIKey: "test-key"}},
		{name: "missing API key", config: Config{}, wantErr: true},
		{name: "custom model", config: Config{APIKey: "test-key", Model: "gemini-2.0-flash", MaxTokens: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newGeminiClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestGeminiClient_Advise(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	var gotRequest geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-goog-api-key")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Wait a week. "},{"text":"Then decide."}]}}]}`))
	}))
	defer server.Close()

	client, err := newGeminiClient(Config{APIKey: "secret-key", BaseURL: server.URL})
	require.NoError(t, err)

	advice, err := client.Advise(context.Background(), "Should I buy a coffee machine?")
	require.NoError(t, err)

	assert.Equal(t, "Wait a week. Then decide.", advice)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.NotContains(t, gotQuery, "secret-key")
	require.Len(t, gotRequest.Contents, 1)
	assert.Equal(t, "Should I buy a coffee machine?", gotRequest.Contents[0].Parts[0].Text)
	require.NotNil(t, gotRequest.SystemInstruction)
	assert.Equal(t, systemPrompt, gotRequest.SystemInstruction.Parts[0].Text)
}

func TestGeminiClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantKind  error
		status    int
		retryable bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantKind: common.ErrTransport, retryable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantKind: common.ErrRateLimit, retryable: true},
		{name: "bad key", status: http.StatusForbidden, body: `{"error":"denied"}`},
		{name: "blocked", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`},
		{name: "empty candidates", status: http.StatusOK, body: `{"candidates":[]}`},
		{name: "blank text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newGeminiClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Advise(context.Background(), "prompt")
			require.Error(t, err)
			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			}
			assert.Equal(t, tt.retryable, common.IsRetryable(err))
		})
	}
}

func TestGeminiClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := newGeminiClient(Config{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = client.Advise(context.Background(), "prompt")
	assert.ErrorIs(t, err, common.ErrTransport)
}
