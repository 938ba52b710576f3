package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// anthropicClient implements the Client interface for Anthropic API.
type anthropicClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	return &anthropicClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperatureOrDefault(cfg.Temperature),
		maxTokens:   maxTokensOrDefault(cfg.MaxTokens),
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

// anthropicResponse represents the Anthropic messages API response structure.
type anthropicResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Advise sends the prompt to the messages endpoint.
func (c *anthropicClient) Advise(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"system":      systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var response anthropicResponse
	if err := postJSON(ctx, c.httpClient, "anthropic", c.baseURL+"/v1/messages", headers, requestBody, &response); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range response.Content {
		if block.Type == "" || block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return strings.TrimSpace(b.String()), nil
}
