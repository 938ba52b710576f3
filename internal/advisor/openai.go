package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// openAIClient implements the Client interface for OpenAI API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperatureOrDefault(cfg.Temperature),
		maxTokens:   maxTokensOrDefault(cfg.MaxTokens),
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

// Advise sends the prompt to the chat completions endpoint.
func (c *openAIClient) Advise(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var response openAIResponse
	if err := postJSON(ctx, c.httpClient, "OpenAI", c.baseURL+"/v1/chat/completions", headers, requestBody, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
