package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// geminiClient implements the Client interface for the Gemini generateContent API.
type geminiClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &geminiClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperatureOrDefault(cfg.Temperature),
		maxTokens:   maxTokensOrDefault(cfg.MaxTokens),
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent `json:"systemInstruction,omitempty"`
	GenerationConfig  map[string]any `json:"generationConfig,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

// geminiResponse represents the generateContent response structure.
type geminiResponse struct {
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Candidates []struct {
		FinishReason string        `json:"finishReason"`
		Content      geminiContent `json:"content"`
	} `json:"candidates"`
}

// Advise sends the prompt to Gemini. The key travels in a header so it never
// ends up in URLs or access logs.
func (c *geminiClient) Advise(ctx context.Context, prompt string) (string, error) {
	request := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: map[string]any{
			"temperature":     c.temperature,
			"maxOutputTokens": c.maxTokens,
		},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	var response geminiResponse
	if err := postJSON(ctx, c.httpClient, "gemini", url, headers, request, &response); err != nil {
		return "", err
	}

	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", response.PromptFeedback.BlockReason)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("no response from gemini")
	}
	return text, nil
}
