package advisor

import (
	"context"
	"time"
)

// Client is a single advisory provider.
type Client interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// Provider names accepted in Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderHeuristic = "heuristic"
)

// Config holds configuration for the advisory client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

const systemPrompt = "You are a careful personal finance coach. The user is deciding whether to make a purchase. " +
	"Reply in plain text without markdown, in at most three sentences."

func temperatureOrDefault(t float64) float64 {
	if t == 0 {
		return 0.4
	}
	return t
}

func maxTokensOrDefault(n int) int {
	if n == 0 {
		return 256
	}
	return n
}
