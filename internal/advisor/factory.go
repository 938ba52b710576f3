package advisor

import (
	"fmt"
	"strings"
)

// NewClient creates a raw provider client based on the provided configuration.
// The heuristic provider has no client; callers get nil and use the offline
// advice instead.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		return newGeminiClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderHeuristic, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported advisory provider: %s", cfg.Provider)
	}
}
