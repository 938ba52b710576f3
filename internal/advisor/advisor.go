package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/service"
)

// Advisor implements service.Advisor on top of a provider Client, adding
// retries, rate limiting and caching.
type Advisor struct {
	client      Client
	cache       *adviceCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	provider    string
	retryOpts   service.RetryOptions
}

// New creates an advisor for cfg. For the heuristic provider it returns nil
// and no error; the workflow then uses its offline advice.
func New(cfg Config, logger *slog.Logger) (*Advisor, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory client: %w", err)
	}
	if client == nil {
		return nil, nil
	}
	return newAdvisor(client, cfg, logger), nil
}

func newAdvisor(client Client, cfg Config, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 500 * time.Millisecond
	}

	return &Advisor{
		client:      client,
		provider:    cfg.Provider,
		cache:       newAdviceCache(cfg.CacheTTL),
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Advise returns advice for prompt, retrying transient failures.
func (a *Advisor) Advise(ctx context.Context, prompt string) (string, error) {
	if advice, ok := a.cache.get(prompt); ok {
		a.logger.Debug("advice cache hit", "provider", a.provider)
		return advice, nil
	}

	var advice string
	err := common.WithRetry(ctx, func() error {
		if err := a.rateLimiter.wait(ctx); err != nil {
			return err
		}
		var adviseErr error
		advice, adviseErr = a.client.Advise(ctx, prompt)
		return adviseErr
	}, a.retryOpts)
	if err != nil {
		return "", fmt.Errorf("advisory request failed: %w", err)
	}

	a.cache.set(prompt, advice)
	a.logger.Info("advice generated", "provider", a.provider, "chars", len(advice))
	return advice, nil
}

// Close releases the rate limiter's background goroutine.
func (a *Advisor) Close() {
	a.rateLimiter.Close()
}
