package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Veraticus/ponder/internal/common"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// postJSON sends body to url and decodes a 200 response into out. Failures are
// classified so the retry wrapper knows which ones are worth repeating.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s request failed: %w", common.ErrTransport, provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s response: %w", common.ErrTransport, provider, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s API (status %d): %s", common.ErrRateLimit, provider, resp.StatusCode, truncate(respBody))
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s API error (status %d): %s", common.ErrTransport, provider, resp.StatusCode, truncate(respBody))
	case resp.StatusCode != http.StatusOK:
		return &common.RetryableError{
			Err:       fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, truncate(respBody)),
			Retryable: false,
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", provider, err)
	}
	return nil
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
