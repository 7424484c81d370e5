// Package dexscreener implements core.Source over the public DexScreener
// REST API.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/pairwatch/core"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public DexScreener API endpoint.
	DefaultBaseURL = "https://api.dexscreener.com"

	requestTimeout = 10 * time.Second
	maxAttempts    = 3
)

// Client fetches pair snapshots from DexScreener. Calls are rate limited
// client side; transient upstream failures (429, 5xx, transport errors)
// are retried with jittered backoff inside a single fetch.
type Client struct {
	baseURL string
	chainID string
	query   string
	http    *http.Client
	limiter *rate.Limiter
	log     core.Logger
}

// New creates a client from the source settings.
func New(settings core.SourceSettings, log core.Logger) *Client {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		chainID: settings.ChainID,
		query:   settings.Query,
		http:    &http.Client{Timeout: requestTimeout},
		// DexScreener allows 300 requests per minute on this endpoint.
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		log:     log,
	}
}

// FetchPairs implements core.Source. Pairs from other chains are dropped
// when a chain id is configured.
func (c *Client) FetchPairs(ctx context.Context) ([]core.Pair, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/search?q=%s", c.baseURL, url.QueryEscape(c.query))

	var response searchResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	pairs := make([]core.Pair, 0, len(response.Pairs))
	for _, raw := range response.Pairs {
		if c.chainID != "" && raw.ChainID != c.chainID {
			continue
		}
		pairs = append(pairs, raw.toPair())
	}

	c.log.WithFields(map[string]any{
		"total":   len(response.Pairs),
		"matched": len(pairs),
	}).Debug("fetched pair snapshot")

	return pairs, nil
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	retry := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    5 * time.Second,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, retry.Duration()); err != nil {
				return err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retryable, err := c.do(ctx, endpoint, out)
		if err == nil {
			return nil
		}

		lastErr = err
		if !retryable {
			return err
		}

		c.log.WithError(err).Warn("dexscreener request failed, retrying")
	}

	return fmt.Errorf("dexscreener request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) do(ctx context.Context, endpoint string, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
