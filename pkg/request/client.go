package request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"chronoscope/pkg/cache"
	"chronoscope/pkg/config"
	"chronoscope/pkg/tracker"
	"chronoscope/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("Chronoscope/%s (https://github.com/chronoscope; historical scene explorer)", version.Version)

// Client handles outbound HTTP requests with per-provider queuing, pacing,
// caching and usage tracking. Providers with strict usage policies (Nominatim
// asks for at most one request per second) get a single worker and a rate
// limiter, so callers can fire requests freely.
type Client struct {
	httpClient *http.Client
	cache      cache.Cacher
	tracker    *tracker.Tracker

	retries   int
	baseDelay time.Duration
	maxDelay  time.Duration
	limit     rate.Limit

	// Queues per provider (domain)
	queues map[string]chan job
	mu     sync.Mutex // Protects queues map
}

// job represents a queued request.
type job struct {
	req      *http.Request
	headers  map[string]string
	cacheKey string
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client.
func New(cfg config.RequestConfig, c cache.Cacher, t *tracker.Tracker) *Client {
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	baseDelay := time.Duration(cfg.Backoff.BaseDelay)
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	maxDelay := time.Duration(cfg.Backoff.MaxDelay)
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	limit := rate.Limit(cfg.RatePerSecond)
	if limit <= 0 {
		limit = rate.Inf
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		tracker:    t,
		retries:    retries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		limit:      limit,
		queues:     make(map[string]chan job),
	}
}

// Get performs a GET request with queuing and caching if key is provided.
func (c *Client) Get(ctx context.Context, u, cacheKey string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil, cacheKey)
}

// GetWithHeaders performs a GET request with custom headers and optional caching.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string, cacheKey string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	// 1. Check Cache (Only if key is provided)
	if cacheKey != "" {
		if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
			c.tracker.TrackCacheHit(provider)
			slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
			return val, nil
		}
		c.tracker.TrackCacheMiss(provider)
		slog.Debug("Cache Miss", "provider", provider, "key", cacheKey)
	}

	// 2. Enqueue Request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respChan := make(chan jobResult, 1)
	c.dispatch(provider, job{req: req, headers: headers, cacheKey: cacheKey, respChan: respChan})

	// 3. Wait for Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

func normalizeProvider(host string) string {
	// Group Nominatim mirrors and subdomains into one provider so its usage
	// policy is enforced across all of them.
	if strings.HasSuffix(host, "openstreetmap.org") {
		return "nominatim"
	}
	if strings.HasSuffix(host, "googleapis.com") {
		return "gemini"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the queue/worker if needed.
func (c *Client) dispatch(provider string, j job) {
	c.mu.Lock()
	q, ok := c.queues[provider]
	if !ok {
		// Create new queue and start worker
		q = make(chan job, 100)
		c.queues[provider] = q
		go c.worker(provider, q)
	}
	c.mu.Unlock()

	// We block here if the queue is full, effectively throttling the caller
	select {
	case q <- j:
	case <-j.req.Context().Done():
		// Caller gave up before we could even enqueue
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for a specific provider sequentially, paced by
// the provider rate limit.
func (c *Client) worker(provider string, q <-chan job) {
	limiter := rate.NewLimiter(c.limit, 1)

	for j := range q {
		// Check context before processing
		if j.req.Context().Err() != nil {
			slog.Warn("Job dropped from queue (context expired)", "provider", provider, "error", j.req.Context().Err())
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		if err := limiter.Wait(j.req.Context()); err != nil {
			j.respChan <- jobResult{err: err}
			continue
		}

		// Apply User-Agent (Default if not provided)
		uaMatch := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaMatch = true
			}
		}
		if !uaMatch {
			j.req.Header.Set("User-Agent", defaultUserAgent)
		}

		body, err := c.executeWithBackoff(j.req)

		if err == nil {
			c.tracker.TrackAPISuccess(provider)
			// Cache result (Only if key is provided)
			if j.cacheKey != "" {
				if err := c.cache.SetCache(context.Background(), j.cacheKey, body); err != nil {
					slog.Error("Failed to cache response", "url", j.req.URL, "error", err)
				}
			}
		} else {
			c.tracker.TrackAPIFailure(provider)
		}

		j.respChan <- jobResult{body: body, err: err}
	}
}

// executeWithBackoff attempts the request with exponential backoff on retryable errors.
func (c *Client) executeWithBackoff(req *http.Request) ([]byte, error) {
	for attempt := 0; attempt < c.retries; attempt++ {
		// Verify context is still alive before dialing
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)

		if err != nil {
			// Check if the error is a context cancellation from OUR side
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}

			slog.Warn("Request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			if err := c.sleepBackoff(req.Context(), attempt); err != nil {
				return nil, err
			}
			continue
		}

		// 429 and 5xx are retryable
		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode < 600) {
			resp.Body.Close()
			slog.Warn("API Backoff", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			if err := c.sleepBackoff(req.Context(), attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
		}

		// Success
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded")
}

func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	sleepDur := time.Duration(math.Pow(2, float64(attempt))) * c.baseDelay
	if sleepDur > c.maxDelay {
		sleepDur = c.maxDelay
	}
	select {
	case <-time.After(sleepDur):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
