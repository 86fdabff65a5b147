package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
	"github.com/custodia-labs/touchminer/internal/logger"
)

// Client wraps go-github with credential rotation, retries and rate limiting.
//
// go-github keeps rate limit state per client, so one client is created for
// every credential in the pool and an exhausted token never blocks the others.
type Client struct {
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter
	retry         RetryPolicy
	timeout       time.Duration
	baseURL       *url.URL
	transport     http.RoundTripper
	observer      func(endpoint, outcome string)

	mu      sync.Mutex
	clients map[string]*gh.Client
}

// NewClient creates a GitHub API client drawing credentials from tokenProvider.
func NewClient(tokenProvider driven.TokenProvider, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retry.MaxRetries < 0 {
		opts.Retry.MaxRetries = 0
	}

	c := &Client{
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(opts.requestRate(tokenProvider.Size())),
		retry:         opts.Retry,
		timeout:       opts.Timeout,
		transport:     opts.Transport,
		observer:      opts.Observer,
		clients:       make(map[string]*gh.Client),
	}

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		c.baseURL = u
	}

	return c, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// TokenProvider returns the credential source.
func (c *Client) TokenProvider() driven.TokenProvider {
	return c.tokenProvider
}

// clientFor returns the go-github client bound to token, creating it on first use.
func (c *Client) clientFor(token string) *gh.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[token]; ok {
		return client
	}

	var httpClient *http.Client
	if token == "" {
		httpClient = &http.Client{Transport: c.transport}
	} else {
		base := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: c.transport})
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(base, ts)
	}

	client := gh.NewClient(httpClient)
	if c.baseURL != nil {
		u := *c.baseURL
		client.BaseURL = &u
	}

	c.clients[token] = client
	return client
}

// get fetches urlStr (relative to the API base or absolute) and returns the
// undecoded body. Transient failures are retried with the next credential.
func (c *Client) get(ctx context.Context, endpoint, urlStr string) (json.RawMessage, *gh.Response, error) {
	for attempt := 0; ; attempt++ {
		raw, resp, err := c.attempt(ctx, endpoint, urlStr)
		if err == nil {
			return raw, resp, nil
		}
		if ctx.Err() != nil {
			return nil, resp, ctx.Err()
		}
		if attempt >= c.retry.MaxRetries || !IsRetryable(err) {
			return nil, resp, err
		}

		delay := c.retry.Delay(attempt, err, c.tokenProvider.Size())
		logger.Debug("github: %s %s failed (attempt %d), retrying in %s: %v",
			endpoint, urlStr, attempt+1, delay, err)

		select {
		case <-ctx.Done():
			return nil, resp, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// attempt performs a single request with a freshly drawn credential.
func (c *Client) attempt(ctx context.Context, endpoint, urlStr string) (json.RawMessage, *gh.Response, error) {
	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get token: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx, token); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	client := c.clientFor(token)
	req, err := client.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw json.RawMessage
	resp, err := client.Do(callCtx, req, &raw)
	c.updateRateLimitFromResponse(token, resp)
	if err != nil {
		err = c.wrapError(err, endpoint)
	}

	c.tokenProvider.Report(token, err)
	c.observe(endpoint, err)
	return raw, resp, err
}

func (c *Client) observe(endpoint string, err error) {
	if c.observer == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case err == nil:
	case IsRateLimited(err):
		outcome = OutcomeRateLimited
	case IsTimeout(err):
		outcome = OutcomeTimeout
	default:
		outcome = OutcomeError
	}
	c.observer(endpoint, outcome)
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(token string, resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(token, resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
			Message:   rateLimitErr.Message,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Time{}
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: resetAt, Message: abuseErr.Message}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil && ghErr.Response.Request.URL != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
