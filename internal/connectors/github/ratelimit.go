package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// GitHubRateLimit is the authenticated rate limit (5000/hour).
	GitHubRateLimit = 5000

	// ProactiveRate is the per-token proactive throttle (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// MinBuffer is the most requests held back before waiting for a reset.
	MinBuffer = 100

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"
)

// quota is the last known API budget of one credential.
type quota struct {
	remaining int
	limit     int
	resetTime time.Time
}

// RateLimiter throttles requests across the whole pool with a token bucket
// and tracks the reported quota of each credential separately.
type RateLimiter struct {
	mu     sync.Mutex
	quotas map[string]*quota
	bucket *rate.Limiter
}

// NewRateLimiter creates a limiter allowing rps requests per second overall.
// A non-positive rps disables proactive throttling.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimiter{
		quotas: make(map[string]*quota),
		bucket: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until a request with the given credential is safe to send.
func (r *RateLimiter) Wait(ctx context.Context, token string) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	q, ok := r.quotas[token]
	var remaining, limit int
	var resetTime time.Time
	if ok {
		remaining, limit, resetTime = q.remaining, q.limit, q.resetTime
	}
	r.mu.Unlock()

	if !ok || !time.Now().Before(resetTime) {
		return nil
	}
	if remaining < minBuffer(limit) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

// minBuffer keeps a tenth of small quotas (such as the anonymous 60/hour)
// usable instead of reserving more than the whole budget.
func minBuffer(limit int) int {
	if limit <= 0 {
		return 0
	}
	return min(MinBuffer, limit/10)
}

// UpdateFromResponse records the quota headers of a response for token.
func (r *RateLimiter) UpdateFromResponse(token string, resp *http.Response) {
	if resp == nil || resp.Header.Get(HeaderRateRemaining) == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.quotas[token]
	if !ok {
		q = &quota{limit: GitHubRateLimit, remaining: GitHubRateLimit}
		r.quotas[token] = q
	}

	if val, err := strconv.Atoi(resp.Header.Get(HeaderRateRemaining)); err == nil {
		q.remaining = val
	}
	if val, err := strconv.Atoi(resp.Header.Get(HeaderRateLimit)); err == nil {
		q.limit = val
	}
	if val, err := strconv.ParseInt(resp.Header.Get(HeaderRateReset), 10, 64); err == nil {
		q.resetTime = time.Unix(val, 0)
	}
}

// Remaining returns the last reported remaining requests for token, or -1 if unknown.
func (r *RateLimiter) Remaining(token string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.quotas[token]; ok {
		return q.remaining
	}
	return -1
}

// ResetTime returns the last reported reset time for token.
func (r *RateLimiter) ResetTime(token string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.quotas[token]; ok {
		return q.resetTime
	}
	return time.Time{}
}
