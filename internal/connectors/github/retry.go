package github

import (
	"errors"
	"time"
)

// RetryPolicy controls retries of transient failures.
type RetryPolicy struct {
	// MaxRetries is the number of extra attempts; 0 disables retries.
	MaxRetries int

	// BaseDelay is the first backoff, doubled on every attempt.
	BaseDelay time.Duration

	// MaxWait caps any single wait, including waits for a rate limit reset.
	MaxWait time.Duration
}

// DefaultRetryPolicy returns three retries starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxWait:    time.Minute,
	}
}

// Delay returns how long to wait before retry number attempt+1.
// When the whole pool shares one credential a rate limit waits for its reset.
func (p RetryPolicy) Delay(attempt int, err error, poolSize int) time.Duration {
	delay := p.BaseDelay << min(attempt, 16)

	var rateLimitErr *RateLimitError
	if poolSize <= 1 && errors.As(err, &rateLimitErr) && !rateLimitErr.ResetAt.IsZero() {
		if until := time.Until(rateLimitErr.ResetAt); until > delay {
			delay = until
		}
	}

	if p.MaxWait > 0 && delay > p.MaxWait {
		delay = p.MaxWait
	}
	return delay
}
