package github

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 30 * time.Second

	// PageSize is the number of commits requested per list page.
	PageSize = 100
)

// Endpoint labels reported to the Observer.
const (
	EndpointList   = "list"
	EndpointDetail = "detail"
	EndpointPath   = "path"
	EndpointProbe  = "probe"
)

// Call outcomes reported to the Observer.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeTimeout     = "timeout"
	OutcomeError       = "error"
)

// Options configures a Client.
type Options struct {
	// BaseURL overrides https://api.github.com/ (GitHub Enterprise, tests).
	BaseURL string

	// Timeout bounds each individual call. Default: DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond is the proactive throttle for the whole pool.
	// Zero means ProactiveRate per credential; negative disables throttling.
	RequestsPerSecond float64

	// Retry controls how transient failures are retried.
	Retry RetryPolicy

	// Transport is the base round tripper. Default: http.DefaultTransport.
	Transport http.RoundTripper

	// Observer, when set, is called once per HTTP attempt.
	Observer func(endpoint, outcome string)
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
		Retry:   DefaultRetryPolicy(),
	}
}

// requestRate resolves the overall proactive rate for a pool of size n.
func (o Options) requestRate(n int) float64 {
	switch {
	case o.RequestsPerSecond < 0:
		return 0
	case o.RequestsPerSecond > 0:
		return o.RequestsPerSecond
	}
	return ProactiveRate * float64(max(n, 1))
}
