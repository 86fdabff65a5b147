package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// Ensure HealthAwareProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*HealthAwareProvider)(nil)

const (
	// DefaultFailureThreshold is the consecutive failure count that quarantines a token.
	DefaultFailureThreshold = 3

	// DefaultCooldown is how long a quarantined token is skipped.
	DefaultCooldown = 5 * time.Minute
)

// HealthAwareProvider rotates like RoundRobinProvider but skips a token for
// Cooldown after Threshold consecutive authentication or rate-limit failures.
// When every token is quarantined it falls back to plain rotation.
type HealthAwareProvider struct {
	mu        sync.Mutex
	tokens    []string
	index     map[string]int
	next      int
	failures  []int
	until     []time.Time
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

// HealthOption configures a HealthAwareProvider.
type HealthOption func(*HealthAwareProvider)

// WithThreshold sets the consecutive failure count that quarantines a token.
func WithThreshold(n int) HealthOption {
	return func(p *HealthAwareProvider) {
		if n > 0 {
			p.threshold = n
		}
	}
}

// WithCooldown sets how long a quarantined token is skipped.
func WithCooldown(d time.Duration) HealthOption {
	return func(p *HealthAwareProvider) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) HealthOption {
	return func(p *HealthAwareProvider) {
		p.now = now
	}
}

// NewHealthAwareProvider creates a provider over tokens.
// An empty pool returns domain.ErrNoCredentials.
func NewHealthAwareProvider(tokens []string, opts ...HealthOption) (*HealthAwareProvider, error) {
	pool := cleanPool(tokens)
	if len(pool) == 0 {
		return nil, domain.ErrNoCredentials
	}
	p := &HealthAwareProvider{
		tokens:    pool,
		index:     make(map[string]int, len(pool)),
		failures:  make([]int, len(pool)),
		until:     make([]time.Time, len(pool)),
		threshold: DefaultFailureThreshold,
		cooldown:  DefaultCooldown,
		now:       time.Now,
	}
	for i, t := range pool {
		if _, dup := p.index[t]; !dup {
			p.index[t] = i
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// GetToken returns the next healthy token in rotation order.
func (p *HealthAwareProvider) GetToken(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.tokens)
	now := p.now()
	for i := 0; i < n; i++ {
		idx := (p.next + i) % n
		if !now.Before(p.until[idx]) {
			p.next = (idx + 1) % n
			return p.tokens[idx], nil
		}
	}

	// Every token is quarantined.
	idx := p.next
	p.next = (idx + 1) % n
	return p.tokens[idx], nil
}

// Report records the outcome of a call made with token.
func (p *HealthAwareProvider) Report(token string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.index[token]
	if !ok {
		return
	}
	if !countsAgainstToken(err) {
		p.failures[idx] = 0
		return
	}
	p.failures[idx]++
	if p.failures[idx] >= p.threshold {
		p.until[idx] = p.now().Add(p.cooldown)
		p.failures[idx] = 0
	}
}

// Quarantined returns how many tokens are currently skipped.
func (p *HealthAwareProvider) Quarantined() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	count := 0
	for _, u := range p.until {
		if now.Before(u) {
			count++
		}
	}
	return count
}

// AuthMethod returns AuthMethodPAT.
func (p *HealthAwareProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodPAT
}

// IsAuthenticated returns true; the pool is never empty.
func (p *HealthAwareProvider) IsAuthenticated() bool {
	return len(p.tokens) > 0
}

// Size returns the pool size.
func (p *HealthAwareProvider) Size() int {
	return len(p.tokens)
}

// countsAgainstToken reports whether err says something about the token
// itself rather than the request or the network.
func countsAgainstToken(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, domain.ErrAuthInvalid) || errors.Is(err, domain.ErrRateLimited)
}
