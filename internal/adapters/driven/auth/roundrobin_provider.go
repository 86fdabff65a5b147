package auth

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// Ensure RoundRobinProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*RoundRobinProvider)(nil)

// RoundRobinProvider rotates through a fixed pool of Personal Access Tokens.
// Call n receives pool[n mod len(pool)]. Rotation is not health-aware: an
// invalid token keeps being handed out every len(pool) calls.
type RoundRobinProvider struct {
	tokens  []string
	counter atomic.Uint64
}

// NewRoundRobinProvider creates a provider over tokens.
// Blank entries are dropped; an empty pool returns domain.ErrNoCredentials.
func NewRoundRobinProvider(tokens []string) (*RoundRobinProvider, error) {
	pool := cleanPool(tokens)
	if len(pool) == 0 {
		return nil, domain.ErrNoCredentials
	}
	return &RoundRobinProvider{tokens: pool}, nil
}

// GetToken returns the next token in the pool. Safe for concurrent use:
// every call observes a distinct counter value.
func (p *RoundRobinProvider) GetToken(_ context.Context) (string, error) {
	n := p.counter.Add(1) - 1
	return p.tokens[n%uint64(len(p.tokens))], nil
}

// Report is a no-op; round-robin ignores call outcomes.
func (p *RoundRobinProvider) Report(_ string, _ error) {}

// AuthMethod returns AuthMethodPAT.
func (p *RoundRobinProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodPAT
}

// IsAuthenticated returns true; the pool is never empty.
func (p *RoundRobinProvider) IsAuthenticated() bool {
	return len(p.tokens) > 0
}

// Size returns the pool size.
func (p *RoundRobinProvider) Size() int {
	return len(p.tokens)
}

// Calls returns how many tokens have been handed out.
func (p *RoundRobinProvider) Calls() uint64 {
	return p.counter.Load()
}

func cleanPool(tokens []string) []string {
	pool := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			pool = append(pool, t)
		}
	}
	return pool
}
