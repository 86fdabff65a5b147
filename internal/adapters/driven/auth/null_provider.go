package auth

import (
	"context"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider is used when no token is configured.
// Requests go out without an Authorization header and are subject to the
// unauthenticated rate limit (60 requests per hour on github.com).
type NullTokenProvider struct{}

// NewNullTokenProvider creates a token provider for unauthenticated mode.
func NewNullTokenProvider() *NullTokenProvider {
	return &NullTokenProvider{}
}

// GetToken returns an empty string since no authentication is used.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	return "", nil
}

// Report is a no-op.
func (p *NullTokenProvider) Report(_ string, _ error) {}

// AuthMethod returns AuthMethodNone.
func (p *NullTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodNone
}

// IsAuthenticated always returns true since no-auth is always "authenticated".
func (p *NullTokenProvider) IsAuthenticated() bool {
	return true
}

// Size returns 0.
func (p *NullTokenProvider) Size() int {
	return 0
}
