package driven

import (
	"context"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// TokenProvider hands out the credential for each outbound API call.
// Every GetToken call advances the provider, so callers must fetch a token
// per request rather than per page or per run.
type TokenProvider interface {
	// GetToken returns the credential for the next call.
	// Returns empty string for unauthenticated mode.
	GetToken(ctx context.Context) (string, error)

	// Report feeds back the outcome of a call made with token.
	// Pure round-robin providers ignore it.
	Report(token string, err error)

	// AuthMethod returns the authentication method (pat, none).
	AuthMethod() domain.AuthMethod

	// IsAuthenticated returns true if at least one credential is available.
	// Always true for unauthenticated mode (NullTokenProvider).
	IsAuthenticated() bool

	// Size returns the number of credentials in the pool, 0 when unauthenticated.
	Size() int
}
