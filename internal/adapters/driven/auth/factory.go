package auth

import (
	"fmt"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// NewTokenProvider creates the TokenProvider for a run.
// An empty pool selects unauthenticated mode; otherwise rotation picks the policy.
func NewTokenProvider(tokens []string, rotation domain.Rotation) (driven.TokenProvider, error) {
	if len(cleanPool(tokens)) == 0 {
		return NewNullTokenProvider(), nil
	}

	switch rotation {
	case domain.RotationRoundRobin, "":
		return NewRoundRobinProvider(tokens)
	case domain.RotationHealthAware:
		return NewHealthAwareProvider(tokens)
	default:
		return nil, fmt.Errorf("%w: rotation %q", domain.ErrUnsupportedType, rotation)
	}
}
