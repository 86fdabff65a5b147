package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func nextTokens(t *testing.T, p *HealthAwareProvider, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tok, err := p.GetToken(context.Background())
		require.NoError(t, err)
		out = append(out, tok)
	}
	return out
}

func TestNewHealthAwareProvider(t *testing.T) {
	t.Run("empty pool fails fast", func(t *testing.T) {
		_, err := NewHealthAwareProvider([]string{})

		assert.ErrorIs(t, err, domain.ErrNoCredentials)
	})

	t.Run("rotates like round robin when healthy", func(t *testing.T) {
		p, err := NewHealthAwareProvider([]string{"a", "b", "c"})
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c", "a", "b"}, nextTokens(t, p, 5))
	})
}

func TestHealthAwareProvider_Quarantine(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	p, err := NewHealthAwareProvider(
		[]string{"a", "b", "c"},
		WithThreshold(2),
		WithCooldown(time.Minute),
		WithClock(clock.Now),
	)
	require.NoError(t, err)

	t.Run("single failure does not quarantine", func(t *testing.T) {
		p.Report("b", domain.ErrRateLimited)

		assert.Equal(t, 0, p.Quarantined())
	})

	t.Run("success resets the failure streak", func(t *testing.T) {
		p.Report("b", nil)
		p.Report("b", domain.ErrRateLimited)

		assert.Equal(t, 0, p.Quarantined())
	})

	t.Run("threshold failures quarantine the token", func(t *testing.T) {
		p.Report("b", fmt.Errorf("call: %w", domain.ErrRateLimited))

		assert.Equal(t, 1, p.Quarantined())
		assert.NotContains(t, nextTokens(t, p, 6), "b")
	})

	t.Run("token is readmitted after cooldown", func(t *testing.T) {
		clock.Advance(time.Minute)

		assert.Equal(t, 0, p.Quarantined())
		assert.Contains(t, nextTokens(t, p, 3), "b")
	})
}

func TestHealthAwareProvider_IgnoresUnrelatedErrors(t *testing.T) {
	p, err := NewHealthAwareProvider([]string{"a", "b"}, WithThreshold(1))
	require.NoError(t, err)

	p.Report("a", errors.New("connection reset"))
	p.Report("a", domain.ErrNoCommitObject)
	p.Report("unknown-token", domain.ErrAuthInvalid)

	assert.Equal(t, 0, p.Quarantined())
}

func TestHealthAwareProvider_AllQuarantinedFallsBack(t *testing.T) {
	p, err := NewHealthAwareProvider([]string{"a", "b"}, WithThreshold(1))
	require.NoError(t, err)

	p.Report("a", domain.ErrAuthInvalid)
	p.Report("b", domain.ErrAuthInvalid)
	require.Equal(t, 2, p.Quarantined())

	got := nextTokens(t, p, 4)
	assert.ElementsMatch(t, []string{"a", "b", "a", "b"}, got)
}

func TestNewTokenProvider(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		rotation domain.Rotation
		wantType any
		wantErr  error
	}{
		{"no tokens selects unauthenticated mode", nil, domain.RotationRoundRobin, &NullTokenProvider{}, nil},
		{"blank tokens select unauthenticated mode", []string{" "}, domain.RotationHealthAware, &NullTokenProvider{}, nil},
		{"round robin", []string{"a"}, domain.RotationRoundRobin, &RoundRobinProvider{}, nil},
		{"empty rotation defaults to round robin", []string{"a"}, "", &RoundRobinProvider{}, nil},
		{"health aware", []string{"a"}, domain.RotationHealthAware, &HealthAwareProvider{}, nil},
		{"unknown rotation", []string{"a"}, "random", nil, domain.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewTokenProvider(tt.tokens, tt.rotation)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
		})
	}
}

func TestNullTokenProvider(t *testing.T) {
	p := NewNullTokenProvider()

	tok, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Empty(t, tok)
	assert.True(t, p.IsAuthenticated())
	assert.Equal(t, domain.AuthMethodNone, p.AuthMethod())
	assert.Equal(t, 0, p.Size())
}
