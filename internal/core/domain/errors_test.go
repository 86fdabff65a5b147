package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Uniqueness(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrAuthRequired, ErrAuthInvalid,
		ErrNoCredentials, ErrRateLimited, ErrInvalidRepository, ErrMalformedPage,
		ErrNoCommitObject, ErrCrawlAborted,
	}

	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestFatalError(t *testing.T) {
	tests := []struct {
		name    string
		err     *FatalError
		wantMsg string
	}{
		{
			name:    "with payload",
			err:     &FatalError{Page: 3, Payload: `{"message":"Bad credentials"}`, Err: ErrMalformedPage},
			wantMsg: `list page 3: malformed commit list page: {"message":"Bad credentials"}`,
		},
		{
			name: "payload already in the wrapped error",
			err: &FatalError{
				Page:    2,
				Payload: `{"message":"boom"}`,
				Err:     fmt.Errorf("%w: %s", ErrMalformedPage, `{"message":"boom"}`),
			},
			wantMsg: `list page 2: malformed commit list page: {"message":"boom"}`,
		},
		{
			name:    "timeout message is not repeated",
			err:     &FatalError{Page: 1, Payload: "context deadline exceeded", Err: fmt.Errorf("list: %w", context.DeadlineExceeded)},
			wantMsg: "list page 1: list: context deadline exceeded",
		},
		{
			name:    "without payload",
			err:     &FatalError{Page: 1, Err: ErrAuthInvalid},
			wantMsg: "list page 1: authentication invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.err.Err)
		})
	}
}

func TestIsFatal(t *testing.T) {
	fatal := &FatalError{Page: 2, Err: ErrMalformedPage}

	assert.True(t, IsFatal(fatal))
	assert.True(t, IsFatal(fmt.Errorf("walking: %w", fatal)))
	assert.False(t, IsFatal(ErrNoCommitObject))
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("boom")))
}
