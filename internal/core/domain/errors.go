package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown strategy, policy or rotation type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Authentication Errors.

	// ErrAuthRequired indicates the crawl requires authentication but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrNoCredentials indicates an authenticated crawl was requested with an empty token pool.
	ErrNoCredentials = errors.New("token pool is empty")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Crawl Errors.

	// ErrInvalidRepository indicates the target repository is unset or not in owner/name form.
	ErrInvalidRepository = errors.New("invalid repository")

	// ErrMalformedPage indicates a commit list page did not decode as a sequence.
	// It aborts the crawl.
	ErrMalformedPage = errors.New("malformed commit list page")

	// ErrNoCommitObject indicates a commit detail response carried no commit object.
	// Only the affected commit is skipped.
	ErrNoCommitObject = errors.New("response has no commit object")

	// ErrCrawlAborted marks a crawl that stopped before the last page.
	ErrCrawlAborted = errors.New("crawl aborted")
)

// FatalError is a run-aborting failure of the commit list walk.
// Payload carries the upstream body or message so callers can show it verbatim.
type FatalError struct {
	Page    int
	Payload string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Payload == "" || (e.Err != nil && strings.Contains(e.Err.Error(), e.Payload)) {
		return fmt.Sprintf("list page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("list page %d: %v: %s", e.Page, e.Err, e.Payload)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err aborts the whole crawl.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
