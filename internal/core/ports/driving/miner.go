package driving

import (
	"context"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// Miner crawls a repository's commit history and returns its touch records.
type Miner interface {
	// Mine runs one full crawl. On a fatal or cancelled crawl it returns the
	// partial result together with a non-nil error.
	Mine(ctx context.Context, req MineRequest) (*domain.CrawlResult, error)

	// Status returns the progress of the running crawl.
	Status() MineStatus
}

// MineRequest describes one crawl.
type MineRequest struct {
	Repository  domain.Repository
	Tracked     *domain.TrackedPathSet
	Strategy    domain.Strategy
	CountPolicy domain.CountPolicy
}

// MineStatus represents the current state of a crawl.
type MineStatus struct {
	// Running indicates if a crawl is in progress.
	Running bool

	// Pages is the number of list pages fetched so far.
	Pages int

	// LastPage is the Link header estimate of the final page, 0 if unknown.
	LastPage int

	// CommitsResolved is the count of commits whose detail was resolved.
	CommitsResolved int

	// SkippedCommits is the number of commits dropped by recoverable failures.
	SkippedCommits int

	// Records is the number of touch records produced.
	Records int
}
