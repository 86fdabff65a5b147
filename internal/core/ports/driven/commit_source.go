package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// CommitLister fetches one page of a repository's commit list.
// A page whose body is not a sequence returns a *domain.FatalError.
type CommitLister interface {
	ListCommits(ctx context.Context, repo domain.Repository, page int) (*domain.CommitPage, error)
}

// CommitResolver fetches the detail of one commit.
// Missing optional fields are defaulted; only a response without a commit
// object (or a failed call) returns an error.
type CommitResolver interface {
	GetCommit(ctx context.Context, repo domain.Repository, ref domain.CommitRef) (*domain.CommitDetail, error)
}

// CommitSource is a full commit-history backend.
type CommitSource interface {
	CommitLister
	CommitResolver
}

// HistoryProber finds the date of the oldest commit of a repository.
type HistoryProber interface {
	FirstCommitDate(ctx context.Context, repo domain.Repository) (time.Time, error)
}

// PathHistoryLister lists the commits that touched one path, one page at a time.
// Each returned detail carries path as its only changed path. An empty slice
// ends the walk for that path.
type PathHistoryLister interface {
	ListPathCommits(ctx context.Context, repo domain.Repository, path string, page int) ([]domain.CommitDetail, error)
}
