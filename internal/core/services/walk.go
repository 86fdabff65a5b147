package services

import (
	"context"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// ListCommits walks the commit list of repo from page 1 in order and streams
// every non-empty page. The first empty page ends the walk: both channels are
// closed and no further page is requested. A lister error or cancellation is
// sent on the error channel before closing. The walk cannot be restarted.
func ListCommits(
	ctx context.Context, lister driven.CommitLister, repo domain.Repository,
) (<-chan domain.CommitPage, <-chan error) {
	pages := make(chan domain.CommitPage)
	errs := make(chan error, 1)

	go func() {
		defer close(pages)
		defer close(errs)

		for n := 1; ; n++ {
			if err := ctx.Err(); err != nil {
				errs <- err
				return
			}

			page, err := lister.ListCommits(ctx, repo, n)
			if err != nil {
				errs <- err
				return
			}
			if page == nil || page.IsEmpty() {
				return
			}

			select {
			case pages <- *page:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return pages, errs
}
