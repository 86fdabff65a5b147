package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
	"github.com/custodia-labs/touchminer/internal/logger"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.CommitSource      = (*Connector)(nil)
	_ driven.HistoryProber     = (*Connector)(nil)
	_ driven.PathHistoryLister = (*Connector)(nil)
)

// Connector reads commit history from the GitHub REST API.
type Connector struct {
	client *Client
}

// New creates a connector drawing credentials from tokenProvider.
func New(tokenProvider driven.TokenProvider, opts Options) (*Connector, error) {
	client, err := NewClient(tokenProvider, opts)
	if err != nil {
		return nil, err
	}
	return &Connector{client: client}, nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "github"
}

// Client returns the underlying API client.
func (c *Connector) Client() *Client {
	return c.client
}

// ListCommits fetches one page of the default branch history.
// Any failure other than cancellation is returned as a *domain.FatalError.
func (c *Connector) ListCommits(ctx context.Context, repo domain.Repository, page int) (*domain.CommitPage, error) {
	raw, resp, err := c.client.get(ctx, EndpointList, commitsPath(repo, page, ""))
	if err != nil {
		return nil, c.fatal(ctx, page, err)
	}

	refs, err := ParseCommitList(raw)
	if err != nil {
		return nil, c.fatal(ctx, page, err)
	}

	result := &domain.CommitPage{Number: page, Refs: refs}
	if resp != nil && resp.Response != nil {
		result.LastPage = LastPageNumber(resp.Header.Get("Link"))
	}
	return result, nil
}

// GetCommit resolves one commit. Only a failed call or a response without a
// commit object returns an error.
func (c *Connector) GetCommit(ctx context.Context, repo domain.Repository, ref domain.CommitRef) (*domain.CommitDetail, error) {
	if ref.SHA == "" {
		return nil, fmt.Errorf("%w: list entry has no sha", domain.ErrInvalidInput)
	}

	path := fmt.Sprintf("repos/%s/%s/commits/%s",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name), url.PathEscape(ref.SHA))
	raw, _, err := c.client.get(ctx, EndpointDetail, path)
	if err != nil {
		return nil, err
	}

	detail, err := ParseCommitDetail(raw)
	if err != nil {
		return nil, err
	}
	if detail.SHA == "" {
		detail.SHA = ref.SHA
	}
	return detail, nil
}

// ListPathCommits fetches one page of the commits that touched path.
func (c *Connector) ListPathCommits(
	ctx context.Context, repo domain.Repository, path string, page int,
) ([]domain.CommitDetail, error) {
	raw, _, err := c.client.get(ctx, EndpointPath, commitsPath(repo, page, path))
	if err != nil {
		return nil, c.fatal(ctx, page, err)
	}

	details, err := ParsePathHistory(raw, path)
	if err != nil {
		return nil, c.fatal(ctx, page, err)
	}
	return details, nil
}

// FirstCommitDate returns the author date of the oldest commit. It lists one
// commit per page and follows the Link rel="last" reference to the end.
func (c *Connector) FirstCommitDate(ctx context.Context, repo domain.Repository) (time.Time, error) {
	first := fmt.Sprintf("repos/%s/%s/commits?per_page=1",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	raw, resp, err := c.client.get(ctx, EndpointProbe, first)
	if err != nil {
		return time.Time{}, err
	}

	if resp != nil && resp.Response != nil {
		if last := GetLastPage(resp.Header.Get("Link")); last != "" {
			logger.Debug("github: probing oldest commit at %s", last)
			raw, _, err = c.client.get(ctx, EndpointProbe, last)
			if err != nil {
				return time.Time{}, err
			}
		}
	}

	details, err := ParsePathHistory(raw, "")
	if err != nil {
		return time.Time{}, err
	}
	if len(details) == 0 {
		return time.Time{}, fmt.Errorf("%w: %s has no commits", domain.ErrNotFound, repo)
	}
	oldest := details[len(details)-1]
	if !oldest.HasTimestamp() {
		return time.Time{}, fmt.Errorf("%w: oldest commit has no date", domain.ErrNotFound)
	}
	return oldest.Timestamp, nil
}

// fatal turns a list failure into a *domain.FatalError unless the caller
// cancelled, in which case the context error is returned unchanged.
func (c *Connector) fatal(ctx context.Context, page int, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	payload := payloadOf(err)
	if errors.Is(err, domain.ErrMalformedPage) {
		payload = malformedPayload(err)
	}
	return &domain.FatalError{Page: page, Payload: payload, Err: err}
}

// malformedPayload strips the sentinel prefix so only the upstream body remains.
func malformedPayload(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrMalformedPage.Error()+": ")
}

func commitsPath(repo domain.Repository, page int, path string) string {
	q := url.Values{}
	if path != "" {
		q.Set("path", path)
	}
	q.Set("per_page", fmt.Sprint(PageSize))
	q.Set("page", fmt.Sprint(page))
	return fmt.Sprintf("repos/%s/%s/commits?%s",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name), q.Encode())
}
