package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// fakeSource serves a scripted commit history.
type fakeSource struct {
	mu sync.Mutex

	// pages[i] holds the shas of page i+1; pages past the end are empty.
	pages      [][]string
	details    map[string]domain.CommitDetail
	detailErrs map[string]error
	listErrs   map[int]error
	delays     map[string]time.Duration

	// onDetail, when set, runs before every detail lookup.
	onDetail func(sha string)

	listCalls   []int
	detailCalls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		details:    make(map[string]domain.CommitDetail),
		detailErrs: make(map[string]error),
		listErrs:   make(map[int]error),
		delays:     make(map[string]time.Duration),
	}
}

// addPage appends a page of commits, each touching the given paths.
func (f *fakeSource) addPage(commits map[string][]string, order ...string) {
	f.pages = append(f.pages, order)
	for _, sha := range order {
		f.details[sha] = domain.CommitDetail{
			SHA:          sha,
			AuthorName:   "author-" + sha,
			AuthorLogin:  "login-" + sha,
			Timestamp:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			ChangedPaths: commits[sha],
		}
	}
}

func (f *fakeSource) ListCommits(_ context.Context, _ domain.Repository, page int) (*domain.CommitPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, page)
	err := f.listErrs[page]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	result := &domain.CommitPage{Number: page}
	if page <= len(f.pages) {
		for _, sha := range f.pages[page-1] {
			result.Refs = append(result.Refs, domain.CommitRef{SHA: sha})
		}
	}
	return result, nil
}

func (f *fakeSource) GetCommit(ctx context.Context, _ domain.Repository, ref domain.CommitRef) (*domain.CommitDetail, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, ref.SHA)
	hook := f.onDetail
	delay := f.delays[ref.SHA]
	err := f.detailErrs[ref.SHA]
	detail, ok := f.details[ref.SHA]
	f.mu.Unlock()

	if hook != nil {
		hook(ref.SHA)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("unknown commit")
	}
	return &detail, nil
}

func (f *fakeSource) listed() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...)
}

// fakePathSource adds path history and probing to fakeSource.
type fakePathSource struct {
	*fakeSource
	history  map[string][][]domain.CommitDetail
	start    time.Time
	probeErr error
}

func (f *fakePathSource) ListPathCommits(
	_ context.Context, _ domain.Repository, path string, page int,
) ([]domain.CommitDetail, error) {
	pages := f.history[path]
	if page > len(pages) {
		return nil, nil
	}
	return pages[page-1], nil
}

func (f *fakePathSource) FirstCommitDate(_ context.Context, _ domain.Repository) (time.Time, error) {
	return f.start, f.probeErr
}
