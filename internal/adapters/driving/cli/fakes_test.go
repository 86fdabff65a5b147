package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// fakeSource serves fixed pages and details.
type fakeSource struct {
	mu       sync.Mutex
	pages    map[int][]domain.CommitRef
	details  map[string]*domain.CommitDetail
	listErrs map[int]error
	settings *domain.MinerSettings
	built    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:    make(map[int][]domain.CommitRef),
		details:  make(map[string]*domain.CommitDetail),
		listErrs: make(map[int]error),
	}
}

func (s *fakeSource) addCommit(page int, sha, author string, paths ...string) {
	s.pages[page] = append(s.pages[page], domain.CommitRef{SHA: sha})
	s.details[sha] = &domain.CommitDetail{SHA: sha, AuthorName: author, AuthorLogin: author, ChangedPaths: paths}
}

func (s *fakeSource) ListCommits(ctx context.Context, _ domain.Repository, page int) (*domain.CommitPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.listErrs[page]; ok {
		return nil, err
	}
	return &domain.CommitPage{Number: page, Refs: s.pages[page]}, nil
}

func (s *fakeSource) GetCommit(ctx context.Context, _ domain.Repository, ref domain.CommitRef) (*domain.CommitDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := s.details[ref.SHA]
	if !ok {
		return nil, fmt.Errorf("%w: no commit %s", domain.ErrNoCommitObject, ref.SHA)
	}
	cp := *d
	return &cp, nil
}

// factory records the settings it was built with.
func (s *fakeSource) factory(settings *domain.MinerSettings, _ driven.TokenProvider, _ func(string, string)) (driven.CommitSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.built++
	return s, nil
}
