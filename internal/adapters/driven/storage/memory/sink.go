package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.RecordSink = (*Sink)(nil)

// Sink keeps crawl results in memory, keyed by run ID.
type Sink struct {
	mu    sync.RWMutex
	runs  map[string]*domain.CrawlResult
	order []string
}

// NewSink creates an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{
		runs: make(map[string]*domain.CrawlResult),
	}
}

// Name returns the sink identifier.
func (s *Sink) Name() string {
	return "memory"
}

// Write stores a copy of result. Writing the same run again replaces it.
func (s *Sink) Write(_ context.Context, result *domain.CrawlResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	stored := *result
	stored.Records = append([]domain.TouchRecord(nil), result.Records...)
	stored.Skipped = append([]domain.SkippedCommit(nil), result.Skipped...)
	stored.Counts = result.Counts.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[result.RunID]; !exists {
		s.order = append(s.order, result.RunID)
	}
	s.runs[result.RunID] = &stored
	return nil
}

// Get returns the stored result of a run.
func (s *Sink) Get(runID string) (*domain.CrawlResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return result, nil
}

// Latest returns the most recently written run.
func (s *Sink) Latest() (*domain.CrawlResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.runs[s.order[len(s.order)-1]], nil
}

// Runs returns run IDs in write order.
func (s *Sink) Runs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}
