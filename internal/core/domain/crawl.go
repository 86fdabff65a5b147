package domain

import (
	"fmt"
	"strings"
	"time"
)

// RunStatus describes how a crawl ended.
type RunStatus string

const (
	// RunCompleted means the walk reached the first empty page.
	RunCompleted RunStatus = "completed"
	// RunAborted means a fatal list failure stopped the walk early.
	RunAborted RunStatus = "aborted"
	// RunCancelled means the caller's context ended the walk early.
	RunCancelled RunStatus = "cancelled"
)

// Strategy selects how touches are discovered.
type Strategy string

const (
	// StrategyHistory walks the full commit list and resolves every commit.
	StrategyHistory Strategy = "history"
	// StrategyPathHistory lists commits per tracked file with the path filter.
	// It requires an exact TrackedPathSet.
	StrategyPathHistory Strategy = "path_history"
)

// IsValid returns true if the strategy is recognised.
func (s Strategy) IsValid() bool {
	return s == StrategyHistory || s == StrategyPathHistory
}

// ParseStrategy parses a strategy name. Empty selects StrategyHistory.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return StrategyHistory, nil
	}
	st := Strategy(strings.ReplaceAll(s, "-", "_"))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: strategy %q", ErrUnsupportedType, s)
	}
	return st, nil
}

// CrawlResult is the per-run context: everything one crawl produced.
// Nothing in it is shared with another run.
type CrawlResult struct {
	RunID      string
	Repository Repository
	Strategy   Strategy
	Status     RunStatus

	// Records are in crawl order: page order, then commit order within a page,
	// then file order within a commit.
	Records []TouchRecord
	Counts  TouchCountIndex

	// CountPolicy selects what TouchTotal reports.
	CountPolicy CountPolicy

	// TouchingCommits is the number of commits that touched a tracked file.
	TouchingCommits int

	Pages           int
	CommitsSeen     int
	CommitsResolved int
	SkippedCommits  int
	Skipped         []SkippedCommit

	// AbortReason is the raw upstream payload of a fatal failure.
	AbortReason string
	Err         error

	StartedAt  time.Time
	FinishedAt time.Time

	// ProjectStart is the oldest commit date when probed, zero otherwise.
	ProjectStart time.Time
}

// NewCrawlResult creates an empty result for a run.
func NewCrawlResult(runID string, repo Repository, strategy Strategy) *CrawlResult {
	return &CrawlResult{
		RunID:      runID,
		Repository: repo,
		Strategy:   strategy,
		Status:     RunCompleted,
		Counts:     NewTouchCountIndex(),
	}
}

// Completed reports whether the crawl reached the end of history.
func (r *CrawlResult) Completed() bool {
	return r.Status == RunCompleted
}

// TouchTotal is the run's touch count under its CountPolicy.
func (r *CrawlResult) TouchTotal() int {
	if r.CountPolicy == CountPerCommit {
		return r.TouchingCommits
	}
	return r.Counts.Total()
}

// Duration returns the wall time of the run.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Skip records a recoverable failure for one commit.
func (r *CrawlResult) Skip(sha, reason string) {
	r.SkippedCommits++
	r.Skipped = append(r.Skipped, SkippedCommit{SHA: sha, Reason: reason})
}
