package services

import (
	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// Aggregator filters commit details against a tracked path set and counts touches.
// Each Aggregator owns its index; nothing is shared between instances.
type Aggregator struct {
	tracked  *domain.TrackedPathSet
	policy   domain.CountPolicy
	counts   domain.TouchCountIndex
	touching int
	seenSHAs map[string]struct{}
}

// NewAggregator creates an aggregator with an empty count index.
// An invalid policy falls back to domain.CountPerFile.
func NewAggregator(tracked *domain.TrackedPathSet, policy domain.CountPolicy) *Aggregator {
	if !policy.IsValid() {
		policy = domain.CountPerFile
	}
	return &Aggregator{
		tracked:  tracked,
		policy:   policy,
		counts:   domain.NewTouchCountIndex(),
		seenSHAs: make(map[string]struct{}),
	}
}

// Record returns one touch record per distinct tracked path of detail, in the
// commit's file order. Each matched path's count goes up by one, so the index
// maps a path to the number of commits that touched it.
func (a *Aggregator) Record(detail domain.CommitDetail) []domain.TouchRecord {
	if len(detail.ChangedPaths) == 0 {
		return nil
	}

	var records []domain.TouchRecord
	seen := make(map[string]struct{}, len(detail.ChangedPaths))
	for _, path := range detail.ChangedPaths {
		if _, dup := seen[path]; dup || !a.tracked.Match(path) {
			continue
		}
		seen[path] = struct{}{}

		records = append(records, domain.TouchRecord{
			Path:        path,
			AuthorName:  detail.AuthorName,
			AuthorLogin: detail.AuthorLogin,
			Timestamp:   detail.Timestamp,
			CommitSHA:   detail.SHA,
		})
		a.counts.Increment(path)
	}
	if len(records) > 0 {
		a.countTouching(detail.SHA)
	}
	return records
}

// countTouching counts a commit once even when it is recorded again for
// another path. Commits without a SHA cannot be told apart and always count.
func (a *Aggregator) countTouching(sha string) {
	if sha != "" {
		if _, seen := a.seenSHAs[sha]; seen {
			return
		}
		a.seenSHAs[sha] = struct{}{}
	}
	a.touching++
}

// Policy returns the effective count policy.
func (a *Aggregator) Policy() domain.CountPolicy {
	return a.policy
}

// TouchingCommits returns how many recorded commits touched a tracked path.
func (a *Aggregator) TouchingCommits() int {
	return a.touching
}

// Total returns the touch total under the policy: the index sum for
// CountPerFile, the number of touching commits for CountPerCommit.
func (a *Aggregator) Total() int {
	if a.policy == domain.CountPerCommit {
		return a.touching
	}
	return a.counts.Total()
}

// Counts returns a snapshot of the index.
func (a *Aggregator) Counts() domain.TouchCountIndex {
	return a.counts.Clone()
}
