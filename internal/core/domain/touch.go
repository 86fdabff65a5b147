package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TouchRecord is one (commit, matched path) observation.
type TouchRecord struct {
	Path        string
	AuthorName  string
	AuthorLogin string
	Timestamp   time.Time
	CommitSHA   string
}

// Date renders the timestamp in the upstream ISO 8601 form, or "" when unknown.
func (r TouchRecord) Date() string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.UTC().Format(time.RFC3339)
}

// TouchCountIndex maps a tracked path to the number of touches counted for it.
type TouchCountIndex map[string]int

// NewTouchCountIndex creates an empty index.
func NewTouchCountIndex() TouchCountIndex {
	return make(TouchCountIndex)
}

// Increment adds one touch for path, creating the entry at zero first.
func (idx TouchCountIndex) Increment(path string) {
	idx[path]++
}

// Clone returns an independent copy.
func (idx TouchCountIndex) Clone() TouchCountIndex {
	out := make(TouchCountIndex, len(idx))
	for k, v := range idx {
		out[k] = v
	}
	return out
}

// Total returns the sum of all counts.
func (idx TouchCountIndex) Total() int {
	total := 0
	for _, v := range idx {
		total += v
	}
	return total
}

// PathCount is one entry of a sorted index snapshot.
type PathCount struct {
	Path  string
	Count int
}

// Sorted returns entries by count descending, ties broken by path.
func (idx TouchCountIndex) Sorted() []PathCount {
	out := make([]PathCount, 0, len(idx))
	for k, v := range idx {
		out = append(out, PathCount{Path: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// CountPolicy decides what the run's touch total counts. The TouchCountIndex
// itself does not depend on it: every path maps to the number of commits
// that touched it.
type CountPolicy string

const (
	// CountPerFile counts one touch per matched file per commit, so the total
	// is the sum of the index.
	CountPerFile CountPolicy = "per_file"

	// CountPerCommit counts one touch per commit that touched any tracked
	// file, however many tracked files it changed.
	CountPerCommit CountPolicy = "per_commit"
)

// IsValid returns true if the policy is recognised.
func (p CountPolicy) IsValid() bool {
	return p == CountPerFile || p == CountPerCommit
}

// ParseCountPolicy parses a policy name. Empty selects CountPerFile.
func ParseCountPolicy(s string) (CountPolicy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return CountPerFile, nil
	}
	p := CountPolicy(strings.ReplaceAll(s, "-", "_"))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: count policy %q", ErrUnsupportedType, s)
	}
	return p, nil
}
