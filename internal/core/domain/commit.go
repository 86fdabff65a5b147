package domain

import "time"

// CommitRef identifies one commit to resolve. It is a transient work item
// produced by the list walk and consumed once by the detail resolver.
type CommitRef struct {
	SHA string
}

// CommitPage is one page of the commit list endpoint.
type CommitPage struct {
	// Number is the 1-based page number.
	Number int

	// Refs are the commits on the page in API order (newest first).
	// An empty slice marks the end of history.
	Refs []CommitRef

	// LastPage is the Link header hint for the final page, 0 when unknown.
	// It is informational only and never used to stop the walk.
	LastPage int
}

// IsEmpty reports whether the page terminates the walk.
func (p CommitPage) IsEmpty() bool {
	return len(p.Refs) == 0
}

// CommitDetail is the resolved author, timestamp and changed paths of one commit.
// Fields missing from the upstream response are empty strings or the zero time.
type CommitDetail struct {
	SHA          string
	AuthorName   string
	AuthorLogin  string
	Timestamp    time.Time
	ChangedPaths []string
}

// HasTimestamp reports whether the author date was present and parseable.
func (d CommitDetail) HasTimestamp() bool {
	return !d.Timestamp.IsZero()
}

// SkippedCommit records a commit dropped by a recoverable failure.
type SkippedCommit struct {
	SHA    string
	Reason string
}
