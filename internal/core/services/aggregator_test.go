package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

func mustPrefixes(t *testing.T, prefixes ...string) *domain.TrackedPathSet {
	t.Helper()
	set, err := domain.NewPrefixPathSet(prefixes)
	require.NoError(t, err)
	return set
}

func mustExact(t *testing.T, paths ...string) *domain.TrackedPathSet {
	t.Helper()
	set, err := domain.NewExactPathSet(paths)
	require.NoError(t, err)
	return set
}

func TestAggregator_PrefixFiltering(t *testing.T) {
	ts := time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator(mustPrefixes(t, "app/src"), domain.CountPerFile)

	records := agg.Record(domain.CommitDetail{
		SHA:          "c1",
		AuthorName:   "Ada",
		AuthorLogin:  "ada",
		Timestamp:    ts,
		ChangedPaths: []string{"app/src/main/Foo.java", "README.md", "app/src/main/Bar.kt"},
	})

	require.Len(t, records, 2)
	assert.Equal(t, "app/src/main/Foo.java", records[0].Path)
	assert.Equal(t, "app/src/main/Bar.kt", records[1].Path)
	for _, r := range records {
		assert.Equal(t, "Ada", r.AuthorName)
		assert.Equal(t, "ada", r.AuthorLogin)
		assert.Equal(t, ts, r.Timestamp)
		assert.Equal(t, "c1", r.CommitSHA)
	}
	assert.Equal(t, domain.TouchCountIndex{"app/src/main/Foo.java": 1, "app/src/main/Bar.kt": 1}, agg.Counts())
}

func TestAggregator_EmptyChangedPaths(t *testing.T) {
	agg := NewAggregator(mustPrefixes(t, "src"), domain.CountPerFile)

	assert.Empty(t, agg.Record(domain.CommitDetail{SHA: "c1"}))
	assert.Empty(t, agg.Record(domain.CommitDetail{SHA: "c2", ChangedPaths: []string{}}))
	assert.Empty(t, agg.Counts())
}

func TestAggregator_PathRecordedOncePerCommit(t *testing.T) {
	agg := NewAggregator(mustPrefixes(t, "src", "src/core"), domain.CountPerFile)

	records := agg.Record(domain.CommitDetail{ChangedPaths: []string{"src/core/a.go", "src/core/a.go"}})

	assert.Len(t, records, 1)
	assert.Equal(t, 1, agg.Counts()["src/core/a.go"])
}

func TestAggregator_CountPolicies(t *testing.T) {
	details := []domain.CommitDetail{
		{SHA: "1", ChangedPaths: []string{"a.go", "b.go", "README.md"}},
		{SHA: "2", ChangedPaths: []string{"b.go"}},
		{SHA: "3", ChangedPaths: []string{"docs/x.md"}},
	}

	tests := []struct {
		name       string
		policy     domain.CountPolicy
		wantPolicy domain.CountPolicy
		wantTotal  int
	}{
		{name: "per file", policy: domain.CountPerFile, wantPolicy: domain.CountPerFile, wantTotal: 3},
		{name: "per commit counts touching commits", policy: domain.CountPerCommit, wantPolicy: domain.CountPerCommit, wantTotal: 2},
		{name: "unknown policy falls back to per file", policy: domain.CountPolicy("bogus"), wantPolicy: domain.CountPerFile, wantTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(mustExact(t, "a.go", "b.go"), tt.policy)
			records := 0
			for _, d := range details {
				records += len(agg.Record(d))
			}

			assert.Equal(t, domain.TouchCountIndex{"a.go": 1, "b.go": 2}, agg.Counts(),
				"the index counts commits per path under every policy")
			assert.Equal(t, tt.wantPolicy, agg.Policy())
			assert.Equal(t, 2, agg.TouchingCommits())
			assert.Equal(t, tt.wantTotal, agg.Total())
			assert.Equal(t, 3, records, "records are per file under every policy")
		})
	}
}

func TestAggregator_IdempotentReaggregation(t *testing.T) {
	tracked := mustPrefixes(t, "src/")
	details := []domain.CommitDetail{
		{SHA: "1", ChangedPaths: []string{"src/a.go", "src/b.go"}},
		{SHA: "2", ChangedPaths: []string{"src/a.go", "test/a_test.go"}},
		{SHA: "3"},
	}

	run := func() domain.TouchCountIndex {
		agg := NewAggregator(tracked, domain.CountPerFile)
		for _, d := range details {
			agg.Record(d)
		}
		return agg.Counts()
	}

	first, second := run(), run()
	assert.Equal(t, first, second)
	assert.Equal(t, domain.TouchCountIndex{"src/a.go": 2, "src/b.go": 1}, first)
}

func TestAggregator_CountsIsSnapshot(t *testing.T) {
	agg := NewAggregator(mustPrefixes(t, "x"), domain.CountPerFile)
	agg.Record(domain.CommitDetail{ChangedPaths: []string{"x1"}})

	snap := agg.Counts()
	snap["x1"] = 99

	assert.Equal(t, 1, agg.Counts()["x1"])
}
