package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/touchminer/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/touchminer/internal/core/domain"
)

func archiveRun(t *testing.T, dir, runID string) *domain.CrawlResult {
	t.Helper()
	store, err := sqlite.NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	result := domain.NewCrawlResult(runID, domain.Repository{Owner: "acme", Name: "widgets"}, domain.StrategyHistory)
	result.StartedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	result.FinishedAt = result.StartedAt.Add(2 * time.Minute)
	result.Pages = 1
	result.CommitsSeen = 2
	result.CommitsResolved = 2
	result.CountPolicy = domain.CountPerFile
	result.TouchingCommits = 2
	result.Records = []domain.TouchRecord{
		{Path: "src/a.go", AuthorName: "Ada", AuthorLogin: "ada", CommitSHA: "c1"},
		{Path: "src/b.go", AuthorName: "Ada", AuthorLogin: "ada", CommitSHA: "c1"},
		{Path: "src/a.go", AuthorName: "Bob", AuthorLogin: "bob", CommitSHA: "c2"},
	}
	result.Counts = domain.TouchCountIndex{"src/a.go": 2, "src/b.go": 1}
	require.NoError(t, store.Write(context.Background(), result))
	return result
}

func TestRuns_List(t *testing.T) {
	r := newCLIRun(t)
	dir := t.TempDir()
	archiveRun(t, dir, "run-1")

	stdout, stderr, code := r.run("runs", "--sqlite-dir", dir)

	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "run-1")
	assert.Contains(t, stdout, "acme/widgets")
	assert.Contains(t, stdout, "completed")
}

func TestRuns_ListUsesConfiguredArchive(t *testing.T) {
	r := newCLIRun(t)
	dir := t.TempDir()
	archiveRun(t, dir, "run-from-config")
	_, _, code := r.run("settings", "set", "output.sqlite_dir", dir)
	require.Equal(t, ExitOK, code)

	stdout, _, code := r.run("runs")

	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "run-from-config")
}

func TestRuns_EmptyArchive(t *testing.T) {
	r := newCLIRun(t)

	stdout, _, code := r.run("runs", "--sqlite-dir", t.TempDir())

	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "No runs archived")
}

func TestRuns_NoArchiveConfigured(t *testing.T) {
	r := newCLIRun(t)

	_, stderr, code := r.run("runs")

	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "no archive configured")
}

func TestRuns_Show(t *testing.T) {
	r := newCLIRun(t)
	dir := t.TempDir()
	archiveRun(t, dir, "run-1")

	stdout, stderr, code := r.run("runs", "show", "run-1", "--sqlite-dir", dir)

	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "Touches for acme/widgets")
	assert.Contains(t, stdout, "2 resolved, 0 skipped")
	assert.Contains(t, stdout, "3 (per_file)")
	assert.Contains(t, stdout, "src/a.go")

	_, stderr, code = r.run("runs", "show", "missing", "--sqlite-dir", dir)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "not found")
}

func TestRuns_Export(t *testing.T) {
	r := newCLIRun(t)
	dir := t.TempDir()
	archiveRun(t, dir, "run-1")
	out := t.TempDir()

	stdout, stderr, code := r.run("runs", "export", "run-1", "--sqlite-dir", dir,
		"--csv", filepath.Join(out, "touches.csv"),
		"--counts-csv", filepath.Join(out, "counts.csv"))

	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "Exported 3 touch records of run run-1")
	assert.Equal(t, [][]string{
		{"file", "date", "name", "login"},
		{"src/a.go", "", "Ada", "ada"},
		{"src/b.go", "", "Ada", "ada"},
		{"src/a.go", "", "Bob", "bob"},
	}, readCSV(t, filepath.Join(out, "touches.csv")))
	assert.Equal(t, [][]string{
		{"filename", "touches"},
		{"src/a.go", "2"},
		{"src/b.go", "1"},
	}, readCSV(t, filepath.Join(out, "counts.csv")))

	_, _, code = r.run("runs", "export", "run-1", "--sqlite-dir", dir)
	assert.Equal(t, ExitError, code, "an export needs a destination")
}
