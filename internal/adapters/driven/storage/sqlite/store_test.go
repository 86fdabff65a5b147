package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func sampleResult(runID string) *domain.CrawlResult {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	result := domain.NewCrawlResult(runID, domain.Repository{Owner: "acme", Name: "widgets"}, domain.StrategyHistory)
	result.StartedAt = started
	result.FinishedAt = started.Add(90 * time.Second)
	result.ProjectStart = time.Date(2015, 1, 2, 3, 4, 5, 0, time.UTC)
	result.Pages = 2
	result.CommitsSeen = 3
	result.CommitsResolved = 2
	result.Skip("deadbeef", "response has no commit object: Server Error")
	result.Records = []domain.TouchRecord{
		{Path: "src/a.go", AuthorName: "Ada", AuthorLogin: "ada", Timestamp: started, CommitSHA: "c1"},
		{Path: "src/b.go", AuthorName: "Ada", AuthorLogin: "ada", Timestamp: started, CommitSHA: "c1"},
		{Path: "src/a.go", AuthorName: "", AuthorLogin: "", CommitSHA: "c2"},
	}
	result.Counts = domain.TouchCountIndex{"src/a.go": 2, "src/b.go": 1}
	result.CountPolicy = domain.CountPerCommit
	result.TouchingCommits = 2
	return result
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewStore(nested)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(nested, DatabaseFile), store.Path())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	err := store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"runs", "touches", "touch_counts", "skipped_commits"} {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenDoesNotReapplyMigrations(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Write(context.Background(), sampleResult("run-1")))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)

	runs, err := second.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_ForeignKeysEnabled(t *testing.T) {
	store := setupTestStore(t)

	var fkEnabled int
	require.NoError(t, store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled))
	assert.Equal(t, 1, fkEnabled)
}

func TestStore_WriteAndRead(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	result := sampleResult("run-1")

	require.NoError(t, store.Write(ctx, result))

	run, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", run.Repository)
	assert.Equal(t, domain.StrategyHistory, run.Strategy)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, 2, run.Pages)
	assert.Equal(t, 1, run.SkippedCommits)
	assert.Equal(t, domain.CountPerCommit, run.CountPolicy)
	assert.Equal(t, 2, run.TouchingCommits)
	assert.Equal(t, 3, run.Records)
	assert.Equal(t, result.StartedAt, run.StartedAt)
	assert.Equal(t, result.FinishedAt, run.FinishedAt)
	assert.Equal(t, result.ProjectStart, run.ProjectStart)

	touches, err := store.Touches(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, result.Records, touches)

	counts, err := store.Counts(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, result.Counts, counts)
	assert.Equal(t, "sqlite", store.Name())
}

func TestStore_WriteAbortedRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	result := sampleResult("run-2")
	result.Status = domain.RunAborted
	result.AbortReason = `{"message":"Bad credentials"}`
	result.FinishedAt = time.Time{}

	require.NoError(t, store.Write(ctx, result))

	run, err := store.GetRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, domain.RunAborted, run.Status)
	assert.Equal(t, `{"message":"Bad credentials"}`, run.AbortReason)
	assert.True(t, run.FinishedAt.IsZero())
}

func TestStore_RewriteReplacesRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	result := sampleResult("run-1")
	require.NoError(t, store.Write(ctx, result))

	result.Records = result.Records[:1]
	result.Counts = domain.TouchCountIndex{"src/a.go": 1}
	require.NoError(t, store.Write(ctx, result))

	touches, err := store.Touches(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, touches, 1)
	counts, err := store.Counts(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TouchCountIndex{"src/a.go": 1}, counts)
}

func TestStore_RunsAreIsolated(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := sampleResult("run-1")
	second := sampleResult("run-2")
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.Records = nil
	second.Counts = domain.NewTouchCountIndex()

	require.NoError(t, store.Write(ctx, first))
	require.NoError(t, store.Write(ctx, second))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID, "newest first")

	touches, err := store.Touches(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, touches)
}

func TestStore_Errors(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Write(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Write(ctx, domain.NewCrawlResult("", domain.Repository{}, "")), domain.ErrInvalidInput)
}
