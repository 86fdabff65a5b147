package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RecordSink = (*Store)(nil)

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID              string
	Repository      string
	Strategy        domain.Strategy
	Status          domain.RunStatus
	Pages           int
	CommitsSeen     int
	CommitsResolved int
	SkippedCommits  int
	CountPolicy     domain.CountPolicy
	TouchingCommits int
	Records         int
	AbortReason     string
	ProjectStart    time.Time
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Name returns the sink identifier.
func (s *Store) Name() string {
	return "sqlite"
}

// Write archives result in one transaction. Writing a run ID again replaces
// the earlier rows.
func (s *Store) Write(ctx context.Context, result *domain.CrawlResult) error {
	if result == nil || result.RunID == "" {
		return fmt.Errorf("%w: result has no run id", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", result.RunID); err != nil {
		return fmt.Errorf("clearing run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, repository, strategy, status, pages, commits_seen, commits_resolved,
			skipped_commits, count_policy, touching_commits, abort_reason, project_start,
			started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.RunID, result.Repository.FullName(), string(result.Strategy), string(result.Status),
		result.Pages, result.CommitsSeen, result.CommitsResolved, result.SkippedCommits,
		string(countPolicyOf(result)), result.TouchingCommits, result.AbortReason, formatTime(result.ProjectStart), formatTime(result.StartedAt),
		formatTime(result.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if err := insertTouches(ctx, tx, result); err != nil {
		return err
	}
	if err := insertCounts(ctx, tx, result); err != nil {
		return err
	}
	if err := insertSkipped(ctx, tx, result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertTouches(ctx context.Context, tx *sql.Tx, result *domain.CrawlResult) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO touches (run_id, seq, path, commit_sha, author_name, author_login, authored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range result.Records {
		if _, err := stmt.ExecContext(ctx, result.RunID, i, r.Path, r.CommitSHA,
			r.AuthorName, r.AuthorLogin, r.Date()); err != nil {
			return fmt.Errorf("saving touch: %w", err)
		}
	}
	return nil
}

func insertCounts(ctx context.Context, tx *sql.Tx, result *domain.CrawlResult) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO touch_counts (run_id, path, touches) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for path, n := range result.Counts {
		if _, err := stmt.ExecContext(ctx, result.RunID, path, n); err != nil {
			return fmt.Errorf("saving touch count: %w", err)
		}
	}
	return nil
}

func insertSkipped(ctx context.Context, tx *sql.Tx, result *domain.CrawlResult) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO skipped_commits (run_id, seq, commit_sha, reason) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, sk := range result.Skipped {
		if _, err := stmt.ExecContext(ctx, result.RunID, i, sk.SHA, sk.Reason); err != nil {
			return fmt.Errorf("saving skipped commit: %w", err)
		}
	}
	return nil
}

// GetRun retrieves one archived run.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return run, err
}

// ListRuns returns archived runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Touches returns the touch records of a run in crawl order.
func (s *Store) Touches(ctx context.Context, runID string) ([]domain.TouchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, commit_sha, author_name, author_login, authored_at
		FROM touches WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying touches: %w", err)
	}
	defer rows.Close()

	var records []domain.TouchRecord
	for rows.Next() {
		var r domain.TouchRecord
		var date string
		if err := rows.Scan(&r.Path, &r.CommitSHA, &r.AuthorName, &r.AuthorLogin, &date); err != nil {
			return nil, fmt.Errorf("scanning touch: %w", err)
		}
		r.Timestamp = parseTime(date)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Counts returns the touch count index of a run.
func (s *Store) Counts(ctx context.Context, runID string) (domain.TouchCountIndex, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, touches FROM touch_counts WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("querying touch counts: %w", err)
	}
	defer rows.Close()

	counts := domain.NewTouchCountIndex()
	for rows.Next() {
		var path string
		var n int
		if err := rows.Scan(&path, &n); err != nil {
			return nil, fmt.Errorf("scanning touch count: %w", err)
		}
		counts[path] = n
	}
	return counts, rows.Err()
}

const runColumns = `id, repository, strategy, status, pages, commits_seen, commits_resolved,
	skipped_commits, count_policy, touching_commits,
	(SELECT COUNT(*) FROM touches t WHERE t.run_id = runs.id),
	abort_reason, project_start, started_at, finished_at`

func countPolicyOf(result *domain.CrawlResult) domain.CountPolicy {
	if result.CountPolicy == "" {
		return domain.CountPerFile
	}
	return result.CountPolicy
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunSummary, error) {
	var run RunSummary
	var strategy, status, policy, projectStart, startedAt, finishedAt string
	err := row.Scan(&run.ID, &run.Repository, &strategy, &status, &run.Pages, &run.CommitsSeen,
		&run.CommitsResolved, &run.SkippedCommits, &policy, &run.TouchingCommits, &run.Records,
		&run.AbortReason, &projectStart, &startedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.Strategy = domain.Strategy(strategy)
	run.Status = domain.RunStatus(status)
	run.CountPolicy = domain.CountPolicy(policy)
	run.ProjectStart = parseTime(projectStart)
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	return &run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
