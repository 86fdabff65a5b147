// Package parquet exports a run's touch records and count index as Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// File names inside the output directory.
const (
	TouchesFile = "touches.parquet"
	CountsFile  = "touch_counts.parquet"
)

// TouchRow is one touch record.
type TouchRow struct {
	RunID      string `parquet:"run_id,snappy,dict"`
	Repository string `parquet:"repository,snappy,dict"`
	File       string `parquet:"file,snappy"`
	// AuthoredAt is null when the commit carried no usable date
	AuthoredAt  *time.Time `parquet:"authored_at,optional,snappy"`
	AuthorName  string     `parquet:"author_name,snappy"`
	AuthorLogin string     `parquet:"author_login,snappy"`
	CommitSHA   string     `parquet:"commit_sha,snappy"`
}

// CountRow is one entry of the touch count index.
type CountRow struct {
	RunID    string `parquet:"run_id,snappy,dict"`
	Filename string `parquet:"filename,snappy"`
	Touches  int64  `parquet:"touches,snappy"`
}

// Ensure Writer implements the interface.
var _ driven.RecordSink = (*Writer)(nil)

// Writer is a driven.RecordSink writing TouchesFile and CountsFile into Dir.
type Writer struct {
	Dir string
}

// Name returns the sink identifier.
func (w *Writer) Name() string {
	return "parquet"
}

// Write exports result.
func (w *Writer) Write(ctx context.Context, result *domain.CrawlResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeRows(filepath.Join(w.Dir, TouchesFile), ConvertTouches(result)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeRows(filepath.Join(w.Dir, CountsFile), ConvertCounts(result))
}

// ConvertTouches maps records to rows in crawl order.
func ConvertTouches(result *domain.CrawlResult) []TouchRow {
	repo := result.Repository.FullName()
	rows := make([]TouchRow, len(result.Records))
	for i, r := range result.Records {
		row := TouchRow{
			RunID:       result.RunID,
			Repository:  repo,
			File:        r.Path,
			AuthorName:  r.AuthorName,
			AuthorLogin: r.AuthorLogin,
			CommitSHA:   r.CommitSHA,
		}
		if !r.Timestamp.IsZero() {
			ts := r.Timestamp.UTC()
			row.AuthoredAt = &ts
		}
		rows[i] = row
	}
	return rows
}

// ConvertCounts maps the count index to rows, most touched first.
func ConvertCounts(result *domain.CrawlResult) []CountRow {
	sorted := result.Counts.Sorted()
	rows := make([]CountRow, len(sorted))
	for i, pc := range sorted {
		rows[i] = CountRow{RunID: result.RunID, Filename: pc.Path, Touches: int64(pc.Count)}
	}
	return rows
}

func writeRows[T any](path string, rows []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// Close flushes the footer and must precede the file close
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	return file.Close()
}
