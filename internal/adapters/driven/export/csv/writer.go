// Package csv writes a run's touch records and count index as CSV files
// readable by the plotting scripts that consume authorFileTouches.csv.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// Column headers.
var (
	TouchHeader = []string{"file", "date", "name", "login"}
	CountHeader = []string{"filename", "touches"}
)

// Ensure Writer implements the interface.
var _ driven.RecordSink = (*Writer)(nil)

// Writer is a driven.RecordSink producing up to two CSV files. An empty
// path disables that file.
type Writer struct {
	TouchesPath string
	CountsPath  string
}

// Name returns the sink identifier.
func (w *Writer) Name() string {
	return "csv"
}

// Write writes the records in crawl order and the counts sorted by count.
func (w *Writer) Write(ctx context.Context, result *domain.CrawlResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}
	if w.TouchesPath != "" {
		if err := writeFile(w.TouchesPath, func(out io.Writer) error {
			return WriteTouches(ctx, out, result.Records)
		}); err != nil {
			return err
		}
	}
	if w.CountsPath != "" {
		if err := writeFile(w.CountsPath, func(out io.Writer) error {
			return WriteCounts(out, result.Counts)
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteTouches writes the header and one row per record.
func WriteTouches(ctx context.Context, out io.Writer, records []domain.TouchRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(TouchHeader); err != nil {
		return err
	}
	for i, r := range records {
		if i%1000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		if err := cw.Write([]string{r.Path, r.Date(), r.AuthorName, r.AuthorLogin}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCounts writes the header and one row per path, most touched first.
func WriteCounts(out io.Writer, counts domain.TouchCountIndex) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(CountHeader); err != nil {
		return err
	}
	for _, pc := range counts.Sorted() {
		if err := cw.Write([]string{pc.Path, strconv.Itoa(pc.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path string, fill func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
