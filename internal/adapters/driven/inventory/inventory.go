// Package inventory provides the driven.TrackedPathSource implementations:
// an exact file list read from CSV and a prefix list from configuration.
package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
)

// HeaderCell is the first cell of an optional header row.
const HeaderCell = "filename"

var (
	_ driven.TrackedPathSource = (*CSVInventory)(nil)
	_ driven.TrackedPathSource = StaticPrefixes(nil)
)

// CSVInventory reads a file inventory whose first column is the repository
// path of each source file. Other columns are ignored.
type CSVInventory struct {
	Path string
}

// Load reads the inventory into an exact path set.
func (c *CSVInventory) Load(_ context.Context) (*domain.TrackedPathSet, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("opening inventory: %w", err)
	}
	defer f.Close()

	paths, err := ReadPaths(f)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", c.Path, err)
	}
	return domain.NewExactPathSet(paths)
}

// ReadPaths returns column 0 of every data row in r. A first row whose
// first cell is "filename" is a header; blank rows are skipped.
func ReadPaths(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var paths []string
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		cell := strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		if first {
			first = false
			if strings.EqualFold(cell, HeaderCell) {
				continue
			}
		}
		if cell == "" {
			continue
		}
		paths = append(paths, cell)
	}
	return paths, nil
}

// StaticPrefixes is a prefix set given directly in configuration.
type StaticPrefixes []string

// Load builds the prefix set.
func (p StaticPrefixes) Load(_ context.Context) (*domain.TrackedPathSet, error) {
	return domain.NewPrefixPathSet(p)
}

// FromSettings picks the source configured in settings: the inventory file
// when set, the prefixes otherwise.
func FromSettings(settings *domain.MinerSettings) driven.TrackedPathSource {
	if settings.Inventory != "" {
		return &CSVInventory{Path: settings.Inventory}
	}
	return StaticPrefixes(settings.Prefixes)
}
