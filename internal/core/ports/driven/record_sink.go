package driven

import (
	"context"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// RecordSink receives the finished dataset of a run.
// Sinks must write records in the order given, without deduplication.
type RecordSink interface {
	// Name identifies the sink in logs and errors.
	Name() string

	// Write persists the records and count snapshot of result.
	Write(ctx context.Context, result *domain.CrawlResult) error
}

// TrackedPathSource loads the Tracked-Path Set at the start of a run.
type TrackedPathSource interface {
	Load(ctx context.Context) (*domain.TrackedPathSet, error)
}
