package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
	"github.com/custodia-labs/touchminer/internal/logger"
)

// Emitter hands a finished (or partial) crawl result to every configured sink.
type Emitter struct {
	sinks []driven.RecordSink
}

// NewEmitter creates an emitter writing to sinks in the given order.
func NewEmitter(sinks ...driven.RecordSink) *Emitter {
	return &Emitter{sinks: sinks}
}

// Sinks returns the names of the configured sinks.
func (e *Emitter) Sinks() []string {
	names := make([]string, 0, len(e.sinks))
	for _, s := range e.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Emit writes result to every sink. Records are passed through untouched.
// A failing sink does not stop the others; all failures are joined.
func (e *Emitter) Emit(ctx context.Context, result *domain.CrawlResult) error {
	var errs []error
	for _, s := range e.sinks {
		if err := s.Write(ctx, result); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		logger.Debug("Wrote %d records to %s", len(result.Records), s.Name())
	}
	return errors.Join(errs...)
}
