package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

func newResult(runID string, paths ...string) *domain.CrawlResult {
	result := domain.NewCrawlResult(runID, domain.Repository{Owner: "acme", Name: "widgets"}, domain.StrategyHistory)
	for _, p := range paths {
		result.Records = append(result.Records, domain.TouchRecord{Path: p})
		result.Counts.Increment(p)
	}
	return result
}

func TestSink_WriteAndGet(t *testing.T) {
	sink := NewSink()
	result := newResult("run-1", "a.go", "b.go", "a.go")

	require.NoError(t, sink.Write(context.Background(), result))

	got, err := sink.Get("run-1")
	require.NoError(t, err)
	assert.Len(t, got.Records, 3)
	assert.Equal(t, 2, got.Counts["a.go"])
	assert.Equal(t, "memory", sink.Name())
}

func TestSink_StoresCopy(t *testing.T) {
	sink := NewSink()
	result := newResult("run-1", "a.go")
	require.NoError(t, sink.Write(context.Background(), result))

	result.Records[0].Path = "mutated"
	result.Counts.Increment("a.go")

	got, err := sink.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, "a.go", got.Records[0].Path)
	assert.Equal(t, 1, got.Counts["a.go"])
}

func TestSink_RunsAndLatest(t *testing.T) {
	sink := NewSink()

	_, err := sink.Latest()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, sink.Write(context.Background(), newResult("run-1")))
	require.NoError(t, sink.Write(context.Background(), newResult("run-2", "x")))
	require.NoError(t, sink.Write(context.Background(), newResult("run-1", "y")))

	assert.Equal(t, []string{"run-1", "run-2"}, sink.Runs())
	latest, err := sink.Latest()
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.RunID)

	again, err := sink.Get("run-1")
	require.NoError(t, err)
	assert.Len(t, again.Records, 1, "rewriting a run replaces it")
}

func TestSink_Errors(t *testing.T) {
	sink := NewSink()

	assert.ErrorIs(t, sink.Write(context.Background(), nil), domain.ErrInvalidInput)
	_, err := sink.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
