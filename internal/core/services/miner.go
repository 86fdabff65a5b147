package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
	"github.com/custodia-labs/touchminer/internal/core/ports/driving"
	"github.com/custodia-labs/touchminer/internal/logger"
)

// Ensure MinerService implements the interface.
var _ driving.Miner = (*MinerService)(nil)

// MinerOptions tunes a MinerService.
type MinerOptions struct {
	// Concurrency bounds in-flight detail requests per page. 1 is strictly sequential.
	Concurrency int

	// RequireAuth rejects a crawl whose token provider has no credentials.
	RequireAuth bool

	// ProbeProjectStart records the oldest commit date before crawling.
	ProbeProjectStart bool

	// Metrics is optional.
	Metrics *Metrics

	// Progress, when set, is called after every page with a status snapshot.
	Progress func(driving.MineStatus)

	// NewRunID and Now are replaceable for tests.
	NewRunID func() string
	Now      func() time.Time
}

// MinerService walks a repository's history and turns it into touch records.
type MinerService struct {
	source     driven.CommitSource
	tokens     driven.TokenProvider
	prober     driven.HistoryProber
	pathLister driven.PathHistoryLister
	opts       MinerOptions

	// Status tracking
	mu     sync.RWMutex
	status driving.MineStatus
}

// NewMiner creates a miner. Optional capabilities (history probing, path
// history) are discovered from source.
func NewMiner(source driven.CommitSource, tokens driven.TokenProvider, opts MinerOptions) *MinerService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &MinerService{source: source, tokens: tokens, opts: opts}
	if p, ok := source.(driven.HistoryProber); ok {
		m.prober = p
	}
	if l, ok := source.(driven.PathHistoryLister); ok {
		m.pathLister = l
	}
	return m
}

// Mine runs one crawl. The returned result is never nil once validation
// passes; on abort or cancellation it holds the records gathered so far and
// the error is returned alongside it.
func (m *MinerService) Mine(ctx context.Context, req driving.MineRequest) (*domain.CrawlResult, error) {
	strategy, policy, err := m.validate(req)
	if err != nil {
		return nil, err
	}

	result := domain.NewCrawlResult(m.opts.NewRunID(), req.Repository, strategy)
	result.StartedAt = m.opts.Now()

	m.begin()
	defer m.finish()

	logger.Info("Mining %s: %s strategy, %d tracked %s, concurrency %d",
		req.Repository, strategy, req.Tracked.Len(), req.Tracked.Mode(), m.opts.Concurrency)

	if m.opts.ProbeProjectStart {
		m.probe(ctx, req.Repository, result)
	}

	agg := NewAggregator(req.Tracked, policy)
	switch strategy {
	case domain.StrategyPathHistory:
		err = m.minePaths(ctx, req, agg, result)
	default:
		err = m.mineHistory(ctx, req.Repository, agg, result)
	}

	result.Counts = agg.Counts()
	result.CountPolicy = agg.Policy()
	result.TouchingCommits = agg.TouchingCommits()
	result.FinishedAt = m.opts.Now()
	return m.conclude(ctx, result, err)
}

// Status returns a snapshot of the running crawl.
func (m *MinerService) Status() driving.MineStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *MinerService) validate(req driving.MineRequest) (domain.Strategy, domain.CountPolicy, error) {
	if err := req.Repository.Validate(); err != nil {
		return "", "", err
	}
	if req.Tracked == nil || req.Tracked.Len() == 0 {
		return "", "", fmt.Errorf("%w: tracked path set is empty", domain.ErrInvalidInput)
	}
	if m.opts.RequireAuth && (m.tokens == nil || m.tokens.Size() == 0) {
		return "", "", fmt.Errorf("%w: authenticated mode requested", domain.ErrNoCredentials)
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = domain.StrategyHistory
	}
	if !strategy.IsValid() {
		return "", "", fmt.Errorf("%w: strategy %q", domain.ErrUnsupportedType, strategy)
	}
	if strategy == domain.StrategyPathHistory {
		if req.Tracked.Mode() != domain.MatchExact {
			return "", "", fmt.Errorf("%w: path history needs exact paths", domain.ErrInvalidInput)
		}
		if m.pathLister == nil {
			return "", "", fmt.Errorf("%w: source cannot list path history", domain.ErrUnsupportedType)
		}
	}

	policy := req.CountPolicy
	if policy == "" {
		policy = domain.CountPerFile
	}
	if !policy.IsValid() {
		return "", "", fmt.Errorf("%w: count policy %q", domain.ErrUnsupportedType, policy)
	}
	return strategy, policy, nil
}

// mineHistory walks every list page and resolves its commits.
func (m *MinerService) mineHistory(
	ctx context.Context, repo domain.Repository, agg *Aggregator, result *domain.CrawlResult,
) error {
	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pages, errs := ListCommits(walkCtx, m.source, repo)
	for page := range pages {
		m.resolvePage(ctx, repo, page, agg, result)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return <-errs
}

// resolvePage fetches the details of one page with bounded concurrency and
// aggregates them in list order once the page is complete.
func (m *MinerService) resolvePage(
	ctx context.Context, repo domain.Repository, page domain.CommitPage, agg *Aggregator, result *domain.CrawlResult,
) {
	details := make([]*domain.CommitDetail, len(page.Refs))
	failures := make([]error, len(page.Refs))

	// Plain group: one failed commit must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(m.opts.Concurrency)
	for i, ref := range page.Refs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			details[i], failures[i] = m.source.GetCommit(ctx, repo, ref)
			return nil
		})
	}
	_ = g.Wait()

	result.Pages++
	result.CommitsSeen += len(page.Refs)
	m.opts.Metrics.PageProcessed()

	for i, ref := range page.Refs {
		switch {
		case failures[i] != nil:
			if ctx.Err() != nil && errors.Is(failures[i], ctx.Err()) {
				continue
			}
			logger.Warn("Skipping commit %s: %v", displaySHA(ref.SHA), failures[i])
			result.Skip(ref.SHA, failures[i].Error())
			m.opts.Metrics.CommitSkipped()
		case details[i] != nil:
			records := agg.Record(*details[i])
			result.Records = append(result.Records, records...)
			result.CommitsResolved++
			m.opts.Metrics.CommitResolved(len(records))
		}
	}

	logger.Debug("Page %d: %d commits, %d records so far", page.Number, len(page.Refs), len(result.Records))
	m.update(result, page.LastPage)
}

// minePaths lists the history of every tracked file with the path filter.
func (m *MinerService) minePaths(
	ctx context.Context, req driving.MineRequest, agg *Aggregator, result *domain.CrawlResult,
) error {
	for _, path := range req.Tracked.Members() {
		for n := 1; ; n++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			details, err := m.pathLister.ListPathCommits(ctx, req.Repository, path, n)
			if err != nil {
				return err
			}
			if len(details) == 0 {
				break
			}

			result.Pages++
			result.CommitsSeen += len(details)
			m.opts.Metrics.PageProcessed()
			for _, detail := range details {
				records := agg.Record(detail)
				result.Records = append(result.Records, records...)
				result.CommitsResolved++
				m.opts.Metrics.CommitResolved(len(records))
			}
			m.update(result, 0)
		}
	}
	return nil
}

func (m *MinerService) probe(ctx context.Context, repo domain.Repository, result *domain.CrawlResult) {
	if m.prober == nil {
		logger.Debug("Source cannot probe project start, skipping")
		return
	}
	start, err := m.prober.FirstCommitDate(ctx, repo)
	if err != nil {
		logger.Warn("Project start probe failed: %v", err)
		return
	}
	result.ProjectStart = start
	logger.Info("Project started %s", start.Format(time.DateOnly))
}

// conclude classifies the end of a crawl.
func (m *MinerService) conclude(ctx context.Context, result *domain.CrawlResult, err error) (*domain.CrawlResult, error) {
	switch {
	case err == nil:
		result.Status = domain.RunCompleted
		logger.Info("Crawl complete: %d pages, %d commits, %d records, %d skipped",
			result.Pages, result.CommitsResolved, len(result.Records), result.SkippedCommits)
		return result, nil

	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		result.Status = domain.RunCancelled
		result.Err = err
		logger.Warn("Crawl cancelled after %d pages, %d records kept", result.Pages, len(result.Records))
		return result, err
	}

	result.Status = domain.RunAborted
	var fatal *domain.FatalError
	if errors.As(err, &fatal) {
		result.AbortReason = fatal.Payload
	} else {
		result.AbortReason = err.Error()
	}
	result.Err = fmt.Errorf("%w: %w", domain.ErrCrawlAborted, err)
	logger.Error("Crawl aborted after %d pages: %s", result.Pages, result.AbortReason)
	return result, result.Err
}

func (m *MinerService) begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = driving.MineStatus{Running: true}
}

func (m *MinerService) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Running = false
}

func (m *MinerService) update(result *domain.CrawlResult, lastPage int) {
	m.mu.Lock()
	m.status.Pages = result.Pages
	if lastPage > 0 {
		m.status.LastPage = lastPage
	}
	m.status.CommitsResolved = result.CommitsResolved
	m.status.SkippedCommits = result.SkippedCommits
	m.status.Records = len(result.Records)
	snapshot := m.status
	m.mu.Unlock()

	if m.opts.Progress != nil {
		m.opts.Progress(snapshot)
	}
}

func displaySHA(sha string) string {
	switch {
	case sha == "":
		return "(no sha)"
	case len(sha) > 12:
		return sha[:12]
	}
	return sha
}
