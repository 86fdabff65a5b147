package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/touchminer/internal/adapters/driven/auth"
	csvexport "github.com/custodia-labs/touchminer/internal/adapters/driven/export/csv"
	parquetexport "github.com/custodia-labs/touchminer/internal/adapters/driven/export/parquet"
	"github.com/custodia-labs/touchminer/internal/adapters/driven/inventory"
	"github.com/custodia-labs/touchminer/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/touchminer/internal/connectors/github"
	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
	"github.com/custodia-labs/touchminer/internal/core/ports/driving"
	"github.com/custodia-labs/touchminer/internal/core/services"
	"github.com/custodia-labs/touchminer/internal/logger"
)

// DefaultTouchesCSV is written when no output is configured.
const DefaultTouchesCSV = "authorFileTouches.csv"

// mineFlags holds the command-line overrides of one invocation.
type mineFlags struct {
	prefixes        []string
	inventory       string
	tokens          []string
	rotation        string
	requireAuth     bool
	concurrency     int
	timeout         time.Duration
	retries         int
	rate            float64
	baseURL         string
	strategy        string
	countPolicy     string
	probeStart      bool
	csv             string
	countsCSV       string
	sqliteDir       string
	parquetDir      string
	metricsTextfile string
	top             int
}

// sourceFactory builds the commit source of a run.
type sourceFactory func(settings *domain.MinerSettings, tokens driven.TokenProvider, observe func(endpoint, outcome string)) (driven.CommitSource, error)

func newMineCmd(g *globalFlags) *cobra.Command {
	return newMineCmdWith(g, newGitHubSource)
}

func newMineCmdWith(g *globalFlags, newSource sourceFactory) *cobra.Command {
	f := &mineFlags{}

	cmd := &cobra.Command{
		Use:   "mine [owner/name]",
		Short: "Crawl a repository and record file touches",
		Long: `Walks the repository's commit list page by page, fetches every commit's
detail and records one touch per tracked file the commit changed.

Tracked files are given either as path prefixes (--prefix src/) or as a CSV
inventory whose first column is the file path (--inventory file_rootbeer.csv).
Tokens come from --token, GITHUB_TOKENS/GITHUB_TOKEN or config.toml and are
rotated per request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(cmd, args, g, f, newSource)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&f.prefixes, "prefix", "p", nil, "track files under these path prefixes")
	flags.StringVarP(&f.inventory, "inventory", "i", "", "CSV file listing the tracked files")
	flags.StringSliceVarP(&f.tokens, "token", "t", nil, "GitHub token (repeatable)")
	flags.StringVar(&f.rotation, "rotation", "", "token rotation: round_robin or health_aware")
	flags.BoolVar(&f.requireAuth, "require-auth", false, "fail instead of crawling unauthenticated")
	flags.IntVarP(&f.concurrency, "concurrency", "c", domain.DefaultConcurrency, "commit details fetched in parallel")
	flags.DurationVar(&f.timeout, "timeout", domain.DefaultTimeout, "per-request timeout")
	flags.IntVar(&f.retries, "retries", domain.DefaultRetries, "retries for rate limits and server errors")
	flags.Float64Var(&f.rate, "rate", 0, "requests per second (0 derives from the token count, negative disables)")
	flags.StringVar(&f.baseURL, "base-url", "", "API base URL for GitHub Enterprise")
	flags.StringVar(&f.strategy, "strategy", "", "history or path_history")
	flags.StringVar(&f.countPolicy, "count-policy", "", "per_file or per_commit")
	flags.BoolVar(&f.probeStart, "probe-start", false, "record the date of the first commit")
	flags.StringVar(&f.csv, "csv", "", "write touch records to this CSV file")
	flags.StringVar(&f.countsCSV, "counts-csv", "", "write per-file touch counts to this CSV file")
	flags.StringVar(&f.sqliteDir, "sqlite-dir", "", "archive the run in a SQLite database in this directory")
	flags.StringVar(&f.parquetDir, "parquet-dir", "", "write Parquet files to this directory")
	flags.StringVar(&f.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	flags.IntVar(&f.top, "top", 10, "rows in the summary table")

	return cmd
}

func runMine(cmd *cobra.Command, args []string, g *globalFlags, f *mineFlags, newSource sourceFactory) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := loadSettings(cmd, args, g, f)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	repo, err := domain.ParseRepository(settings.Repository)
	if err != nil {
		return err
	}

	logger.Section("Setup")
	tracked, err := inventory.FromSettings(settings).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading tracked paths: %w", err)
	}
	tokens, err := auth.NewTokenProvider(settings.Tokens, settings.Rotation)
	if err != nil {
		return err
	}
	if tokens.AuthMethod() == domain.AuthMethodNone {
		logger.Warn("No GitHub token configured, using the unauthenticated rate limit")
	}

	metrics := services.NewMetrics()
	source, err := newSource(settings, tokens, metrics.ObserveRequest)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(settings)
	if err != nil {
		return err
	}
	defer closeSinks()

	progress := newProgressPrinter(cmd.ErrOrStderr())
	miner := services.NewMiner(source, tokens, services.MinerOptions{
		Concurrency:       settings.Concurrency,
		RequireAuth:       settings.RequireAuth,
		ProbeProjectStart: settings.ProbeStart,
		Metrics:           metrics,
		Progress:          progress.Update,
	})

	logger.Section("Crawl")
	result, mineErr := miner.Mine(ctx, driving.MineRequest{
		Repository:  repo,
		Tracked:     tracked,
		Strategy:    settings.Strategy,
		CountPolicy: settings.CountPolicy,
	})
	progress.Done()
	if result == nil {
		return mineErr
	}

	// Partial output of a cancelled run is still written
	emitCtx := context.WithoutCancel(ctx)
	emitter := services.NewEmitter(sinks...)
	emitErr := emitter.Emit(emitCtx, result)
	if settings.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(settings.MetricsTextfile); err != nil {
			emitErr = errors.Join(emitErr, fmt.Errorf("metrics: %w", err))
		}
	}

	if err := printSummary(cmd.OutOrStdout(), result, emitter.Sinks(), f.top); err != nil {
		logger.Warn("Printing summary: %v", err)
	}

	return errors.Join(mineErr, emitErr)
}

// loadSettings merges defaults, config.toml, the environment and flags, in
// that order of precedence.
func loadSettings(cmd *cobra.Command, args []string, g *globalFlags, f *mineFlags) (*domain.MinerSettings, error) {
	service, err := openSettings(g)
	if err != nil {
		return nil, err
	}
	settings, err := service.Get()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, f, settings)
	if len(args) > 0 {
		settings.Repository = args[0]
	}
	return settings, nil
}

// applyFlags copies every explicitly set flag over settings.
func applyFlags(cmd *cobra.Command, f *mineFlags, settings *domain.MinerSettings) {
	changed := cmd.Flags().Changed

	if changed("prefix") {
		settings.Prefixes = f.prefixes
		settings.Inventory = ""
	}
	if changed("inventory") {
		settings.Inventory = f.inventory
		if !changed("prefix") {
			settings.Prefixes = nil
		}
	}
	if changed("token") {
		settings.Tokens = f.tokens
	}
	if changed("rotation") {
		settings.Rotation = services.ParseOrRaw(domain.ParseRotation, f.rotation)
	}
	if changed("require-auth") {
		settings.RequireAuth = f.requireAuth
	}
	if changed("concurrency") {
		settings.Concurrency = f.concurrency
	}
	if changed("timeout") {
		settings.Timeout = f.timeout
	}
	if changed("retries") {
		settings.Retries = f.retries
	}
	if changed("rate") {
		settings.RequestsPerSecond = f.rate
	}
	if changed("base-url") {
		settings.BaseURL = f.baseURL
	}
	if changed("strategy") {
		settings.Strategy = services.ParseOrRaw(domain.ParseStrategy, f.strategy)
	}
	if changed("count-policy") {
		settings.CountPolicy = services.ParseOrRaw(domain.ParseCountPolicy, f.countPolicy)
	}
	if changed("probe-start") {
		settings.ProbeStart = f.probeStart
	}
	if changed("csv") {
		settings.Output.CSV = f.csv
	}
	if changed("counts-csv") {
		settings.Output.CountsCSV = f.countsCSV
	}
	if changed("sqlite-dir") {
		settings.Output.SQLiteDir = f.sqliteDir
	}
	if changed("parquet-dir") {
		settings.Output.ParquetDir = f.parquetDir
	}
	if changed("metrics-textfile") {
		settings.MetricsTextfile = f.metricsTextfile
	}
}

// buildSinks opens the configured outputs. The returned func closes them.
func buildSinks(settings *domain.MinerSettings) ([]driven.RecordSink, func(), error) {
	out := settings.Output
	if !out.HasAny() {
		out.CSV = DefaultTouchesCSV
	}

	var sinks []driven.RecordSink
	closeAll := func() {}

	if out.CSV != "" || out.CountsCSV != "" {
		sinks = append(sinks, &csvexport.Writer{TouchesPath: out.CSV, CountsPath: out.CountsCSV})
	}
	if out.ParquetDir != "" {
		sinks = append(sinks, &parquetexport.Writer{Dir: out.ParquetDir})
	}
	if out.SQLiteDir != "" {
		store, err := sqlite.NewStore(out.SQLiteDir)
		if err != nil {
			return nil, closeAll, fmt.Errorf("opening sqlite archive: %w", err)
		}
		sinks = append(sinks, store)
		closeAll = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Closing %s: %v", store.Path(), err)
			}
		}
	}
	return sinks, closeAll, nil
}

func newGitHubSource(
	settings *domain.MinerSettings,
	tokens driven.TokenProvider,
	observe func(endpoint, outcome string),
) (driven.CommitSource, error) {
	opts := github.DefaultOptions()
	opts.BaseURL = settings.BaseURL
	opts.Timeout = settings.Timeout
	opts.RequestsPerSecond = settings.RequestsPerSecond
	opts.Retry.MaxRetries = settings.Retries
	opts.Observer = observe

	connector, err := github.New(tokens, opts)
	if err != nil {
		return nil, fmt.Errorf("creating github connector: %w", err)
	}
	return connector, nil
}
