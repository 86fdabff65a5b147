package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	csvexport "github.com/custodia-labs/touchminer/internal/adapters/driven/export/csv"
	"github.com/custodia-labs/touchminer/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/touchminer/internal/core/domain"
)

func newRunsCmd(g *globalFlags) *cobra.Command {
	var sqliteDir string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs archived in the SQLite output",
		Long: `List, inspect and re-export the runs a mine command archived with
--sqlite-dir (or output.sqlite_dir in config.toml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openArchive(g, sqliteDir)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				cmd.Printf("No runs archived in %s\n", store.Path())
				return nil
			}
			return writeRunTable(cmd.OutOrStdout(), runs)
		},
	}
	cmd.PersistentFlags().StringVar(&sqliteDir, "sqlite-dir", "", "archive directory (default output.sqlite_dir)")

	var top int
	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the summary of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(g, sqliteDir)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := loadRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), result, nil, top)
		},
	}
	show.Flags().IntVar(&top, "top", 10, "number of most touched files to list")

	var touchesCSV, countsCSV string
	export := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write an archived run back out as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if touchesCSV == "" && countsCSV == "" {
				return fmt.Errorf("%w: pass --csv or --counts-csv", domain.ErrInvalidInput)
			}
			store, err := openArchive(g, sqliteDir)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := loadRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			writer := &csvexport.Writer{TouchesPath: touchesCSV, CountsPath: countsCSV}
			if err := writer.Write(cmd.Context(), result); err != nil {
				return err
			}
			cmd.Printf("Exported %s touch records of run %s\n", humanize.Comma(int64(len(result.Records))), result.RunID)
			return nil
		},
	}
	export.Flags().StringVar(&touchesCSV, "csv", "", "touch records CSV path")
	export.Flags().StringVar(&countsCSV, "counts-csv", "", "touch counts CSV path")

	cmd.AddCommand(show, export)
	return cmd
}

// openArchive opens dir, falling back to output.sqlite_dir from the settings.
func openArchive(g *globalFlags, dir string) (*sqlite.Store, error) {
	if dir == "" {
		service, err := openSettings(g)
		if err != nil {
			return nil, err
		}
		settings, err := service.Get()
		if err != nil {
			return nil, err
		}
		dir = settings.Output.SQLiteDir
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: no archive configured (pass --sqlite-dir or set output.sqlite_dir)",
			domain.ErrInvalidInput)
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite archive: %w", err)
	}
	return store, nil
}

// loadRun rebuilds the crawl result of an archived run.
func loadRun(cmd *cobra.Command, store *sqlite.Store, runID string) (*domain.CrawlResult, error) {
	ctx := cmd.Context()
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	repo, err := domain.ParseRepository(run.Repository)
	if err != nil {
		return nil, err
	}
	result := domain.NewCrawlResult(run.ID, repo, run.Strategy)
	result.Status = run.Status
	result.Pages = run.Pages
	result.CommitsSeen = run.CommitsSeen
	result.CommitsResolved = run.CommitsResolved
	result.SkippedCommits = run.SkippedCommits
	result.CountPolicy = run.CountPolicy
	result.TouchingCommits = run.TouchingCommits
	result.AbortReason = run.AbortReason
	result.ProjectStart = run.ProjectStart
	result.StartedAt = run.StartedAt
	result.FinishedAt = run.FinishedAt

	if result.Records, err = store.Touches(ctx, runID); err != nil {
		return nil, err
	}
	if result.Counts, err = store.Counts(ctx, runID); err != nil {
		return nil, err
	}
	return result, nil
}

func writeRunTable(w io.Writer, runs []sqlite.RunSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Repository", "Status", "Records", "Skipped", "Started"})

	data := make([][]string, 0, len(runs))
	for _, run := range runs {
		data = append(data, []string{
			run.ID,
			run.Repository,
			string(run.Status),
			humanize.Comma(int64(run.Records)),
			humanize.Comma(int64(run.SkippedCommits)),
			run.StartedAt.Local().Format(time.DateTime),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
