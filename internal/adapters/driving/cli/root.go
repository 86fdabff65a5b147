// Package cli is the cobra command tree of the touchminer binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/logger"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitAborted   = 2
	ExitCancelled = 130
)

// version is set at build time via -ldflags.
var version = "dev"

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configDir string
	envFiles  []string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "touchminer",
		Short: "Mine GitHub commit history for per-file author touches",
		Long: `touchminer walks the commit history of a GitHub repository and records,
for every commit that changed a tracked source file, who touched which file
and when. Results go to CSV, SQLite or Parquet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetVerbose(g.verbose)
		},
	}

	cmd.PersistentFlags().StringVar(&g.configDir, "config-dir", "",
		"directory holding config.toml (default ~/.touchminer)")
	cmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", nil,
		"dotenv files to read tokens from (default .env.local, .env, ~/.touchminer/.env)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "print progress and debug logs")

	cmd.AddCommand(newMineCmd(g))
	cmd.AddCommand(newSettingsCmd(g))
	cmd.AddCommand(newRunsCmd(g))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Cancelling ctx stops a running crawl; partial output is still written.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	logger.SetOutput(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(stderr, errorStyle.Render("Error: "+err.Error()))
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrCrawlAborted):
		return ExitAborted
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	default:
		return ExitError
	}
}
