package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/touchminer/internal/adapters/driven/config/env"
	"github.com/custodia-labs/touchminer/internal/adapters/driven/config/file"
	"github.com/custodia-labs/touchminer/internal/core/services"
	"github.com/custodia-labs/touchminer/internal/logger"
)

func newSettingsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change saved settings",
		Long: `View the settings a mine run would use, or change the values saved in
config.toml. Environment variables and flags still override saved values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSettingsShow(cmd, g)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSettingsShow(cmd, g)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a setting to config.toml",
		Long: `Save a setting to config.toml. Lists (tokens, prefixes) are comma-separated.

Keys:
  ` + strings.Join(services.SettingKeys(), "\n  "),
		Example: `  touchminer settings set repository scottyab/rootbeer
  touchminer settings set prefixes app/src/,lib/
  touchminer settings set output.csv authorFileTouches.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := openSettings(g)
			if err != nil {
				return err
			}
			if err := service.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to set %s: %w", args[0], err)
			}
			value := args[1]
			if args[0] == "tokens" {
				value = maskTokens(strings.Split(value, ","))
			}
			cmd.Printf("Set %s to %s\n", args[0], value)
			return nil
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting from config.toml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := openSettings(g)
			if err != nil {
				return err
			}
			if err := service.Unset(args[0]); err != nil {
				return fmt.Errorf("failed to unset %s: %w", args[0], err)
			}
			cmd.Printf("Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, set, unset)
	return cmd
}

// openSettings builds the settings service over config.toml and the dotenv files.
func openSettings(g *globalFlags) (*services.SettingsService, error) {
	store, err := file.NewConfigStore(g.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	loader := env.NewLoader(g.envFiles...)
	if err := loader.Load(); err != nil {
		return nil, err
	}
	for _, path := range loader.Loaded() {
		logger.Debug("Loaded environment from %s", path)
	}
	return services.NewSettingsService(store).WithEnv(loader.Getenv), nil
}

func runSettingsShow(cmd *cobra.Command, g *globalFlags) error {
	service, err := openSettings(g)
	if err != nil {
		return err
	}
	settings, err := service.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[Repository]")
	cmd.Printf("  Repository: %s\n", orUnset(settings.Repository))
	if settings.Inventory != "" {
		cmd.Printf("  Inventory: %s\n", settings.Inventory)
	} else {
		cmd.Printf("  Prefixes: %s\n", orUnset(strings.Join(settings.Prefixes, ", ")))
	}
	cmd.Println()

	cmd.Println("[Auth]")
	if settings.Authenticated() {
		cmd.Printf("  Tokens: %s\n", maskTokens(settings.Tokens))
	} else {
		cmd.Printf("  Tokens: (not set)\n")
	}
	cmd.Printf("  Rotation: %s\n", settings.Rotation)
	cmd.Printf("  Require auth: %t\n", settings.RequireAuth)
	cmd.Println()

	cmd.Println("[Crawl]")
	cmd.Printf("  Strategy: %s\n", settings.Strategy)
	cmd.Printf("  Count policy: %s\n", settings.CountPolicy)
	cmd.Printf("  Concurrency: %d\n", settings.Concurrency)
	cmd.Printf("  Timeout: %s\n", settings.Timeout)
	cmd.Printf("  Retries: %d\n", settings.Retries)
	if settings.RequestsPerSecond != 0 {
		cmd.Printf("  Rate: %g/s\n", settings.RequestsPerSecond)
	}
	if settings.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.BaseURL)
	}
	cmd.Printf("  Probe start: %t\n", settings.ProbeStart)
	cmd.Println()

	cmd.Println("[Output]")
	if !settings.Output.HasAny() {
		cmd.Printf("  CSV: %s (default)\n", DefaultTouchesCSV)
	} else {
		printIfSet(cmd, "CSV", settings.Output.CSV)
		printIfSet(cmd, "Counts CSV", settings.Output.CountsCSV)
		printIfSet(cmd, "SQLite dir", settings.Output.SQLiteDir)
		printIfSet(cmd, "Parquet dir", settings.Output.ParquetDir)
	}
	printIfSet(cmd, "Metrics textfile", settings.MetricsTextfile)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'touchminer settings set <key> <value>' or pass flags to mine.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printIfSet(cmd *cobra.Command, label, value string) {
	if value != "" {
		cmd.Printf("  %s: %s\n", label, value)
	}
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func maskTokens(tokens []string) string {
	masked := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			masked = append(masked, maskAPIKey(token))
		}
	}
	return strings.Join(masked, ", ")
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
