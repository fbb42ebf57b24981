package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shekelsync/shekelsync/internal/buildinfo"
	"github.com/shekelsync/shekelsync/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "shekelsync",
		Short:   "Import Israeli bank and credit card statements into a budgeting ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", config.FileName, "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides log.level)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAnalyzeCommand(flags))
	rootCmd.AddCommand(newReconcileCommand(flags))
	rootCmd.AddCommand(newImportCommand(flags))
	rootCmd.AddCommand(newMapCommand(flags))
	rootCmd.AddCommand(newAccountsCommand(flags))
	rootCmd.AddCommand(newAuthCommand(flags))
	rootCmd.AddCommand(newServeCommand(flags))

	return rootCmd
}
