package commands

import (
	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/buildinfo"
	"github.com/aoiro-dev/aoiro/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "aoiro",
		Short:   "Blue-return double-entry bookkeeping",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", config.FileName, "path to aoiro.yaml")
	pf.StringVar(&g.user, "user", "", "user id (overrides AOIRO_USER and user.id)")
	pf.IntVar(&g.year, "year", 0, "fiscal year (defaults to fiscal.selected_year, then the current year)")
	pf.BoolVar(&g.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(g),
		newJournalCommand(g),
		newLedgerCommand(g),
		newOpeningCommand(g),
		newAssetsCommand(g),
		newDepreciateCommand(g),
		newStatementsCommand(g),
		newCloseCommand(g),
		newReportsCommand(g),
		newExportCommand(g),
	)

	return rootCmd
}
