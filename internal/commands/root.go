package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securebank-dev/ledger/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerd",
		Short:   "Secure Bank account ledger daemon",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "ledgerd.yaml", "path to configuration file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
