package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/securebank-dev/ledger/internal/config"
	"github.com/securebank-dev/ledger/internal/seed"
	"github.com/securebank-dev/ledger/internal/store"
)

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the account database",
		Long: `Seed the account database with demo account holders, or with
accounts read from a CSV file. Accounts that already exist are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.SeedFile
			}
			return runSeed(cmd, cfg, file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "accounts CSV file (default: built-in demo accounts)")

	return cmd
}

func runSeed(cmd *cobra.Command, cfg *config.Config, file string) error {
	st, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := seed.Load(cmd.Context(), st, file, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d account(s) into %s\n", n, cfg.DBPath)
	return nil
}
