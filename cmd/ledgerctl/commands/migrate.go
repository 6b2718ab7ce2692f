package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contract-ledger/internal/observability"
	"github.com/spec-kit/contract-ledger/internal/persistence"
)

func migrateCmd() *cobra.Command {
	var list, seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations to POSTGRES_DSN",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names, err := persistence.Migrations()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				if seed {
					fmt.Fprintln(cmd.OutOrStdout(), persistence.DemoSeedFile)
				}
				return nil
			}

			if cfg.Postgres.DSN == "" {
				return errors.New("POSTGRES_DSN is required")
			}
			logger, err := observability.NewLogger(cfg.Logger, cfg.App)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()
			if err := persistence.RunMigrations(cmd.Context(), pg.Pool, logger); err != nil {
				return err
			}
			if seed {
				return persistence.SeedDemo(cmd.Context(), pg.Pool, logger)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print the embedded migrations without applying them")
	cmd.Flags().BoolVar(&seed, "seed", false, "load the demo dataset after migrating")
	return cmd
}
