package commands

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/contract-ledger/internal/config"
)

var cfg *config.Config

// Execute runs the ledgerctl command tree.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Configuration is read from the environment before any subcommand runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Operator tooling for the contract ledger",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.AddCommand(migrateCmd(), tokenCmd())
	return root
}
