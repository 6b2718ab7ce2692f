package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contract-ledger/internal/auth"
	"github.com/spec-kit/contract-ledger/internal/domain"
)

func tokenCmd() *cobra.Command {
	var (
		profileID int64
		admin     bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for a profile or an operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if admin == (profileID > 0) {
				return errors.New("pass exactly one of --profile or --admin")
			}
			role := domain.RoleProfile
			if admin {
				role = domain.RoleAdmin
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tokens.GenerateToken(profileID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format("2006-01-02T15:04:05Z"))
			return nil
		},
	}
	cmd.Flags().Int64Var(&profileID, "profile", 0, "profile id the token identifies")
	cmd.Flags().BoolVar(&admin, "admin", false, "mint an admin token for the report routes")
	return cmd
}
