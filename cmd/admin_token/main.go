// Command admin_token issues a signed bearer token for the admin import
// endpoint using ADMIN_JWT_SECRET.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"infinite-experiment/gazetteer/internal/auth"
	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/constants"
)

func newRootCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:           "admin_token",
		Short:         "Print a signed admin bearer token",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AdminJWTSecret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}

			token, err := auth.IssueToken(cfg.AdminJWTSecret, subject, constants.Role(role), ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().StringVar(&role, "role", string(constants.RoleAdmin), "role claim (admin or reader)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
