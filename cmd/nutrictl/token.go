package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stealthcompany.com/nutrireg/internal/api"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		user string
		name string
		ttl  string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}
			if strings.TrimSpace(user) == "" {
				return errors.New("--user is required")
			}
			d, err := parseTTL(ttl)
			if err != nil {
				return err
			}
			token, err := api.IssueToken([]byte(cfg.Auth.JWTSecret), user, name, d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Staff username (token subject)")
	cmd.Flags().StringVar(&name, "name", "", "Staff display name")
	cmd.Flags().StringVar(&ttl, "ttl", "12h", "Token lifetime")
	return cmd
}
