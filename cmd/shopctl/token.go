package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/marketvest/internal/auth"
)

func tokenCmd(e *env) *cobra.Command {
	var (
		userID string
		role   string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Issue a signed bearer token for a service account",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"db": "none"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			r := auth.Role(role)
			if r != auth.RoleAdmin && r != auth.RoleCustomer {
				return fmt.Errorf("invalid --role %q", role)
			}

			token, err := auth.NewVerifier(e.cfg.Auth.JWTSecret, e.cfg.Auth.Issuer).
				Issue(auth.Principal{UserID: id, Role: r, Email: email}, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token subject")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "admin or customer")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
