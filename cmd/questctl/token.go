package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/questkeeper/internal/server/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		player int64
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a player (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if player <= 0 {
				return errors.New("--player must be a positive id")
			}
			if secret == "" {
				return errors.New("--secret is required")
			}
			token, err := auth.GenerateToken(player, []byte(secret), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&player, "player", 0, "player id")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret shared with the server")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
