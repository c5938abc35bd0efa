package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(store *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, repos, err := store.open(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()

			if err := repos.RunMigrations(cmd.Context(), gw.DB()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", gw.Dialect())
			return nil
		},
	}
}
