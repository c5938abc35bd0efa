package main

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// storeFlags locate the record store for commands that touch it.
type storeFlags struct {
	driver string
	dsn    string
}

func (f *storeFlags) open(ctx context.Context) (*dbx.Gateway, *repomanager.SQLRepositoryManager, error) {
	dialect, err := dbx.ParseDialect(f.driver)
	if err != nil {
		return nil, nil, err
	}
	gw, err := dbx.Open(ctx, dialect, f.dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return gw, repomanager.NewSQLRepositoryManager(dialect), nil
}

func newRootCmd() *cobra.Command {
	store := &storeFlags{}

	root := &cobra.Command{
		Use:           "questctl",
		Short:         "questctl administers a questkeeper record store",
		Long:          `questctl applies migrations, seeds reference data, mints development tokens and calls a running server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&store.driver, "driver", "pgx", "database driver (pgx or sqlite)")
	root.PersistentFlags().StringVar(&store.dsn, "dsn", "", "database DSN")

	root.AddCommand(newMigrateCmd(store), newSeedCmd(store), newTokenCmd(), newCallCmd(), newPortraitCmd())
	return root
}
