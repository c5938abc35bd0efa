package main

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/questkeeper/internal/server/models"
	"github.com/spf13/cobra"
)

func newSeedCmd(store *storeFlags) *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert players and universes that characters and adventures refer to",
	}
	seed.AddCommand(newSeedPlayerCmd(store), newSeedUniverseCmd(store))
	return seed
}

func newSeedPlayerCmd(store *storeFlags) *cobra.Command {
	var handle string

	cmd := &cobra.Command{
		Use:   "player",
		Short: "Create a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle == "" {
				return errors.New("--handle is required")
			}
			gw, repos, err := store.open(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()

			// Credentials are managed outside questkeeper.
			p, err := repos.Players(gw.DB()).Create(cmd.Context(), &models.Player{Handle: handle})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "player %d %s\n", p.ID, p.Handle)
			return nil
		},
	}
	cmd.Flags().StringVar(&handle, "handle", "", "player handle")
	return cmd
}

func newSeedUniverseCmd(store *storeFlags) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Create a universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			gw, repos, err := store.open(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()

			u, err := repos.Universes(gw.DB()).Create(cmd.Context(), &models.Universe{Name: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "universe %d %s\n", u.ID, u.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "universe name")
	return cmd
}
