package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/antbear/pwnstore/internal/database"
	"github.com/antbear/pwnstore/internal/schema"
)

func newPrefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pref",
		Short: "Read and write stored preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a preference value",
		Args:  cobra.ExactArgs(1),
		RunE: withPreferences(func(cmd *cobra.Command, repo *database.PreferenceRepository, args []string) error {
			value, err := repo.Get(context.Background(), args[0])
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("preference not found: %s", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a preference value",
		Args:  cobra.ExactArgs(2),
		RunE: withPreferences(func(cmd *cobra.Command, repo *database.PreferenceRepository, args []string) error {
			return repo.Set(context.Background(), args[0], args[1])
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <key>",
		Short: "Delete a preference",
		Args:  cobra.ExactArgs(1),
		RunE: withPreferences(func(cmd *cobra.Command, repo *database.PreferenceRepository, args []string) error {
			deleted, err := repo.Delete(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("preference not found: %s", args[0])
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all preferences",
		Args:  cobra.NoArgs,
		RunE: withPreferences(func(cmd *cobra.Command, repo *database.PreferenceRepository, _ []string) error {
			records, err := repo.List(context.Background())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Key", "Value"})
			for _, rec := range records {
				t.AppendRow(table.Row{rec.Key, rec.Value})
			}
			t.Render()
			return nil
		}),
	})

	return cmd
}

func withPreferences(fn func(*cobra.Command, *database.PreferenceRepository, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		dbCtx, closeFn, err := openStore(schema.GranularityRun)
		if err != nil {
			return err
		}
		defer closeFn()

		return fn(cmd, database.NewPreferenceRepository(dbCtx), args)
	}
}
