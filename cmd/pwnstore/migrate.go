package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antbear/pwnstore/db/migrations"
	"github.com/antbear/pwnstore/internal/database"
	"github.com/antbear/pwnstore/internal/schema"
)

func newMigrateCmd() *cobra.Command {
	var (
		target  int
		perStep bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			granularity := schema.GranularityRun
			if perStep {
				granularity = schema.GranularityStep
			}

			logger := newLogger()
			defer func() {
				_ = logger.Sync()
			}()

			dbCtx, err := database.OpenDatabase(dbPath,
				database.WithLogger(logger),
				database.WithGranularity(granularity),
			)
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			result, err := database.MigrateDatabase(context.Background(), dbCtx, target)
			for _, m := range result.Applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", m)
			}
			if err != nil {
				return err
			}

			if len(result.Applied) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "schema already at version %d\n", result.To)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema upgraded from version %d to %d\n", result.From, result.To)
			return nil
		},
	}

	cmd.Flags().IntVar(&target, "to", migrations.Latest, "Target schema version")
	cmd.Flags().BoolVar(&perStep, "per-step", false, "Commit after each migration instead of once per run")

	return cmd
}
