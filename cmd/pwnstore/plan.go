package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antbear/pwnstore/db/migrations"
	"github.com/antbear/pwnstore/internal/database"
)

func newPlanCmd() *cobra.Command {
	var (
		from int
		to   int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the migrations that lead from one version to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, err := database.PlanMigrations(from, to)
			if err != nil {
				return err
			}
			if len(steps) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing to do: version %d is the target\n", from)
				return nil
			}
			renderMigrations(cmd, steps)
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "Starting schema version")
	cmd.Flags().IntVar(&to, "to", migrations.Latest, "Target schema version")

	return cmd
}
