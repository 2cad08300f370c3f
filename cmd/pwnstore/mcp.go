package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/antbear/pwnstore/internal/mcp"
	"github.com/antbear/pwnstore/internal/schema"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server over stdio for the PwnEyes store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, closeFn, err := openStore(schema.GranularityRun)
			if err != nil {
				return err
			}
			defer closeFn()

			return mcp.NewServer(dbCtx, version).Run(context.Background())
		},
	}

	return cmd
}
