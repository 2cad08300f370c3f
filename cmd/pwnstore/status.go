package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/antbear/pwnstore/internal/database"
	"github.com/antbear/pwnstore/internal/schema"
)

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored schema version and migration history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Status must not migrate, so the store is opened as is.
			dbCtx, err := database.OpenDatabase(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			status, err := database.SchemaStatus(context.Background(), dbCtx)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputStatusJSON(cmd, status)
			case "table":
				outputStatusTable(cmd, status)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type statusOutputStep struct {
	From      int    `json:"from"`
	To        int    `json:"to"`
	Name      string `json:"name"`
	AppliedAt string `json:"appliedAt,omitempty"`
}

type statusOutput struct {
	Version  int                `json:"version"`
	Latest   int                `json:"latest"`
	UpToDate bool               `json:"upToDate"`
	Pending  []statusOutputStep `json:"pending"`
	History  []statusOutputStep `json:"history"`
}

func outputStatusJSON(cmd *cobra.Command, status *database.Status) error {
	output := statusOutput{
		Version:  status.Version,
		Latest:   status.Latest,
		UpToDate: status.UpToDate(),
		Pending:  []statusOutputStep{},
		History:  []statusOutputStep{},
	}
	for _, m := range status.Pending {
		output.Pending = append(output.Pending, statusOutputStep{From: m.From, To: m.To, Name: m.Name})
	}
	for _, h := range status.History {
		output.History = append(output.History, statusOutputStep{
			From:      h.From,
			To:        h.To,
			Name:      h.Name,
			AppliedAt: h.AppliedAt.Format(time.RFC3339),
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputStatusTable(cmd *cobra.Command, status *database.Status) {
	fmt.Fprintf(cmd.OutOrStdout(), "Version:     %d\n", status.Version)
	fmt.Fprintf(cmd.OutOrStdout(), "Latest:      %d\n", status.Latest)
	fmt.Fprintf(cmd.OutOrStdout(), "Up to date:  %t\n", status.UpToDate())

	if len(status.Pending) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Pending:")
		renderMigrations(cmd, status.Pending)
	}

	if len(status.History) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "History:")
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"From", "To", "Name", "Applied"})
		for _, h := range status.History {
			t.AppendRow(table.Row{h.From, h.To, h.Name, h.AppliedAt.Local().Format("2006-01-02 15:04:05")})
		}
		t.Render()
	}
}

func renderMigrations(cmd *cobra.Command, steps []schema.Migration) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"From", "To", "Name", "Statements"})
	for _, m := range steps {
		t.AppendRow(table.Row{m.From, m.To, m.Name, len(m.Statements)})
	}
	t.Render()
}
