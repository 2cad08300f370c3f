package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/antbear/pwnstore/internal/database"
	"github.com/antbear/pwnstore/internal/schema"
)

const maxURLWidth = 48

func newConnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conn",
		Short: "Manage saved connections",
	}

	cmd.AddCommand(newConnListCmd())
	cmd.AddCommand(newConnAddCmd())
	cmd.AddCommand(newConnRmCmd())
	cmd.AddCommand(newConnClearCmd())

	return cmd
}

func newConnListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, closeFn, err := openStore(schema.GranularityRun)
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := database.NewConnectionRepository(dbCtx).List(context.Background())
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputConnectionsJSON(cmd, records)
			case "table":
				outputConnectionsTable(cmd, records)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type connectionOutputEntry struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Username    string `json:"username"`
	IsConnected bool   `json:"isConnected"`
}

func outputConnectionsJSON(cmd *cobra.Command, records []database.ConnectionRecord) error {
	output := make([]connectionOutputEntry, 0, len(records))
	for _, rec := range records {
		output = append(output, connectionOutputEntry{
			ID:          rec.ID,
			Name:        rec.Name,
			URL:         rec.URL,
			Username:    rec.Username,
			IsConnected: rec.IsConnected,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputConnectionsTable(cmd *cobra.Command, records []database.ConnectionRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "URL", "Username", "Connected"})

	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.ID,
			rec.Name,
			// go-pretty's WidthMax miscounts wide runes, so truncate up front.
			runewidth.Truncate(rec.URL, maxURLWidth, "..."),
			rec.Username,
			rec.IsConnected,
		})
	}

	t.Render()
}

func newConnAddCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Save a connection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, closeFn, err := openStore(schema.GranularityRun)
			if err != nil {
				return err
			}
			defer closeFn()

			id, err := database.NewConnectionRepository(dbCtx).Insert(context.Background(), database.ConnectionRecord{
				Name:     args[0],
				URL:      args[1],
				Username: username,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved connection %s (id %d)\n", args[0], id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Login user name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Login password")

	return cmd
}

func newConnRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a saved connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id: %s", args[0])
			}

			dbCtx, closeFn, err := openStore(schema.GranularityRun)
			if err != nil {
				return err
			}
			defer closeFn()

			deleted, err := database.NewConnectionRepository(dbCtx).Delete(context.Background(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("connection not found: %d", id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted connection %d\n", id)
			return nil
		},
	}

	return cmd
}

func newConnClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, closeFn, err := openStore(schema.GranularityRun)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := database.NewConnectionRepository(dbCtx).DeleteAll(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d connection(s)\n", count)
			return nil
		},
	}

	return cmd
}
