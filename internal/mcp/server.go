package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/antbear/pwnstore/internal/database"
)

// Server exposes the store over the Model Context Protocol.
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
}

// NewServer creates a server over an already migrated store. The caller
// keeps ownership of dbCtx.
func NewServer(dbCtx *database.Context, version string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "pwnstore",
		Version: version,
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "schema_status",
		Description: "Report the stored schema version, pending migrations and migration history",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "connection_list",
		Description: "List saved connections ordered by name",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "connection_add",
		Description: "Save a new connection",
	}, s.handleAdd)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "connection_delete",
		Description: "Delete a saved connection by id",
	}, s.handleDelete)
}

type StatusInput struct{}

type StatusOutput struct {
	Version int            `json:"version"`
	Latest  int            `json:"latest"`
	Pending []MigrationRef `json:"pending"`
	History []HistoryEntry `json:"history"`
}

type MigrationRef struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Name string `json:"name"`
}

type HistoryEntry struct {
	From      int    `json:"from"`
	To        int    `json:"to"`
	Name      string `json:"name"`
	AppliedAt string `json:"appliedAt"`
}

type ListInput struct{}

type ListOutput struct {
	Connections []ConnectionEntry `json:"connections"`
}

// ConnectionEntry omits the stored password.
type ConnectionEntry struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Username    string `json:"username"`
	IsConnected bool   `json:"isConnected"`
}

type AddInput struct {
	Name     string `json:"name" jsonschema:"Display name of the connection"`
	URL      string `json:"url" jsonschema:"Web UI address, with or without scheme"`
	Username string `json:"username" jsonschema:"Login user name"`
	Password string `json:"password" jsonschema:"Login password"`
}

type AddOutput struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type DeleteInput struct {
	ID int64 `json:"id" jsonschema:"Identifier of the connection to delete"`
}

type DeleteOutput struct {
	Message string `json:"message"`
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := database.SchemaStatus(ctx, s.dbCtx)
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("failed to read schema status: %w", err)
	}

	output := StatusOutput{
		Version: status.Version,
		Latest:  status.Latest,
		Pending: make([]MigrationRef, 0, len(status.Pending)),
		History: make([]HistoryEntry, 0, len(status.History)),
	}
	for _, m := range status.Pending {
		output.Pending = append(output.Pending, MigrationRef{From: m.From, To: m.To, Name: m.Name})
	}
	for _, h := range status.History {
		output.History = append(output.History, HistoryEntry{
			From:      h.From,
			To:        h.To,
			Name:      h.Name,
			AppliedAt: h.AppliedAt.Format(time.RFC3339),
		})
	}

	return nil, output, nil
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	records, err := database.NewConnectionRepository(s.dbCtx).List(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to list connections: %w", err)
	}

	output := ListOutput{Connections: make([]ConnectionEntry, 0, len(records))}
	for _, rec := range records {
		output.Connections = append(output.Connections, ConnectionEntry{
			ID:          rec.ID,
			Name:        rec.Name,
			URL:         rec.URL,
			Username:    rec.Username,
			IsConnected: rec.IsConnected,
		})
	}
	return nil, output, nil
}

func (s *Server) handleAdd(ctx context.Context, req *mcp.CallToolRequest, input AddInput) (*mcp.CallToolResult, AddOutput, error) {
	if input.Name == "" || input.URL == "" {
		return nil, AddOutput{}, fmt.Errorf("name and url are required")
	}

	id, err := database.NewConnectionRepository(s.dbCtx).Insert(ctx, database.ConnectionRecord{
		Name:     input.Name,
		URL:      input.URL,
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		return nil, AddOutput{}, fmt.Errorf("failed to add connection: %w", err)
	}

	return nil, AddOutput{
		ID:      id,
		Message: fmt.Sprintf("Saved connection %s", input.Name),
	}, nil
}

func (s *Server) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	deleted, err := database.NewConnectionRepository(s.dbCtx).Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete connection: %w", err)
	}
	if !deleted {
		return nil, DeleteOutput{}, fmt.Errorf("connection not found: %d", input.ID)
	}

	return nil, DeleteOutput{Message: fmt.Sprintf("Deleted connection %d", input.ID)}, nil
}
