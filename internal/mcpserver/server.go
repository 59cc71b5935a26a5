package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	pushbridge "github.com/pushbridge-dev/pushbridge"
)

// Server wraps an MCP server exposing push registration as tools and
// resources for LLM integration.
type Server struct {
	server *mcp.Server
	logger *slog.Logger

	coord *pushbridge.Coordinator
	bus   *pushbridge.MemoryBus
}

// New creates a Server over an assembled coordinator and its bus.
func New(coord *pushbridge.Coordinator, bus *pushbridge.MemoryBus, version string, logger *slog.Logger) *Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "pushbridge",
		Version: version,
	}, &mcp.ServerOptions{
		SubscribeHandler:   func(context.Context, *mcp.SubscribeRequest) error { return nil },
		UnsubscribeHandler: func(context.Context, *mcp.UnsubscribeRequest) error { return nil },
	})

	p := &Server{
		server: s,
		logger: logger,
		coord:  coord,
		bus:    bus,
	}

	p.registerResources()
	p.registerTools()

	return p
}

// Run starts the MCP server on stdio and blocks until done.
func (p *Server) Run(ctx context.Context) error {
	return p.server.Run(ctx, &mcp.StdioTransport{})
}

// jsonResult marshals v to JSON and returns it as a text CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil
}

// errorResult returns a CallToolResult with IsError=true.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// jsonResource marshals v to JSON and wraps it in a ReadResourceResult.
func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
