package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (p *Server) registerResources() {
	p.server.AddResource(&mcp.Resource{
		URI:         "pushbridge://status",
		Name:        "Push Status",
		Description: "Current push token state",
		MIMEType:    "application/json",
	}, p.handleStatusResource)
}

func (p *Server) handleStatusResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	tok := p.coord.Token(ctx)

	status := map[string]any{
		"has_token":  !tok.IsZero(),
		"registered": tok.Registered,
		"saved":      tok.Saved,
	}
	if !tok.IsZero() {
		status["token"] = tok.Token
	}
	return jsonResource(req.Params.URI, status)
}
