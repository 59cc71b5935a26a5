package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	pushbridge "github.com/pushbridge-dev/pushbridge"
)

func (p *Server) registerTools() {
	p.server.AddTool(registerTool(), p.handleRegister)
	p.server.AddTool(saveTokenTool(), p.handleSaveToken)
	p.server.AddTool(unregisterTool(), p.handleUnregister)
}

func registerTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "register",
		Description: "Acquire a push token from the native push plugin and persist it. Returns the token.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"save": {"type": "boolean", "description": "Also save the token with the remote push service"}
			}
		}`),
	}
}

func (p *Server) handleRegister(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Save bool `json:"save"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}

	// This process is its own runtime bridge: report device readiness as soon
	// as the coordinator is listening for it.
	go func() {
		for !p.bus.HasSubscriber(pushbridge.EventDeviceReady) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		p.bus.Emit(pushbridge.EventDeviceReady, nil)
	}()

	tok, err := p.coord.Register(ctx)
	if err != nil {
		p.logger.Warn("push registration failed", "error", err)
		return errorResult(fmt.Sprintf("registering: %v", err)), nil
	}
	p.server.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: "pushbridge://status"})

	result := map[string]any{
		"token":      tok.Token,
		"registered": tok.Registered,
	}
	if args.Save {
		saved, err := p.coord.SaveToken(ctx, tok, pushbridge.SaveOptions{})
		if err != nil {
			return errorResult(fmt.Sprintf("saving token: %v", err)), nil
		}
		result["saved"] = saved.Saved
	}
	return jsonResult(result)
}

func saveTokenTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "save_token",
		Description: "Save a push token with the remote push service. Uses the stored token when none is given.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"token": {"type": "string", "description": "Token to save (default: the stored token)"},
				"ignore_user": {"type": "boolean", "description": "Never attach a user id to the outgoing record"}
			}
		}`),
	}
}

func (p *Server) handleSaveToken(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Token      string `json:"token"`
		IgnoreUser bool   `json:"ignore_user"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}

	tok := pushbridge.PushToken{Token: args.Token}
	if tok.IsZero() {
		tok = p.coord.Token(ctx)
	}
	if tok.IsZero() {
		return errorResult("no push token stored; call register first"), nil
	}

	saved, err := p.coord.SaveToken(ctx, tok, pushbridge.SaveOptions{IgnoreUser: args.IgnoreUser})
	if err != nil {
		return errorResult(fmt.Sprintf("saving token: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"token": saved.Token,
		"saved": saved.Saved,
	})
}

func unregisterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "unregister",
		Description: "Invalidate the stored push token with the remote push service and clear it.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}
}

func (p *Server) handleUnregister(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := p.coord.Unregister(ctx); err != nil {
		return errorResult(fmt.Sprintf("unregistering: %v", err)), nil
	}

	p.server.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: "pushbridge://status"})
	return jsonResult(map[string]bool{"unregistered": true})
}
