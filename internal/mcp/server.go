// Package mcp exposes every engine operation as an MCP tool over stdio.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/ops"
)

const (
	ServerName    = "isim"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for display automation.
type Server struct {
	mcpServer *mcpsdk.Server
	exec      *ops.Executor
	// display is used when a tool call names none.
	display string
}

// NewServer creates an MCP server running tools through exec.
func NewServer(exec *ops.Executor, display string) *Server {
	s := &Server{
		exec:    exec,
		display: display,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	logger.FromContext(ctx).Info("MCP server starting", zap.String("transport", "stdio"))
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// run executes req and shapes the result for the client. Failed operations
// are tool errors carrying the same structured result.
func (s *Server) run(ctx context.Context, tool string, req ops.Request) (*mcpsdk.CallToolResult, ops.Result, error) {
	if req.Display == "" {
		req.Display = s.display
	}
	res := s.exec.Execute(ctx, req)
	logger.FromContext(ctx).Debug("tool call",
		zap.String("tool", tool),
		zap.String("op", req.Op),
		zap.Int("code", res.Code))

	if !res.OK() {
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s (code %d): %s", res.Status, res.Code, res.Error)},
			},
		}, res, nil
	}
	return nil, res, nil
}
