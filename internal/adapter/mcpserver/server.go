package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"agentql-tools/internal/application/port/output"
)

const ServerName = "agentql-tools"

// Server publishes every registered tool over the Model Context Protocol.
type Server struct {
	server   *mcp.Server
	registry output.ToolRegistry
	logger   output.LoggerPort
}

func NewServer(registry output.ToolRegistry, logger output.LoggerPort, version string) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		}, nil),
		registry: registry,
		logger:   logger,
	}
	for _, t := range registry.All() {
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name().String(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		}, s.handler(t))
	}
	return s
}

// Run serves on stdin/stdout until ctx is cancelled or the client hangs up.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server started", "tools", len(s.registry.All()))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session on an arbitrary transport.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// handler reports tool failures as IsError results so the calling model sees
// the message instead of a protocol error.
func (s *Server) handler(t output.ToolPort) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := "{}"
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			args = string(req.Params.Arguments)
		}

		start := time.Now()
		out, err := t.Execute(ctx, args)
		log := s.logger.WithFields(map[string]any{
			"tool":    t.Name().String(),
			"elapsed": time.Since(start).String(),
		})
		if err != nil {
			log.Warn("mcp tool call failed", "error", err)
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		log.Debug("mcp tool call finished", "bytes", len(out))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
		}, nil
	}
}
