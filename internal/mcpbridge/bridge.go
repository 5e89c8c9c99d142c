// Package mcpbridge connects to MCP servers over stdio and exposes their
// tools as agent.Tool instances prefixed "mcp_{server}_{tool}", grounded
// on kadirpekel-hector's mcptoolset.Toolset (lazy-connect stdio client via
// mark3labs/mcp-go, mcpToolWrapper adapting a remote tool into the host's
// own Tool abstraction) adapted from Hector's tool.CallableTool interface
// to agent.Tool, and trimmed to stdio transport only: [[mcp.servers]]
// in SPEC_FULL.md §6 only names command/args, not an HTTP/SSE endpoint.
package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yzzting/rrclaw/internal/agent"
	"github.com/yzzting/rrclaw/internal/config"
)

const protocolVersion = "2024-11-05"

// Server connects to one configured MCP server and exposes its tools.
type Server struct {
	name   string
	client *client.Client
	logger *slog.Logger
}

// Connect starts the server's subprocess, performs the MCP handshake, and
// returns a Server ready to list/call tools.
func Connect(ctx context.Context, cfg config.MCPServerSection, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mcpClient, err := client.NewStdioMCPClient(cfg.Command, nil, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("mcp %s: creating client: %w", cfg.Name, err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp %s: starting: %w", cfg.Name, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{Name: "rrclaw", Version: "0.1.0"}
	initReq.Params.ProtocolVersion = protocolVersion
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("mcp %s: initializing: %w", cfg.Name, err)
	}

	return &Server{
		name:   cfg.Name,
		client: mcpClient,
		logger: logger.With("component", "mcpbridge", "server", cfg.Name),
	}, nil
}

// Close shuts down the underlying subprocess.
func (s *Server) Close() error {
	return s.client.Close()
}

// Tools lists the server's tools, each wrapped as an agent.Tool named
// "mcp_{server}_{tool}" per SPEC_FULL.md §4.7.
func (s *Server) Tools(ctx context.Context) ([]agent.Tool, error) {
	resp, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp %s: listing tools: %w", s.name, err)
	}

	tools := make([]agent.Tool, 0, len(resp.Tools))
	for _, remote := range resp.Tools {
		tools = append(tools, &bridgedTool{
			server:      s,
			name:        fmt.Sprintf("mcp_%s_%s", s.name, remote.Name),
			remoteName:  remote.Name,
			description: remote.Description,
			schema:      convertSchema(remote.InputSchema),
		})
	}
	return tools, nil
}

// bridgedTool adapts one remote MCP tool to agent.Tool. MCP-bridged tools
// are external-data tools (spec.md §4.2): their output originates outside
// the trust boundary and is subject to injection inspection like shell or
// http_request.
type bridgedTool struct {
	server      *Server
	name        string
	remoteName  string
	description string
	schema      map[string]any
}

func (t *bridgedTool) Name() string                    { return t.name }
func (t *bridgedTool) Description() string             { return t.description }
func (t *bridgedTool) ParametersSchema() map[string]any { return t.schema }

func (t *bridgedTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	return "", false
}

func (t *bridgedTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = t.remoteName
	req.Params.Arguments = args

	resp, err := t.server.client.CallTool(ctx, req)
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}

	var texts []string
	for _, content := range resp.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}
	output := joinLines(texts)

	if resp.IsError {
		return agent.ToolExecResult{Success: false, Output: output, Error: "mcp tool reported an error"}, nil
	}
	return agent.ToolExecResult{Success: true, Output: output}, nil
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

// convertSchema round-trips an mcp.ToolInputSchema through JSON to obtain
// a plain map[string]any, matching agent.ToolSpec.Parameters's shape.
func convertSchema(schema mcp.ToolInputSchema) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
