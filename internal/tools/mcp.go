package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/trungvq/workmate/internal/config"
	"github.com/trungvq/workmate/internal/logger"
)

// MCPClient is the subset of the mcp-go client the registry needs; it keeps
// discovery testable without a live server.
type MCPClient interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// DiscoverMCP connects to the configured MCP servers, lists their tools once,
// and returns specs backed by CallTool plus a closer for the underlying
// clients. Discovery happens at startup only, so the registry built from these
// specs stays fixed for the process lifetime. Servers that fail to connect are
// skipped with a warning rather than aborting startup.
func DiscoverMCP(ctx context.Context, servers []config.MCPServerConfig) ([]Spec, func(), error) {
	var specs []Spec
	var clients []MCPClient
	seen := make(map[string]bool)

	closeAll := func() {
		for _, c := range clients {
			if err := c.Close(); err != nil {
				logger.L.Warn("MCP client close error", "error", err)
			}
		}
	}

	for _, serverCfg := range servers {
		mcpC, err := newMCPClient(ctx, serverCfg)
		if err != nil {
			logger.L.Error("Failed to create MCP client", "name", serverCfg.Name, "error", err)
			continue
		}

		initReq := mcp.InitializeRequest{
			Params: mcp.InitializeParams{Capabilities: mcp.ClientCapabilities{}},
		}
		if _, err := mcpC.Initialize(ctx, initReq); err != nil {
			logger.L.Error("Failed to initialize MCP client", "name", serverCfg.Name, "error", err)
			if cerr := mcpC.Close(); cerr != nil {
				logger.L.Warn("MCP client close error after init failure", "error", cerr)
			}
			continue
		}
		clients = append(clients, mcpC)
		logger.L.Info("MCP server initialized", "name", serverCfg.Name)

		serverTools, err := mcpC.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			logger.L.Warn("Failed to list tools for MCP client", "name", serverCfg.Name, "error", err)
			continue
		}
		for _, mcpTool := range serverTools.Tools {
			if seen[mcpTool.Name] {
				logger.L.Warn("MCP tool already registered from another server; skipping", "tool", mcpTool.Name, "name", serverCfg.Name)
				continue
			}
			seen[mcpTool.Name] = true
			specs = append(specs, mcpSpec(mcpC, mcpTool))
			logger.L.Info("Registered MCP tool", "tool", mcpTool.Name, "name", serverCfg.Name)
		}
	}

	return specs, closeAll, nil
}

func newMCPClient(ctx context.Context, serverCfg config.MCPServerConfig) (MCPClient, error) {
	var mcpC *client.Client
	var err error

	switch serverCfg.Type {
	case config.ClientTypeSSE:
		var sseOpts []transport.ClientOption
		if len(serverCfg.Headers) > 0 {
			sseOpts = append(sseOpts, transport.WithHeaders(serverCfg.Headers))
		}
		mcpC, err = client.NewSSEMCPClient(serverCfg.URL, sseOpts...)
	case config.ClientTypeStreamableHTTP:
		var httpOpts []transport.StreamableHTTPCOption
		if len(serverCfg.Headers) > 0 {
			httpOpts = append(httpOpts, transport.WithHTTPHeaders(serverCfg.Headers))
		}
		mcpC, err = client.NewStreamableHttpClient(serverCfg.URL, httpOpts...)
	case config.ClientTypeStdio:
		var env []string
		for k, v := range serverCfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		mcpC, err = client.NewStdioMCPClient(serverCfg.Command, env, serverCfg.Args...)
	default:
		return nil, fmt.Errorf("unsupported MCP server type %q for %s", serverCfg.Type, serverCfg.Name)
	}
	if err != nil {
		return nil, err
	}

	// Stdio transports start themselves.
	if serverCfg.Type != config.ClientTypeStdio {
		if err := mcpC.Start(ctx); err != nil {
			if cerr := mcpC.Close(); cerr != nil {
				logger.L.Warn("MCP client close error after start failure", "error", cerr)
			}
			return nil, err
		}
	}
	return mcpC, nil
}

func mcpSpec(c MCPClient, mcpTool mcp.Tool) Spec {
	return Spec{
		Name:        mcpTool.Name,
		Description: mcpTool.Description,
		Parameters:  mcpParamsSchema(mcpTool),
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			result, err := c.CallTool(ctx, mcp.CallToolRequest{
				Params: mcp.CallToolParams{Name: mcpTool.Name, Arguments: args},
			})
			if err != nil {
				return "", err
			}
			text := mcpResultText(result)
			if result.IsError {
				if text == "" {
					text = "tool execution resulted in an error without specific text"
				}
				return "", fmt.Errorf("%s", text)
			}
			if text == "" {
				raw, merr := json.Marshal(result)
				if merr != nil {
					return "tool executed successfully, but result could not be formatted", nil
				}
				return string(raw), nil
			}
			return text, nil
		},
	}
}

func mcpParamsSchema(mcpTool mcp.Tool) json.RawMessage {
	empty := json.RawMessage(`{"type":"object","properties":{}}`)
	if len(mcpTool.RawInputSchema) > 0 && string(mcpTool.RawInputSchema) != "null" {
		return mcpTool.RawInputSchema
	}
	schemaBytes, err := json.Marshal(mcpTool.InputSchema)
	if err != nil {
		logger.L.Error("Failed to marshal InputSchema for tool; using empty schema", "tool", mcpTool.Name, "error", err)
		return empty
	}
	if s := string(schemaBytes); s == "{}" || s == "null" {
		return empty
	}
	return json.RawMessage(schemaBytes)
}

func mcpResultText(result *mcp.CallToolResult) string {
	for _, contentItem := range result.Content {
		if textContent, ok := contentItem.(mcp.TextContent); ok {
			return textContent.Text
		}
	}
	return ""
}
