package mcpclient

import (
	"context"
	"strings"
	"time"

	"luna/app/config"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/oops"
)

const initTimeout = time.Minute

// Client wraps one stdio MCP server process. The calendar and contacts
// gateways each own one instance.
type Client struct {
	mcp  client.MCPClient
	name string
}

func Dial(ctx context.Context, name string, cfg config.MCPServer) (*Client, error) {
	mcpClient, err := client.NewStdioMCPClient(cfg.Command, cfg.Env, cfg.Args...)
	if err != nil {
		return nil, oops.Code("gateway").Errorf("failed to spawn MCP server %s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "luna",
		Version: "1.0.0",
	}

	if _, err = mcpClient.Initialize(ctx, initRequest); err != nil {
		return nil, oops.Code("gateway").Errorf("failed to initialize MCP server %s: %w", name, err)
	}

	return &Client{
		mcp:  mcpClient,
		name: name,
	}, nil
}

// CallText invokes one tool and joins the text content of the result.
// A result flagged IsError comes back as a gateway error carrying the
// server's message.
func (c *Client) CallText(ctx context.Context, tool string, args map[string]any) (string, error) {
	callRequest := mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
	}

	callRequest.Params.Name = tool
	callRequest.Params.Arguments = args

	response, err := c.mcp.CallTool(ctx, callRequest)
	if err != nil {
		return "", oops.Code("gateway").Errorf("MCP tool call %s/%s failed: %w", c.name, tool, err)
	}

	var result strings.Builder
	for _, content := range response.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			result.WriteString(textContent.Text)
			result.WriteString("\n")
		}
	}

	text := strings.TrimSpace(result.String())

	if response.IsError {
		return "", oops.Code("gateway").Errorf("MCP tool %s/%s returned error: %s", c.name, tool, text)
	}

	return text, nil
}

func (c *Client) Close() error {
	return c.mcp.Close()
}
