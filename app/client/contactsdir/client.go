package contactsdir

import (
	"context"
	"encoding/json"

	"luna/app/client/mcpclient"
	"luna/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

// Contact mirrors the JSON the contacts MCP server emits for
// search_contacts. Notes hold free-text facts attached server-side.
type Contact struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Emails       []string `json:"emails,omitempty"`
	Phones       []string `json:"phones,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Client is the contacts gateway over the stdio MCP server.
type Client struct {
	mcp *mcpclient.Client
}

var _ do.Shutdownable = (*Client)(nil)

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	mcp, err := mcpclient.Dial(ctx, "contacts", cfg.Contacts)
	if err != nil {
		return nil, err
	}

	return &Client{mcp: mcp}, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]Contact, error) {
	raw, err := c.mcp.CallText(ctx, "search_contacts", map[string]any{
		"query": query,
	})
	if err != nil {
		return nil, err
	}

	contacts := []Contact{}

	if raw == "" {
		return contacts, nil
	}

	if err := json.Unmarshal([]byte(raw), &contacts); err != nil {
		return nil, oops.Code("gateway").Errorf("failed to decode contacts: %w", err)
	}

	return contacts, nil
}

// Sync pulls the directory from Google into the server's local cache and
// returns the server's human-readable summary.
func (c *Client) Sync(ctx context.Context) (string, error) {
	return c.mcp.CallText(ctx, "sync_contacts", map[string]any{})
}

func (c *Client) Shutdown() error {
	return c.mcp.Close()
}
