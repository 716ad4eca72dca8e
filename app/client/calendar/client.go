package calendar

import (
	"context"
	"encoding/json"
	"time"

	"luna/app/client/mcpclient"
	"luna/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const dateLayout = "2006-01-02"

// Event mirrors the JSON the calendar MCP server emits for its event
// tools. End is zero for all-day events.
type Event struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitempty"`
	AllDay   bool      `json:"all_day,omitempty"`
	Location string    `json:"location,omitempty"`
}

type CreateEventRequest struct {
	Title       string
	Start       time.Time
	End         time.Time
	Attendees   []string
	Description string
	Location    string
}

// Client is the calendar gateway: a typed facade over the stdio MCP
// server holding the actual Google credentials.
type Client struct {
	mcp *mcpclient.Client
}

var _ do.Shutdownable = (*Client)(nil)

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	mcp, err := mcpclient.Dial(ctx, "calendar", cfg.Calendar)
	if err != nil {
		return nil, err
	}

	return &Client{mcp: mcp}, nil
}

// ListEvents fetches events between from and to. Single-day ranges use the
// server's per-date tool, anything longer its upcoming-events tool.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	var (
		raw string
		err error
	)

	if sameDay(from, to) {
		raw, err = c.mcp.CallText(ctx, "get_events_for_date", map[string]any{
			"date": from.Format(dateLayout),
		})
	} else {
		days := int(to.Sub(from).Hours()/24) + 1

		raw, err = c.mcp.CallText(ctx, "get_upcoming_events", map[string]any{
			"days": days,
		})
	}

	if err != nil {
		return nil, err
	}

	return decodeEvents(raw)
}

func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	args := map[string]any{
		"title":          req.Title,
		"start_datetime": req.Start.Format("2006-01-02T15:04"),
	}

	if !req.End.IsZero() {
		args["end_datetime"] = req.End.Format("2006-01-02T15:04")
	}
	if req.Description != "" {
		args["description"] = req.Description
	}
	if req.Location != "" {
		args["location"] = req.Location
	}
	if len(req.Attendees) > 0 {
		args["attendees"] = req.Attendees
	}

	raw, err := c.mcp.CallText(ctx, "create_event", args)
	if err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, oops.Code("gateway").Errorf("failed to decode created event: %w", err)
	}

	return &event, nil
}

func (c *Client) Shutdown() error {
	return c.mcp.Close()
}

func decodeEvents(raw string) ([]Event, error) {
	events := []Event{}

	if raw == "" {
		return events, nil
	}

	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, oops.Code("gateway").Errorf("failed to decode events: %w", err)
	}

	return events, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}
