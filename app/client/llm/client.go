package llm

import (
	"context"
	"log/slog"
	"time"

	"luna/app/config"
	"luna/app/service/conversation"
	"luna/app/service/tools"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	maxReasonDuration = 30 * time.Second
	maxTokens         = 1500
)

// Completion is what one reasoning round produced: either a final answer
// or a batch of requested tool calls (Text may accompany the calls).
type Completion struct {
	Text      string
	ToolCalls []conversation.ToolCall
}

// Client is the reasoning capability behind an OpenAI-compatible API.
type Client struct {
	model llms.Model
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	model, err := openai.New(
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithToken(cfg.OpenAI.Token),
		openai.WithModel(cfg.OpenAI.Model),
	)
	if err != nil {
		return nil, oops.Code("reasoning").Errorf("failed to create LLM client: %w", err)
	}

	return &Client{model: model}, nil
}

// Complete submits the windowed history plus the tool catalog and maps the
// response back into conversation types. One retry on failure; the
// orchestrator decides what a second failure means.
func (c *Client) Complete(
	ctx context.Context,
	system string,
	history []conversation.Message,
	catalog []tools.Spec,
) (*Completion, error) {
	messages := buildMessages(system, history)

	opts := []llms.CallOption{llms.WithMaxTokens(maxTokens)}
	if len(catalog) > 0 {
		opts = append(opts, llms.WithTools(buildTools(catalog)))
	}

	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	response, err := c.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		slog.Warn("LLM call failed, retrying once", "error", err)

		response, err = c.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return nil, oops.Code("reasoning").Errorf("failed to create chat completion: %w", err)
		}
	}

	if len(response.Choices) == 0 {
		return nil, oops.Code("reasoning").Errorf("no chat completion found")
	}

	choice := response.Choices[0]

	result := &Completion{Text: choice.Content}

	for _, call := range choice.ToolCalls {
		if call.FunctionCall == nil {
			continue
		}

		result.ToolCalls = append(result.ToolCalls, conversation.ToolCall{
			ID:        call.ID,
			Name:      call.FunctionCall.Name,
			Arguments: call.FunctionCall.Arguments,
		})
	}

	return result, nil
}

func buildMessages(system string, history []conversation.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))

	for _, msg := range history {
		switch msg.Role {
		case conversation.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, msg.Text))

		case conversation.RoleAssistant:
			var parts []llms.ContentPart

			if msg.Text != "" {
				parts = append(parts, llms.TextContent{Text: msg.Text})
			}

			for _, call := range msg.ToolCalls {
				parts = append(parts, llms.ToolCall{
					ID:   call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}

			messages = append(messages, llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: parts,
			})

		case conversation.RoleTool:
			if msg.ToolResult == nil {
				continue
			}

			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: msg.ToolResult.CallID,
						Name:       msg.ToolResult.Name,
						Content:    msg.ToolResult.Content,
					},
				},
			})
		}
	}

	return messages
}

func buildTools(catalog []tools.Spec) []llms.Tool {
	result := make([]llms.Tool, 0, len(catalog))

	for _, spec := range catalog {
		result = append(result, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}

	return result
}
