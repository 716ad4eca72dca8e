package conversation

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a structured tool request proposed by the model.
// Arguments is the raw JSON object string, validated by the dispatcher.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult carries the outcome of one dispatched tool call.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

// Message is immutable once appended to a chat history.
type Message struct {
	Role       Role
	Time       time.Time
	Text       string
	ToolCalls  []ToolCall
	ToolResult *ToolResult
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Time: time.Now(), Text: text}
}

func AssistantMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Time: time.Now(), Text: text, ToolCalls: calls}
}

func ToolResultMessage(result ToolResult) Message {
	return Message{Role: RoleTool, Time: time.Now(), ToolResult: &result}
}
