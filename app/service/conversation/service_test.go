package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndHistory(t *testing.T) {
	s := NewService(10)

	s.Append(1, UserMessage("hallo"))
	s.Append(1, AssistantMessage("hi", nil))
	s.Append(2, UserMessage("andere"))

	history := s.History(1)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "hallo", history[0].Text)
	assert.Equal(t, RoleAssistant, history[1].Role)

	assert.Len(t, s.History(2), 1)
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewService(10)
	s.Append(1, UserMessage("original"))

	history := s.History(1)
	history[0].Text = "mutiert"

	assert.Equal(t, "original", s.History(1)[0].Text)
}

func TestReset(t *testing.T) {
	s := NewService(10)
	s.Append(1, UserMessage("hallo"))
	s.Append(1, AssistantMessage("hi", nil))

	s.Reset(1)

	assert.Empty(t, s.History(1))
}

func TestEvictionDropsOldest(t *testing.T) {
	s := NewService(3)

	s.Append(1, UserMessage("eins"))
	s.Append(1, AssistantMessage("zwei", nil))
	s.Append(1, UserMessage("drei"))
	s.Append(1, AssistantMessage("vier", nil))

	history := s.History(1)
	require.Len(t, history, 3)
	assert.Equal(t, "zwei", history[0].Text)
	assert.Equal(t, "vier", history[2].Text)
}

func TestEvictionKeepsToolGroupTogether(t *testing.T) {
	s := NewService(3)

	calls := []ToolCall{{ID: "call-1", Name: "get_events", Arguments: "{}"}}

	s.Append(1, AssistantMessage("", calls))
	s.Append(1, ToolResultMessage(ToolResult{CallID: "call-1", Name: "get_events", Content: "keine"}))
	s.Append(1, AssistantMessage("fertig", nil))
	s.Append(1, UserMessage("weiter"))

	// The call/result pair is dropped as one unit, never split.
	history := s.History(1)
	require.Len(t, history, 2)
	assert.Equal(t, "fertig", history[0].Text)
	assert.Equal(t, "weiter", history[1].Text)
}

func TestEvictionBlocksOnUnresolvedToolCalls(t *testing.T) {
	s := NewService(2)

	calls := []ToolCall{{ID: "call-1", Name: "get_events", Arguments: "{}"}}

	s.Append(1, AssistantMessage("", calls))
	s.Append(1, UserMessage("zwei"))
	s.Append(1, UserMessage("drei"))

	// No result for call-1 yet: the window may overflow, but the pending
	// group stays at the head.
	history := s.History(1)
	require.Len(t, history, 3)
	assert.Equal(t, RoleAssistant, history[0].Role)
	require.Len(t, history[0].ToolCalls, 1)

	s.Append(1, ToolResultMessage(ToolResult{CallID: "call-1", Name: "get_events", Content: "ok"}))

	history = s.History(1)
	assert.LessOrEqual(t, len(history), 2)
	assert.Equal(t, RoleUser, history[0].Role)
}
