package conversation

import (
	"sync"

	"luna/app/config"

	"github.com/samber/do"
)

// Service keeps the per-chat message history. Histories live in memory
// only: a restart starts every chat from a clean slate.
type Service struct {
	windowSize int

	mu    sync.Mutex
	chats map[int64]*chatState
}

type chatState struct {
	mu       sync.Mutex
	messages []Message
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(cfg.Conversation.WindowSize), nil
}

func NewService(windowSize int) *Service {
	return &Service{
		windowSize: windowSize,
		chats:      make(map[int64]*chatState),
	}
}

func (s *Service) chat(chatID int64) *chatState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.chats[chatID]
	if !ok {
		state = &chatState{}
		s.chats[chatID] = state
	}

	return state
}

func (s *Service) Append(chatID int64, msg Message) {
	state := s.chat(chatID)

	state.mu.Lock()
	defer state.mu.Unlock()

	state.messages = append(state.messages, msg)
	state.evictLocked(s.windowSize)
}

// History returns a copy, safe to hand to the reasoning capability while
// other goroutines append to unrelated chats.
func (s *Service) History(chatID int64) []Message {
	state := s.chat(chatID)

	state.mu.Lock()
	defer state.mu.Unlock()

	result := make([]Message, len(state.messages))
	copy(result, state.messages)

	return result
}

func (s *Service) Reset(chatID int64) {
	state := s.chat(chatID)

	state.mu.Lock()
	defer state.mu.Unlock()

	state.messages = nil
}

// evictLocked trims the oldest messages once the window is exceeded. A
// tool-call message and its results are dropped as one group; a group whose
// results have not arrived yet blocks further eviction.
func (c *chatState) evictLocked(windowSize int) {
	for len(c.messages) > windowSize {
		head := c.messages[0]

		if head.Role == RoleAssistant && len(head.ToolCalls) > 0 {
			if !c.callsResolvedLocked(head.ToolCalls) {
				return
			}

			cut := 1
			for cut < len(c.messages) && c.messages[cut].Role == RoleTool {
				cut++
			}

			c.messages = c.messages[cut:]
			continue
		}

		c.messages = c.messages[1:]
	}
}

func (c *chatState) callsResolvedLocked(calls []ToolCall) bool {
	resolved := make(map[string]bool, len(calls))

	for _, msg := range c.messages {
		if msg.Role == RoleTool && msg.ToolResult != nil {
			resolved[msg.ToolResult.CallID] = true
		}
	}

	for _, call := range calls {
		if !resolved[call.ID] {
			return false
		}
	}

	return true
}
