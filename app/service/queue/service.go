package queue

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Service is the handoff between the telegram poll loop and the engine
// workers. Bounded: a full queue drops the message with a warning rather
// than stalling the poll loop.
type Service struct {
	queue chan Message
}

type Message struct {
	ChatID int64
	UserID int64
	Text   string
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Message, bufferSize),
	}, nil
}

func (s *Service) Add(msg Message) {
	// sends racing Shutdown would panic on the closed channel
	defer func() {
		_ = recover()
	}()

	select {
	case s.queue <- msg:
	default:
		slog.Warn("message queue is full", "chat_id", msg.ChatID)
	}
}

func (s *Service) Channel() <-chan Message {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
