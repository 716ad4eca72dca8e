package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"luna/app/client/calendar"
	"luna/app/client/contactsdir"
	"luna/app/client/telegram"
	"luna/app/config"
	"luna/app/service/conversation"
	"luna/app/service/guard"
	"luna/app/service/orchestrator"
	"luna/app/service/queue"
	"luna/app/service/store"
	"luna/app/service/tools"

	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

const workerBufferSize = 16

type Sender interface {
	Send(chatID int64, text string) error
	Typing(chatID int64)
}

type UpdateSource interface {
	Updates(ctx context.Context) <-chan queue.Message
}

type Guard interface {
	IsAllowed(senderID int64) bool
}

type Assistant interface {
	HandleMessage(ctx context.Context, chatID int64, text string) string
}

type Conversations interface {
	Reset(chatID int64)
}

type ContactsSyncer interface {
	Sync(ctx context.Context) (string, error)
}

// Service connects the update stream to the assistant. Messages for the
// same chat are handled strictly in order by a dedicated worker; distinct
// chats proceed concurrently.
type Service struct {
	source    UpdateSource
	queue     *queue.Service
	guard     Guard
	assistant Assistant
	conv      Conversations
	calendar  tools.CalendarGateway
	contacts  tools.ContactsGateway
	syncer    ContactsSyncer
	facts     tools.FactStore
	sender    Sender
	loc       *time.Location

	group *errgroup.Group

	mu      sync.Mutex
	workers map[int64]chan queue.Message
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	loc, err := time.LoadLocation(cfg.Summary.Timezone)
	if err != nil {
		return nil, oops.Errorf("failed to load timezone: %w", err)
	}

	tg := do.MustInvoke[*telegram.Client](di)
	contactsClient := do.MustInvoke[*contactsdir.Client](di)

	return NewService(
		updateAdapter{client: tg},
		do.MustInvoke[*queue.Service](di),
		do.MustInvoke[*guard.Service](di),
		do.MustInvoke[*orchestrator.Service](di),
		do.MustInvoke[*conversation.Service](di),
		do.MustInvoke[*calendar.Client](di),
		contactsClient,
		contactsClient,
		do.MustInvoke[*store.Service](di),
		tg,
		loc,
	), nil
}

func NewService(
	source UpdateSource,
	msgQueue *queue.Service,
	accessGuard Guard,
	assistant Assistant,
	conv Conversations,
	calendarGw tools.CalendarGateway,
	contactsGw tools.ContactsGateway,
	syncer ContactsSyncer,
	facts tools.FactStore,
	sender Sender,
	loc *time.Location,
) *Service {
	return &Service{
		source:    source,
		queue:     msgQueue,
		guard:     accessGuard,
		assistant: assistant,
		conv:      conv,
		calendar:  calendarGw,
		contacts:  contactsGw,
		syncer:    syncer,
		facts:     facts,
		sender:    sender,
		loc:       loc,
		workers:   make(map[int64]chan queue.Message),
	}
}

func (s *Service) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	s.group = group

	group.Go(func() error {
		s.poll(ctx)
		return nil
	})

	group.Go(func() error {
		s.dispatch(ctx)
		return nil
	})

	return group.Wait()
}

func (s *Service) poll(ctx context.Context) {
	for msg := range s.source.Updates(ctx) {
		if !s.guard.IsAllowed(msg.UserID) {
			// Dropped without a reply: an unknown sender learns nothing.
			slog.Warn("Dropped message from disallowed sender", "user_id", msg.UserID)
			continue
		}

		s.queue.Add(msg)
	}
}

func (s *Service) dispatch(ctx context.Context) {
	for msg := range s.queue.Channel() {
		select {
		case s.workerChan(ctx, msg.ChatID) <- msg:
		default:
			slog.Warn("Chat worker backlog full, dropping message", "chat_id", msg.ChatID)
		}
	}
}

func (s *Service) workerChan(ctx context.Context, chatID int64) chan<- queue.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.workers[chatID]
	if !ok {
		ch = make(chan queue.Message, workerBufferSize)
		s.workers[chatID] = ch

		s.group.Go(func() error {
			s.worker(ctx, ch)
			return nil
		})
	}

	return ch
}

func (s *Service) worker(ctx context.Context, ch <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			s.handle(ctx, msg)
		}
	}
}

func (s *Service) handle(ctx context.Context, msg queue.Message) {
	s.sender.Typing(msg.ChatID)

	var reply string

	if strings.HasPrefix(msg.Text, "/") {
		reply = s.handleCommand(ctx, msg.ChatID, msg.Text)
	} else {
		reply = s.assistant.HandleMessage(ctx, msg.ChatID, msg.Text)
	}

	if reply == "" {
		return
	}

	if err := s.sender.Send(msg.ChatID, reply); err != nil {
		slog.Error("Failed to deliver reply", "chat_id", msg.ChatID, "error", err)
	}
}

// updateAdapter narrows the bot update stream to the queue message shape.
type updateAdapter struct {
	client *telegram.Client
}

func (a updateAdapter) Updates(ctx context.Context) <-chan queue.Message {
	out := make(chan queue.Message)

	go func() {
		defer close(out)

		for update := range a.client.Updates(ctx) {
			if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
				continue
			}

			out <- queue.Message{
				ChatID: update.Message.Chat.ID,
				UserID: update.Message.From.ID,
				Text:   update.Message.Text,
			}
		}
	}()

	return out
}
