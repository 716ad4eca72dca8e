package scheduler

import (
	"context"
	"log/slog"
	"time"

	"luna/app/config"
	"luna/app/service/orchestrator"
	"luna/app/service/store"

	"luna/app/client/telegram"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const (
	tickInterval = 30 * time.Second
	dateLayout   = "2006-01-02"
)

type Sender interface {
	Send(chatID int64, text string) error
}

type SummaryBuilder interface {
	BuildDailySummary(ctx context.Context) (string, []int64, error)
}

type JobStore interface {
	LastSummarySent() (string, error)
	SetLastSummarySent(day string) error
	MarkFactsReminded(ids []int64) error
	DueReminders(now time.Time) ([]store.Reminder, error)
	MarkReminderSent(id int64) error
}

// Service fires the daily summary at most once per calendar day and
// delivers due reminders. The dedup state lives in the store and is read
// on every tick, so a restart after a successful send cannot double-fire.
type Service struct {
	store   JobStore
	builder SummaryBuilder
	sender  Sender

	chatID int64
	hour   int
	minute int
	loc    *time.Location

	now func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	loc, err := time.LoadLocation(cfg.Summary.Timezone)
	if err != nil {
		return nil, oops.Errorf("failed to load timezone: %w", err)
	}

	return NewService(
		do.MustInvoke[*store.Service](di),
		do.MustInvoke[*orchestrator.Service](di),
		do.MustInvoke[*telegram.Client](di),
		cfg.Telegram.SummaryChatID,
		cfg.Summary.Hour,
		cfg.Summary.Minute,
		loc,
	), nil
}

func NewService(
	jobStore JobStore,
	builder SummaryBuilder,
	sender Sender,
	chatID int64,
	hour, minute int,
	loc *time.Location,
) *Service {
	return &Service{
		store:   jobStore,
		builder: builder,
		sender:  sender,
		chatID:  chatID,
		hour:    hour,
		minute:  minute,
		loc:     loc,
		now:     time.Now,
	}
}

func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	s.checkSummary(ctx)
	s.checkReminders(ctx)
}

func (s *Service) checkSummary(ctx context.Context) {
	now := s.now().In(s.loc)
	today := now.Format(dateLayout)
	target := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)

	if now.Before(target) {
		return
	}

	lastSent, err := s.store.LastSummarySent()
	if err != nil {
		slog.Error("Failed to read summary job state", "error", err)
		return
	}

	if lastSent == today {
		return
	}

	text, factIDs, err := s.builder.BuildDailySummary(ctx)
	if err != nil {
		slog.Error("Failed to build daily summary", "error", err)
		return
	}

	if err := s.sender.Send(s.chatID, "Guten Morgen!\n\n"+text); err != nil {
		// State untouched: the next tick retries within the same day.
		slog.Error("Failed to deliver daily summary", "error", err)
		return
	}

	if err := s.store.SetLastSummarySent(today); err != nil {
		slog.Error("Failed to persist summary job state", "error", err)
		return
	}

	if err := s.store.MarkFactsReminded(factIDs); err != nil {
		slog.Error("Failed to mark facts reminded", "error", err)
	}

	slog.Info("Daily summary sent", "day", today, "telegram", true)
}

func (s *Service) checkReminders(_ context.Context) {
	due, err := s.store.DueReminders(s.now())
	if err != nil {
		slog.Error("Failed to query due reminders", "error", err)
		return
	}

	for _, reminder := range due {
		if err := s.sender.Send(s.chatID, "⏰ Erinnerung: "+reminder.Message); err != nil {
			slog.Error("Failed to deliver reminder", "id", reminder.ID, "error", err)
			continue
		}

		if err := s.store.MarkReminderSent(reminder.ID); err != nil {
			slog.Error("Failed to mark reminder sent", "id", reminder.ID, "error", err)
		}
	}
}
