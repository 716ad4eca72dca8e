package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"luna/app/client/calendar"
	"luna/app/client/llm"
	"luna/app/config"
	"luna/app/service/conversation"
	"luna/app/service/store"
	"luna/app/service/tools"

	_ "embed"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

//go:embed system_prompt.txt
var systemPromptTemplate string

//go:embed summary_prompt.txt
var summaryPromptTemplate string

const (
	reasoningDownReply = "Entschuldigung, ich kann gerade nicht nachdenken. Versuch es bitte gleich noch einmal."
	roundLimitReply    = "Entschuldigung, das konnte ich gerade nicht fertigstellen. Versuch es bitte noch einmal."

	maxSummaryFacts = 5
)

type Reasoner interface {
	Complete(ctx context.Context, system string, history []conversation.Message, catalog []tools.Spec) (*llm.Completion, error)
}

type Dispatcher interface {
	Catalog() []tools.Spec
	Invoke(ctx context.Context, chatID int64, call conversation.ToolCall) conversation.Message
}

type Conversations interface {
	Append(chatID int64, msg conversation.Message)
	History(chatID int64) []conversation.Message
}

type SummaryFacts interface {
	UnremindedFacts() ([]store.Fact, error)
}

// Service drives the reasoning/tool-call cycle for one incoming message
// and builds the daily summary from read-only sources.
type Service struct {
	conv       Conversations
	reasoner   Reasoner
	dispatcher Dispatcher
	calendarGw tools.CalendarGateway
	facts      SummaryFacts

	maxRounds int
	loc       *time.Location
	now       func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	loc, err := time.LoadLocation(cfg.Summary.Timezone)
	if err != nil {
		return nil, oops.Errorf("failed to load timezone: %w", err)
	}

	return NewService(
		do.MustInvoke[*conversation.Service](di),
		do.MustInvoke[*llm.Client](di),
		do.MustInvoke[*tools.Service](di),
		do.MustInvoke[*calendar.Client](di),
		do.MustInvoke[*store.Service](di),
		cfg.Conversation.MaxToolRounds,
		loc,
	), nil
}

func NewService(
	conv Conversations,
	reasoner Reasoner,
	dispatcher Dispatcher,
	calendarGw tools.CalendarGateway,
	facts SummaryFacts,
	maxRounds int,
	loc *time.Location,
) *Service {
	return &Service{
		conv:       conv,
		reasoner:   reasoner,
		dispatcher: dispatcher,
		calendarGw: calendarGw,
		facts:      facts,
		maxRounds:  maxRounds,
		loc:        loc,
		now:        time.Now,
	}
}

// HandleMessage runs the full turn for one user message and returns the
// reply to deliver. The reply is never empty: reasoning failure and the
// round limit both degrade into a fixed apologetic answer.
func (s *Service) HandleMessage(ctx context.Context, chatID int64, text string) string {
	s.conv.Append(chatID, conversation.UserMessage(text))

	system := s.renderSystemPrompt()

	for round := 0; round < s.maxRounds; round++ {
		completion, err := s.reasoner.Complete(ctx, system, s.conv.History(chatID), s.dispatcher.Catalog())
		if err != nil {
			// The user message stays in history so a retry has context.
			slog.Error("Reasoning unavailable", "chat_id", chatID, "error", err)
			return reasoningDownReply
		}

		if len(completion.ToolCalls) == 0 {
			s.conv.Append(chatID, conversation.AssistantMessage(completion.Text, nil))
			return completion.Text
		}

		s.conv.Append(chatID, conversation.AssistantMessage(completion.Text, completion.ToolCalls))

		for _, call := range completion.ToolCalls {
			s.dispatcher.Invoke(ctx, chatID, call)
		}
	}

	slog.Warn("Tool round limit exceeded", "chat_id", chatID, "max_rounds", s.maxRounds)

	s.conv.Append(chatID, conversation.AssistantMessage(roundLimitReply, nil))

	return roundLimitReply
}

// BuildDailySummary assembles the morning summary from today's events and
// the not-yet-surfaced facts. Read-only: no tool calls, no conversation
// state touched. Returns the summary text and the IDs of the included
// facts so the scheduler can mark them after a confirmed delivery.
func (s *Service) BuildDailySummary(ctx context.Context) (string, []int64, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	events, err := s.calendarGw.ListEvents(ctx, today, today)
	if err != nil {
		return "", nil, err
	}

	facts, err := s.facts.UnremindedFacts()
	if err != nil {
		return "", nil, err
	}

	if len(facts) > maxSummaryFacts {
		facts = facts[:maxSummaryFacts]
	}

	prompt := renderTemplate(summaryPromptTemplate, map[string]string{
		"today":  germanDate(now),
		"events": summaryEvents(events, s.loc),
		"facts":  summaryFacts(facts),
	})

	completion, err := s.reasoner.Complete(ctx, s.renderSystemPrompt(),
		[]conversation.Message{conversation.UserMessage(prompt)}, nil)
	if err != nil {
		return "", nil, err
	}

	factIDs := pie.Map(facts, func(f store.Fact) int64 { return f.ID })

	return strings.TrimSpace(completion.Text), factIDs, nil
}

func (s *Service) renderSystemPrompt() string {
	return renderTemplate(systemPromptTemplate, map[string]string{
		"now": germanDate(s.now().In(s.loc)) + ", " + s.now().In(s.loc).Format("15:04") + " Uhr",
	})
}

func renderTemplate(template string, values map[string]string) string {
	for key, value := range values {
		template = strings.ReplaceAll(template, "{"+key+"}", value)
	}

	return template
}

func summaryEvents(events []calendar.Event, loc *time.Location) string {
	if len(events) == 0 {
		return "Keine Termine."
	}

	lines := pie.Map(events, func(e calendar.Event) string {
		if e.AllDay {
			return "- Ganztägig: " + e.Title
		}
		return "- " + e.Start.In(loc).Format("15:04") + ": " + e.Title
	})

	return strings.Join(lines, "\n")
}

func summaryFacts(facts []store.Fact) string {
	if len(facts) == 0 {
		return "Keine."
	}

	lines := pie.Map(facts, func(f store.Fact) string {
		return "- " + f.Subject + ": " + f.Content
	})

	return strings.Join(lines, "\n")
}

var germanWeekdays = [...]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"}

var germanMonths = [...]string{"", "Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember"}

func germanDate(t time.Time) string {
	return fmt.Sprintf("%s, %d. %s %d", germanWeekdays[t.Weekday()], t.Day(), germanMonths[t.Month()], t.Year())
}
