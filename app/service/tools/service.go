package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"luna/app/client/calendar"
	"luna/app/client/contactsdir"
	"luna/app/config"
	"luna/app/service/conversation"
	"luna/app/service/store"

	"github.com/go-playground/validator/v10"
	"github.com/samber/do"
	"github.com/samber/oops"
)

// Conversations is the slice of the conversation service the dispatcher
// needs: every invocation is logged there before control returns.
type Conversations interface {
	Append(chatID int64, msg conversation.Message)
}

// Service dispatches model-requested tool calls against the gateways and
// the store. Arguments are validated first; a failed mutating call is
// never retried here, the model sees the error and decides.
type Service struct {
	calendar  CalendarGateway
	contacts  ContactsGateway
	facts     FactStore
	reminders ReminderStore
	conv      Conversations

	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	loc, err := time.LoadLocation(cfg.Summary.Timezone)
	if err != nil {
		return nil, oops.Errorf("failed to load timezone: %w", err)
	}

	storeSvc := do.MustInvoke[*store.Service](di)

	return NewService(
		do.MustInvoke[*calendar.Client](di),
		do.MustInvoke[*contactsdir.Client](di),
		storeSvc,
		storeSvc,
		do.MustInvoke[*conversation.Service](di),
		loc,
	), nil
}

func NewService(
	calendarGw CalendarGateway,
	contactsGw ContactsGateway,
	facts FactStore,
	reminders ReminderStore,
	conv Conversations,
	loc *time.Location,
) *Service {
	return &Service{
		calendar:  calendarGw,
		contacts:  contactsGw,
		facts:     facts,
		reminders: reminders,
		conv:      conv,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		loc:       loc,
		now:       time.Now,
	}
}

func (s *Service) Catalog() []Spec {
	result := make([]Spec, len(catalog))
	copy(result, catalog)

	return result
}

// Invoke runs one tool call, appends the outcome to the chat history as a
// tool-result message and returns that message. Errors never escape as Go
// errors: the model sees them as structured tool results.
func (s *Service) Invoke(ctx context.Context, chatID int64, call conversation.ToolCall) conversation.Message {
	content, err := s.dispatch(ctx, chatID, call)

	result := conversation.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: content,
	}

	if err != nil {
		result.IsError = true
		result.Content = err.Error()

		slog.Warn("Tool call failed",
			"tool", call.Name,
			"chat_id", chatID,
			"error", err,
		)
	}

	msg := conversation.ToolResultMessage(result)
	s.conv.Append(chatID, msg)

	return msg
}

func (s *Service) dispatch(ctx context.Context, chatID int64, call conversation.ToolCall) (string, error) {
	switch call.Name {
	case "get_events":
		args, err := decodeArgs[getEventsArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		return s.getEvents(ctx, args)

	case "create_event":
		args, err := decodeArgs[createEventArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		return s.createEvent(ctx, args)

	case "search_contacts":
		args, err := decodeArgs[searchContactsArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		return s.searchContacts(ctx, args)

	case "add_fact":
		args, err := decodeArgs[addFactArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		return s.addFact(args, chatID)

	case "list_facts":
		args, err := decodeArgs[listFactsArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		return s.listFacts(args)

	case "delete_fact":
		args, err := decodeArgs[deleteFactArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		if err := s.facts.DeleteFact(args.ID); err != nil {
			return "", err
		}
		return "Fakt gelöscht.", nil

	case "create_reminder":
		args, err := decodeArgs[createReminderArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		return s.createReminder(args)

	case "list_reminders":
		return s.listReminders()

	case "delete_reminder":
		args, err := decodeArgs[deleteReminderArgs](s.validate, call.Arguments)
		if err != nil {
			return "", err
		}
		if err := s.reminders.DeleteReminder(args.ID); err != nil {
			return "", err
		}
		return "Erinnerung gelöscht.", nil

	default:
		return "", oops.Code("validation").Errorf("unbekanntes Tool: %s", call.Name)
	}
}

func (s *Service) getEvents(ctx context.Context, args *getEventsArgs) (string, error) {
	today := s.today()

	var from, to time.Time

	switch args.Range {
	case "today":
		from, to = today, today
	case "tomorrow":
		from = today.AddDate(0, 0, 1)
		to = from
	case "week":
		from = today
		to = today.AddDate(0, 0, 6)
	case "date":
		day, err := time.ParseInLocation(dateLayout, args.Date, s.loc)
		if err != nil {
			return "", oops.Code("validation").Errorf("ungültiges Datum: %s", args.Date)
		}
		from, to = day, day
	}

	events, err := s.calendar.ListEvents(ctx, from, to)
	if err != nil {
		return "", err
	}

	return formatEvents(events, s.loc), nil
}

func (s *Service) createEvent(ctx context.Context, args *createEventArgs) (string, error) {
	start, err := time.ParseInLocation(dateTimeLayout, args.Start, s.loc)
	if err != nil {
		return "", oops.Code("validation").Errorf("ungültige Startzeit: %s", args.Start)
	}

	end := start.Add(time.Hour)
	if args.End != "" {
		end, err = time.ParseInLocation(dateTimeLayout, args.End, s.loc)
		if err != nil {
			return "", oops.Code("validation").Errorf("ungültige Endzeit: %s", args.End)
		}
	}

	event, err := s.calendar.CreateEvent(ctx, calendar.CreateEventRequest{
		Title:       args.Title,
		Start:       start,
		End:         end,
		Attendees:   args.Attendees,
		Description: args.Description,
		Location:    args.Location,
	})
	if err != nil {
		return "", err
	}

	return "Termin erstellt: " + formatEvent(*event, s.loc), nil
}

func (s *Service) searchContacts(ctx context.Context, args *searchContactsArgs) (string, error) {
	contacts, err := s.contacts.Search(ctx, args.Query)
	if err != nil {
		return "", err
	}

	return formatContacts(args.Query, contacts), nil
}

func (s *Service) addFact(args *addFactArgs, chatID int64) (string, error) {
	fact, err := s.facts.AddFact(args.Subject, args.Content, chatID)
	if err != nil {
		return "", err
	}

	return "Gemerkt: " + fact.Subject + " – " + fact.Content, nil
}

func (s *Service) listFacts(args *listFactsArgs) (string, error) {
	facts, err := s.facts.ListFacts(args.Subject)
	if err != nil {
		return "", err
	}

	return formatFacts(facts), nil
}

func (s *Service) createReminder(args *createReminderArgs) (string, error) {
	remindAt, err := time.ParseInLocation(dateTimeLayout, args.RemindAt, s.loc)
	if err != nil {
		return "", oops.Code("validation").Errorf("ungültige Fälligkeitszeit: %s", args.RemindAt)
	}

	reminder, err := s.reminders.AddReminder(args.Message, remindAt)
	if err != nil {
		return "", err
	}

	return "Erinnerung erstellt für " + reminder.RemindAt.In(s.loc).Format("02.01.2006 15:04") + ".", nil
}

func (s *Service) listReminders() (string, error) {
	reminders, err := s.reminders.PendingReminders()
	if err != nil {
		return "", err
	}

	return formatReminders(reminders, s.loc), nil
}

func (s *Service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

func decodeArgs[T any](validate *validator.Validate, raw string) (*T, error) {
	if raw == "" {
		raw = "{}"
	}

	var args T
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, oops.Code("validation").Errorf("ungültige Argumente: %w", err)
	}

	if err := validate.Struct(&args); err != nil {
		return nil, oops.Code("validation").Errorf("ungültige Argumente: %w", err)
	}

	return &args, nil
}
