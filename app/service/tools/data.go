package tools

import (
	"context"
	"time"

	"luna/app/client/calendar"
	"luna/app/client/contactsdir"
	"luna/app/service/store"
)

// Spec describes one catalog entry the way the reasoning capability sees
// it. Parameters is a JSON schema object.
type Spec struct {
	Name        string
	Description string
	Parameters  map[string]any
	Mutating    bool
}

type CalendarGateway interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, req calendar.CreateEventRequest) (*calendar.Event, error)
}

type ContactsGateway interface {
	Search(ctx context.Context, query string) ([]contactsdir.Contact, error)
}

type FactStore interface {
	AddFact(subject, content string, sourceChat int64) (*store.Fact, error)
	ListFacts(subject string) ([]store.Fact, error)
	DeleteFact(id int64) error
}

type ReminderStore interface {
	AddReminder(message string, remindAt time.Time) (*store.Reminder, error)
	PendingReminders() ([]store.Reminder, error)
	DeleteReminder(id int64) error
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

type getEventsArgs struct {
	Range string `json:"range" validate:"required,oneof=today tomorrow week date"`
	Date  string `json:"date" validate:"required_if=Range date,omitempty,datetime=2006-01-02"`
}

type createEventArgs struct {
	Title       string   `json:"title" validate:"required"`
	Start       string   `json:"start" validate:"required,datetime=2006-01-02T15:04"`
	End         string   `json:"end" validate:"omitempty,datetime=2006-01-02T15:04"`
	Attendees   []string `json:"attendees"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
}

type searchContactsArgs struct {
	Query string `json:"query" validate:"required,min=1"`
}

type addFactArgs struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type listFactsArgs struct {
	Subject string `json:"subject"`
}

type deleteFactArgs struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type createReminderArgs struct {
	Message  string `json:"message" validate:"required"`
	RemindAt string `json:"remind_at" validate:"required,datetime=2006-01-02T15:04"`
}

type deleteReminderArgs struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}
