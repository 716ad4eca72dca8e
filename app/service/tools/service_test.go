package tools

import (
	"context"
	"testing"
	"time"

	"luna/app/client/calendar"
	"luna/app/client/contactsdir"
	"luna/app/service/conversation"
	"luna/app/service/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCalendar struct {
	listCalls   int
	createCalls int
	events      []calendar.Event
	lastFrom    time.Time
	lastTo      time.Time
}

func (s *stubCalendar) ListEvents(_ context.Context, from, to time.Time) ([]calendar.Event, error) {
	s.listCalls++
	s.lastFrom, s.lastTo = from, to

	return s.events, nil
}

func (s *stubCalendar) CreateEvent(_ context.Context, req calendar.CreateEventRequest) (*calendar.Event, error) {
	s.createCalls++

	return &calendar.Event{Title: req.Title, Start: req.Start, End: req.End}, nil
}

type stubContacts struct {
	contacts []contactsdir.Contact
}

func (s *stubContacts) Search(_ context.Context, _ string) ([]contactsdir.Contact, error) {
	return s.contacts, nil
}

type stubFacts struct {
	added []store.Fact
}

func (s *stubFacts) AddFact(subject, content string, sourceChat int64) (*store.Fact, error) {
	fact := store.Fact{ID: int64(len(s.added) + 1), Subject: subject, Content: content, SourceChat: sourceChat}
	s.added = append(s.added, fact)

	return &fact, nil
}

func (s *stubFacts) ListFacts(string) ([]store.Fact, error) { return s.added, nil }
func (s *stubFacts) DeleteFact(int64) error                 { return nil }

type stubReminders struct{}

func (stubReminders) AddReminder(message string, remindAt time.Time) (*store.Reminder, error) {
	return &store.Reminder{ID: 1, Message: message, RemindAt: remindAt}, nil
}

func (stubReminders) PendingReminders() ([]store.Reminder, error) { return nil, nil }
func (stubReminders) DeleteReminder(int64) error                  { return nil }

type recordingConv struct {
	appended []conversation.Message
}

func (r *recordingConv) Append(_ int64, msg conversation.Message) {
	r.appended = append(r.appended, msg)
}

func newTestService(t *testing.T, cal *stubCalendar, facts *stubFacts) (*Service, *recordingConv) {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Vienna")
	require.NoError(t, err)

	conv := &recordingConv{}
	svc := NewService(cal, &stubContacts{}, facts, stubReminders{}, conv, loc)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 25, 10, 0, 0, 0, loc)
	}

	return svc, conv
}

func TestInvokeUnknownTool(t *testing.T) {
	svc, conv := newTestService(t, &stubCalendar{}, &stubFacts{})

	msg := svc.Invoke(context.Background(), 1, conversation.ToolCall{
		ID: "call-1", Name: "explode", Arguments: "{}",
	})

	require.NotNil(t, msg.ToolResult)
	assert.True(t, msg.ToolResult.IsError)
	assert.Contains(t, msg.ToolResult.Content, "explode")
	assert.Equal(t, "call-1", msg.ToolResult.CallID)

	// Invoke logs the result itself, the caller never appends it again.
	require.Len(t, conv.appended, 1)
	assert.Equal(t, conversation.RoleTool, conv.appended[0].Role)
}

func TestInvokeCreateEventRejectsMissingStart(t *testing.T) {
	cal := &stubCalendar{}
	svc, _ := newTestService(t, cal, &stubFacts{})

	msg := svc.Invoke(context.Background(), 1, conversation.ToolCall{
		ID: "call-1", Name: "create_event", Arguments: `{"title":"Zahnarzt"}`,
	})

	require.NotNil(t, msg.ToolResult)
	assert.True(t, msg.ToolResult.IsError)
	assert.Zero(t, cal.createCalls)
}

func TestInvokeCreateEventDefaultsEnd(t *testing.T) {
	cal := &stubCalendar{}
	svc, _ := newTestService(t, cal, &stubFacts{})

	msg := svc.Invoke(context.Background(), 1, conversation.ToolCall{
		ID: "call-1", Name: "create_event",
		Arguments: `{"title":"Zahnarzt","start":"2026-08-26T09:00"}`,
	})

	require.NotNil(t, msg.ToolResult)
	assert.False(t, msg.ToolResult.IsError)
	assert.Equal(t, 1, cal.createCalls)
	assert.Contains(t, msg.ToolResult.Content, "Zahnarzt")
}

func TestInvokeGetEventsTomorrow(t *testing.T) {
	cal := &stubCalendar{}
	svc, _ := newTestService(t, cal, &stubFacts{})

	msg := svc.Invoke(context.Background(), 1, conversation.ToolCall{
		ID: "call-1", Name: "get_events", Arguments: `{"range":"tomorrow"}`,
	})

	require.NotNil(t, msg.ToolResult)
	assert.False(t, msg.ToolResult.IsError)
	assert.Equal(t, 1, cal.listCalls)
	assert.Equal(t, 26, cal.lastFrom.Day())
	assert.Equal(t, cal.lastFrom, cal.lastTo)
	assert.Equal(t, "Keine Termine gefunden.", msg.ToolResult.Content)
}

func TestInvokeGetEventsRejectsBadRange(t *testing.T) {
	cal := &stubCalendar{}
	svc, _ := newTestService(t, cal, &stubFacts{})

	msg := svc.Invoke(context.Background(), 1, conversation.ToolCall{
		ID: "call-1", Name: "get_events", Arguments: `{"range":"yesterday"}`,
	})

	require.NotNil(t, msg.ToolResult)
	assert.True(t, msg.ToolResult.IsError)
	assert.Zero(t, cal.listCalls)
}

func TestInvokeAddFact(t *testing.T) {
	facts := &stubFacts{}
	svc, _ := newTestService(t, &stubCalendar{}, facts)

	msg := svc.Invoke(context.Background(), 42, conversation.ToolCall{
		ID: "call-1", Name: "add_fact",
		Arguments: `{"subject":"anna","content":"mag Kaffee"}`,
	})

	require.NotNil(t, msg.ToolResult)
	assert.False(t, msg.ToolResult.IsError)
	require.Len(t, facts.added, 1)
	assert.Equal(t, int64(42), facts.added[0].SourceChat)
}

func TestCatalogIsCopied(t *testing.T) {
	svc, _ := newTestService(t, &stubCalendar{}, &stubFacts{})

	first := svc.Catalog()
	first[0].Name = "kaputt"

	assert.NotEqual(t, "kaputt", svc.Catalog()[0].Name)
}
