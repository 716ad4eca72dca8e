package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"luna/app/service/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	lastSent   string
	reminded   [][]int64
	due        []store.Reminder
	sentIDs    []int64
	stateFails bool
}

func (f *fakeStore) LastSummarySent() (string, error) {
	if f.stateFails {
		return "", errors.New("db down")
	}

	return f.lastSent, nil
}

func (f *fakeStore) SetLastSummarySent(day string) error {
	f.lastSent = day
	return nil
}

func (f *fakeStore) MarkFactsReminded(ids []int64) error {
	f.reminded = append(f.reminded, ids)
	return nil
}

func (f *fakeStore) DueReminders(time.Time) ([]store.Reminder, error) {
	return f.due, nil
}

func (f *fakeStore) MarkReminderSent(id int64) error {
	f.sentIDs = append(f.sentIDs, id)
	return nil
}

type fakeBuilder struct {
	builds int
	err    error
}

func (f *fakeBuilder) BuildDailySummary(context.Context) (string, []int64, error) {
	f.builds++

	if f.err != nil {
		return "", nil, f.err
	}

	return "Zusammenfassung", []int64{1, 2}, nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(_ int64, text string) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, text)

	return nil
}

func newTestScheduler(t *testing.T, st *fakeStore, builder *fakeBuilder, sender *fakeSender, now time.Time) *Service {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Vienna")
	require.NoError(t, err)

	svc := NewService(st, builder, sender, 99, 7, 0, loc)
	svc.now = func() time.Time { return now.In(loc) }

	return svc
}

func vienna(t *testing.T, hour, minute int) time.Time {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Vienna")
	require.NoError(t, err)

	return time.Date(2026, 8, 25, hour, minute, 0, 0, loc)
}

func TestSummaryNotBeforeTarget(t *testing.T) {
	st := &fakeStore{}
	builder := &fakeBuilder{}
	sender := &fakeSender{}

	svc := newTestScheduler(t, st, builder, sender, vienna(t, 6, 59))
	svc.tick(context.Background())

	assert.Zero(t, builder.builds)
	assert.Empty(t, sender.sent)
	assert.Empty(t, st.lastSent)
}

func TestSummaryFiresOncePerDay(t *testing.T) {
	st := &fakeStore{}
	builder := &fakeBuilder{}
	sender := &fakeSender{}

	svc := newTestScheduler(t, st, builder, sender, vienna(t, 7, 0))

	svc.tick(context.Background())
	svc.tick(context.Background())
	svc.tick(context.Background())

	assert.Equal(t, 1, builder.builds)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Zusammenfassung")
	assert.Equal(t, "2026-08-25", st.lastSent)
	assert.Equal(t, [][]int64{{1, 2}}, st.reminded)
}

func TestSummarySurvivesRestart(t *testing.T) {
	st := &fakeStore{}
	builder := &fakeBuilder{}
	sender := &fakeSender{}

	first := newTestScheduler(t, st, builder, sender, vienna(t, 7, 30))
	first.tick(context.Background())
	require.Len(t, sender.sent, 1)

	// Same store, fresh process: the durable state suppresses a second send.
	second := newTestScheduler(t, st, builder, sender, vienna(t, 8, 0))
	second.tick(context.Background())

	assert.Len(t, sender.sent, 1)
	assert.Equal(t, 1, builder.builds)
}

func TestStaleStateFromYesterdayFiresExactlyOnce(t *testing.T) {
	st := &fakeStore{lastSent: "2026-08-24"}
	builder := &fakeBuilder{}
	sender := &fakeSender{}

	svc := newTestScheduler(t, st, builder, sender, vienna(t, 7, 15))

	svc.tick(context.Background())
	svc.tick(context.Background())

	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "2026-08-25", st.lastSent)
}

func TestFailedSendLeavesStateUntouched(t *testing.T) {
	st := &fakeStore{}
	builder := &fakeBuilder{}
	sender := &fakeSender{err: errors.New("telegram down")}

	svc := newTestScheduler(t, st, builder, sender, vienna(t, 7, 0))
	svc.tick(context.Background())

	assert.Empty(t, st.lastSent)
	assert.Empty(t, st.reminded)

	// Next tick with a recovered sender delivers.
	sender.err = nil
	svc.tick(context.Background())

	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "2026-08-25", st.lastSent)
}

func TestFailedBuildLeavesStateUntouched(t *testing.T) {
	st := &fakeStore{}
	builder := &fakeBuilder{err: errors.New("reasoning down")}
	sender := &fakeSender{}

	svc := newTestScheduler(t, st, builder, sender, vienna(t, 7, 0))
	svc.tick(context.Background())

	assert.Empty(t, sender.sent)
	assert.Empty(t, st.lastSent)
}

func TestDueRemindersDelivered(t *testing.T) {
	st := &fakeStore{due: []store.Reminder{
		{ID: 1, Message: "Medikament nehmen"},
		{ID: 2, Message: "Anrufen"},
	}}
	builder := &fakeBuilder{}
	sender := &fakeSender{}

	svc := newTestScheduler(t, st, builder, sender, vienna(t, 6, 0))
	svc.tick(context.Background())

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "⏰ Erinnerung: Medikament nehmen", sender.sent[0])
	assert.Equal(t, []int64{1, 2}, st.sentIDs)
}

func TestReminderNotMarkedOnFailedSend(t *testing.T) {
	st := &fakeStore{due: []store.Reminder{{ID: 1, Message: "wichtig"}}}
	builder := &fakeBuilder{}
	sender := &fakeSender{err: errors.New("telegram down")}

	svc := newTestScheduler(t, st, builder, sender, vienna(t, 6, 0))
	svc.tick(context.Background())

	assert.Empty(t, st.sentIDs)
}
