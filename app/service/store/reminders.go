package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

type Reminder struct {
	ID       int64
	Message  string
	RemindAt time.Time
	Sent     bool
}

func (s *Service) AddReminder(message string, remindAt time.Time) (*Reminder, error) {
	now := time.Now().UTC()

	result, err := s.db.Exec(
		`INSERT INTO reminders (message, remind_at, created_at) VALUES (?, ?, ?)`,
		message, remindAt.UTC().Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, oops.Code("persistence").Errorf("failed to insert reminder: %w", err)
	}

	id, _ := result.LastInsertId()

	slog.Info("Stored reminder", "id", id, "remind_at", remindAt)

	return &Reminder{ID: id, Message: message, RemindAt: remindAt}, nil
}

// DueReminders returns unsent reminders whose due time has passed.
func (s *Service) DueReminders(now time.Time) ([]Reminder, error) {
	rows, err := s.db.Query(
		`SELECT id, message, remind_at, sent FROM reminders
			WHERE sent = 0 AND remind_at <= ? ORDER BY remind_at ASC`,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, oops.Code("persistence").Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (s *Service) PendingReminders() ([]Reminder, error) {
	rows, err := s.db.Query(
		`SELECT id, message, remind_at, sent FROM reminders
			WHERE sent = 0 ORDER BY remind_at ASC`,
	)
	if err != nil {
		return nil, oops.Code("persistence").Errorf("failed to query pending reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (s *Service) MarkReminderSent(id int64) error {
	_, err := s.db.Exec(`UPDATE reminders SET sent = 1 WHERE id = ?`, id)
	if err != nil {
		return oops.Code("persistence").Errorf("failed to mark reminder %d sent: %w", id, err)
	}

	return nil
}

func (s *Service) DeleteReminder(id int64) error {
	result, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return oops.Code("persistence").Errorf("failed to delete reminder: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return oops.Code("persistence").Errorf("reminder %d not found", id)
	}

	return nil
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var reminders []Reminder

	for rows.Next() {
		var (
			r        Reminder
			remindAt string
			sent     int
		)

		if err := rows.Scan(&r.ID, &r.Message, &remindAt, &sent); err != nil {
			return nil, oops.Code("persistence").Errorf("failed to scan reminder: %w", err)
		}

		r.RemindAt, _ = time.Parse(time.RFC3339, remindAt)
		r.Sent = sent != 0

		reminders = append(reminders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("persistence").Errorf("failed to read reminders: %w", err)
	}

	return reminders, nil
}
