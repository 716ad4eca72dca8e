package store

import (
	"database/sql"
	"errors"

	"github.com/samber/oops"
)

const summaryJobName = "daily_summary"

// LastSummarySent returns the calendar day (2006-01-02, scheduler
// timezone) the daily summary last went out, or "" if it never did.
func (s *Service) LastSummarySent() (string, error) {
	var value string

	err := s.db.QueryRow(`SELECT value FROM job_state WHERE name = ?`, summaryJobName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", oops.Code("persistence").Errorf("failed to read job state: %w", err)
	}

	return value, nil
}

// SetLastSummarySent records a successful delivery. Called only after the
// outbound send is confirmed, never before.
func (s *Service) SetLastSummarySent(day string) error {
	_, err := s.db.Exec(
		`INSERT INTO job_state (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		summaryJobName, day,
	)
	if err != nil {
		return oops.Code("persistence").Errorf("failed to update job state: %w", err)
	}

	return nil
}
