package store

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Fact is one durable statement about a contact. Facts are append-only:
// corrections are new facts, removal happens only through DeleteFact.
type Fact struct {
	ID         int64
	Subject    string
	Content    string
	SourceChat int64
	CreatedAt  time.Time
	Reminded   bool
}

func (s *Service) AddFact(subject, content string, sourceChat int64) (*Fact, error) {
	now := time.Now().UTC()
	subject = strings.ToLower(strings.TrimSpace(subject))

	result, err := s.db.Exec(
		`INSERT INTO facts (subject, content, source_chat, created_at) VALUES (?, ?, ?, ?)`,
		subject, content, sourceChat, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, oops.Code("persistence").Errorf("failed to insert fact: %w", err)
	}

	id, _ := result.LastInsertId()

	slog.Info("Stored fact", "subject", subject, "id", id)

	return &Fact{
		ID:         id,
		Subject:    subject,
		Content:    content,
		SourceChat: sourceChat,
		CreatedAt:  now,
	}, nil
}

// ListFacts returns facts oldest-first. An empty subject returns every
// fact; otherwise subjects are matched by case-insensitive substring.
func (s *Service) ListFacts(subject string) ([]Fact, error) {
	query := `SELECT id, subject, content, source_chat, created_at, reminded FROM facts ORDER BY id ASC`
	args := []any{}

	if subject != "" {
		query = `SELECT id, subject, content, source_chat, created_at, reminded FROM facts
			WHERE subject LIKE ? ORDER BY id ASC`
		args = append(args, "%"+strings.ToLower(subject)+"%")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, oops.Code("persistence").Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (s *Service) DeleteFact(id int64) error {
	result, err := s.db.Exec(`DELETE FROM facts WHERE id = ?`, id)
	if err != nil {
		return oops.Code("persistence").Errorf("failed to delete fact: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return oops.Code("persistence").Errorf("fact %d not found", id)
	}

	slog.Info("Deleted fact", "id", id)

	return nil
}

// UnremindedFacts returns facts not yet surfaced in a daily summary.
func (s *Service) UnremindedFacts() ([]Fact, error) {
	rows, err := s.db.Query(
		`SELECT id, subject, content, source_chat, created_at, reminded FROM facts
			WHERE reminded = 0 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, oops.Code("persistence").Errorf("failed to query unreminded facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (s *Service) MarkFactsReminded(ids []int64) error {
	for _, id := range ids {
		if _, err := s.db.Exec(`UPDATE facts SET reminded = 1 WHERE id = ?`, id); err != nil {
			return oops.Code("persistence").Errorf("failed to mark fact %d reminded: %w", id, err)
		}
	}

	return nil
}

func (s *Service) CountFacts() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM facts`).Scan(&count); err != nil {
		return 0, oops.Code("persistence").Errorf("failed to count facts: %w", err)
	}

	return count, nil
}

func scanFacts(rows *sql.Rows) ([]Fact, error) {
	var facts []Fact

	for rows.Next() {
		var (
			f         Fact
			source    int64
			createdAt string
			reminded  int
		)

		if err := rows.Scan(&f.ID, &f.Subject, &f.Content, &source, &createdAt, &reminded); err != nil {
			return nil, oops.Code("persistence").Errorf("failed to scan fact: %w", err)
		}

		f.SourceChat = source
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		f.Reminded = reminded != 0

		facts = append(facts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("persistence").Errorf("failed to read facts: %w", err)
	}

	return facts, nil
}
