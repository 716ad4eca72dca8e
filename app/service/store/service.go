package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"luna/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
	_ "modernc.org/sqlite"
)

// Service owns the durable state: facts, reminders and the scheduler job
// state. Everything else in the process is rebuilt on restart.
type Service struct {
	db *sql.DB
}

var _ do.Shutdownable = (*Service)(nil)

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if dir := filepath.Dir(cfg.DB.Path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	return Open(cfg.DB.Path)
}

func Open(path string) (*Service, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.Code("persistence").Errorf("failed to open database: %w", err)
	}

	// sqlite allows one writer; a single connection sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Service{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Service) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS facts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			content TEXT NOT NULL,
			source_chat INTEGER,
			created_at TEXT NOT NULL,
			reminded INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_facts_subject ON facts(subject);

		CREATE TABLE IF NOT EXISTS job_state (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message TEXT NOT NULL,
			remind_at TEXT NOT NULL,
			sent INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(sent, remind_at);
	`)
	if err != nil {
		return oops.Code("persistence").Errorf("failed to migrate database: %w", err)
	}

	return nil
}

func (s *Service) Shutdown() error {
	return s.db.Close()
}
