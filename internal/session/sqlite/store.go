// Package sqlite persists the session identity in a local SQLite database so several
// student profiles can share one machine.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"quiz-client/internal/session"
)

const defaultProfile = "default"

type Store struct {
	db      *sql.DB
	profile string
	now     func() time.Time
}

func NewStore(path, profile string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz-client.db"
	}
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = defaultProfile
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db, profile: profile, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT payload FROM sessions WHERE profile = ?`,
		s.profile,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// Save upserts so a profile only ever has one row.
func (s *Store) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (profile, payload, saved_at_unix)
		 VALUES (?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET
			payload = excluded.payload,
			saved_at_unix = excluded.saved_at_unix`,
		s.profile,
		string(data),
		s.now().Unix(),
	)
	return err
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE profile = ?`, s.profile)
	return err
}
