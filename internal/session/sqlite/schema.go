package sqlite

import (
	"context"
)

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			profile TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			saved_at_unix INTEGER NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
