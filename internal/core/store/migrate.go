package store

import (
	"context"
	"errors"
	"fmt"
)

// issued_at_ticks is declared without a type so a hand-edited value survives
// into Read and is reported as corrupt instead of being coerced.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sequence_state (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		issued_at_ticks NOT NULL,
		token TEXT NOT NULL
	);`,
}

// Migrate ensures the required database tables exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
