package store

import "context"

// migrate creates the analyses table
func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		network TEXT NOT NULL,
		raw_node_data TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		gini DOUBLE PRECISION,
		nakamoto INTEGER,
		connectivity_loss TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analyses(user_id, created_at DESC);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
