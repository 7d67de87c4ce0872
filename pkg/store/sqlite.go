package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	// registers the sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	network TEXT NOT NULL,
	raw_node_data TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	gini REAL,
	nakamoto INTEGER,
	connectivity_loss TEXT
);
CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analyses(user_id, created_at DESC);
`

const selectColumns = `id, user_id, name, network, raw_node_data, created_at, gini, nakamoto, connectivity_loss`

// SQLiteStore persists records in a single SQLite file
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) analyses.db inside dataDir
func NewSQLiteStore(ctx context.Context, dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := "file:" + filepath.Join(dataDir, "analyses.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	return OpenSQLite(ctx, dsn)
}

// OpenSQLite connects to an explicit sqlite3 DSN
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY churn
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Create inserts a new record
func (s *SQLiteStore) Create(ctx context.Context, r *Record) (string, error) {
	if err := prepare(r, s.now()); err != nil {
		return "", err
	}
	gini, nakamoto, loss := metricArgs(r.Metrics)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Name, string(r.Network), r.RawNodeData, r.CreatedAt,
		gini, nakamoto, loss,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create analysis: %w", err)
	}
	return r.ID, nil
}

// Get retrieves a record by id
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, `SELECT `+selectColumns+` FROM analyses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return row.record(), nil
}

// ListByUser returns a user's records newest first
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]*Record, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+selectColumns+` FROM analyses WHERE user_id = ? ORDER BY created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	out := make([]*Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	newestFirst(out)
	return out, nil
}

// Update applies a partial update; NULL parameters keep the current column
func (s *SQLiteStore) Update(ctx context.Context, id string, p Patch) (*Record, error) {
	gini, nakamoto, loss := metricArgs(p.Metrics)

	res, err := s.db.ExecContext(ctx, `
		UPDATE analyses SET
			name = COALESCE(?, name),
			raw_node_data = COALESCE(?, raw_node_data),
			gini = COALESCE(?, gini),
			nakamoto = COALESCE(?, nakamoto),
			connectivity_loss = COALESCE(?, connectivity_loss)
		WHERE id = ?`,
		optString(p.Name), optString(p.RawNodeData), gini, nakamoto, loss, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update analysis: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Get(ctx, id)
}

// Ping checks database connectivity
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
