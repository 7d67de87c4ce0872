package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// Create inserts a new record
func (s *PGStore) Create(ctx context.Context, r *Record) (string, error) {
	if err := prepare(r, s.now()); err != nil {
		return "", err
	}
	gini, nakamoto, loss := metricArgs(r.Metrics)

	query := `
		INSERT INTO analyses (id, user_id, name, network, raw_node_data, created_at, gini, nakamoto, connectivity_loss)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.UserID,
		r.Name,
		string(r.Network),
		r.RawNodeData,
		r.CreatedAt,
		gini,
		nakamoto,
		loss,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create analysis: %w", err)
	}
	return r.ID, nil
}

// Get retrieves a record by id
func (s *PGStore) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + selectColumns + ` FROM analyses WHERE id = $1`

	r, err := scanRecord(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return r, nil
}

// ListByUser returns a user's records newest first
func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]*Record, error) {
	query := `SELECT ` + selectColumns + ` FROM analyses WHERE user_id = $1 ORDER BY created_at DESC, id ASC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	out := make([]*Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return out, nil
}

// Update applies a partial update; NULL parameters keep the current column
func (s *PGStore) Update(ctx context.Context, id string, p Patch) (*Record, error) {
	gini, nakamoto, loss := metricArgs(p.Metrics)

	query := `
		UPDATE analyses SET
			name = COALESCE($2, name),
			raw_node_data = COALESCE($3, raw_node_data),
			gini = COALESCE($4, gini),
			nakamoto = COALESCE($5, nakamoto),
			connectivity_loss = COALESCE($6, connectivity_loss)
		WHERE id = $1
		RETURNING ` + selectColumns

	r, err := scanRecord(s.pool.QueryRow(ctx, query, id, optString(p.Name), optString(p.RawNodeData), gini, nakamoto, loss))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update analysis: %w", err)
	}
	return r, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		r        Record
		network  string
		gini     *float64
		nakamoto *int32
		loss     *string
	)
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Name,
		&network,
		&r.RawNodeData,
		&r.CreatedAt,
		&gini,
		&nakamoto,
		&loss,
	)
	if err != nil {
		return nil, err
	}

	r.Network = nodes.Network(network)
	r.CreatedAt = r.CreatedAt.UTC()
	if gini != nil || nakamoto != nil || loss != nil {
		r.Metrics = &Metrics{Gini: gini, ConnectivityLoss: loss}
		if nakamoto != nil {
			n := int(*nakamoto)
			r.Metrics.Nakamoto = &n
		}
	}
	return &r, nil
}
