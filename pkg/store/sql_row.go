package store

import (
	"database/sql"
	"time"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// recordRow is the column layout shared by the SQL backends
type recordRow struct {
	ID               string          `db:"id"`
	UserID           string          `db:"user_id"`
	Name             string          `db:"name"`
	Network          string          `db:"network"`
	RawNodeData      string          `db:"raw_node_data"`
	CreatedAt        time.Time       `db:"created_at"`
	Gini             sql.NullFloat64 `db:"gini"`
	Nakamoto         sql.NullInt64   `db:"nakamoto"`
	ConnectivityLoss sql.NullString  `db:"connectivity_loss"`
}

func (row recordRow) record() *Record {
	r := &Record{
		ID:          row.ID,
		UserID:      row.UserID,
		Name:        row.Name,
		Network:     nodes.Network(row.Network),
		RawNodeData: row.RawNodeData,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if !row.Gini.Valid && !row.Nakamoto.Valid && !row.ConnectivityLoss.Valid {
		return r
	}
	r.Metrics = &Metrics{}
	if row.Gini.Valid {
		v := row.Gini.Float64
		r.Metrics.Gini = &v
	}
	if row.Nakamoto.Valid {
		v := int(row.Nakamoto.Int64)
		r.Metrics.Nakamoto = &v
	}
	if row.ConnectivityLoss.Valid {
		v := row.ConnectivityLoss.String
		r.Metrics.ConnectivityLoss = &v
	}
	return r
}

// metricArgs returns nullable column values for m; a nil m yields all NULLs
func metricArgs(m *Metrics) (gini, nakamoto, loss any) {
	if m == nil {
		return nil, nil, nil
	}
	if m.Gini != nil {
		gini = *m.Gini
	}
	if m.Nakamoto != nil {
		nakamoto = int64(*m.Nakamoto)
	}
	if m.ConnectivityLoss != nil {
		loss = *m.ConnectivityLoss
	}
	return gini, nakamoto, loss
}

func optString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
