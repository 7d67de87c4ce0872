// Package store persists named analyses: the raw dump a user uploaded plus
// the headline metrics computed from it.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

var (
	// ErrNotFound is returned when no record has the requested id
	ErrNotFound = errors.New("analysis not found")

	// ErrInvalidRecord is returned when a record lacks required fields
	ErrInvalidRecord = errors.New("invalid analysis record")
)

// Metrics are the stored headline numbers; every field is optional
type Metrics struct {
	Gini             *float64 `json:"gini,omitempty" yaml:"gini,omitempty"`
	Nakamoto         *int     `json:"nakamoto,omitempty" yaml:"nakamoto,omitempty"`
	ConnectivityLoss *string  `json:"connectivityLoss,omitempty" yaml:"connectivityLoss,omitempty"`
}

// MetricsFrom captures the stored subset of an analysis result
func MetricsFrom(r *nodes.AnalysisResult) *Metrics {
	gini, nakamoto, loss := r.Gini, r.Nakamoto, r.ConnectivityLoss()
	return &Metrics{Gini: &gini, Nakamoto: &nakamoto, ConnectivityLoss: &loss}
}

// Record is one saved analysis
type Record struct {
	ID          string        `json:"id" yaml:"id"`
	UserID      string        `json:"userId" yaml:"userId"`
	Name        string        `json:"name" yaml:"name"`
	Network     nodes.Network `json:"network" yaml:"network"`
	RawNodeData string        `json:"nodeData" yaml:"nodeData"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"createdAt"`
	Metrics     *Metrics      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Patch is a partial update; nil fields are left untouched, including the
// individual fields of Metrics.
type Patch struct {
	Name        *string
	RawNodeData *string
	Metrics     *Metrics
}

// Empty reports whether the patch changes nothing
func (p Patch) Empty() bool {
	return p.Name == nil && p.RawNodeData == nil && p.Metrics == nil
}

// Store is implemented by every backend. Implementations are safe for
// concurrent use.
type Store interface {
	// Create assigns an id and creation time when missing and returns the id
	Create(ctx context.Context, r *Record) (string, error)
	Get(ctx context.Context, id string) (*Record, error)
	// ListByUser returns the user's records newest first
	ListByUser(ctx context.Context, userID string) ([]*Record, error)
	Update(ctx context.Context, id string, p Patch) (*Record, error)
	Ping(ctx context.Context) error
	Close() error
}

// prepare validates r and fills generated fields
func prepare(r *Record, now time.Time) error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	var missing []string
	if strings.TrimSpace(r.UserID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if r.Network == "" {
		missing = append(missing, "network")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return nil
}

// apply merges p into r in place
func (p Patch) apply(r *Record) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.RawNodeData != nil {
		r.RawNodeData = *p.RawNodeData
	}
	if p.Metrics == nil {
		return
	}
	if r.Metrics == nil {
		r.Metrics = &Metrics{}
	}
	if p.Metrics.Gini != nil {
		r.Metrics.Gini = copyPtr(p.Metrics.Gini)
	}
	if p.Metrics.Nakamoto != nil {
		r.Metrics.Nakamoto = copyPtr(p.Metrics.Nakamoto)
	}
	if p.Metrics.ConnectivityLoss != nil {
		r.Metrics.ConnectivityLoss = copyPtr(p.Metrics.ConnectivityLoss)
	}
}

// clone deep-copies r so callers never share memory with a backend
func (r *Record) clone() *Record {
	c := *r
	if r.Metrics != nil {
		c.Metrics = &Metrics{
			Gini:             copyPtr(r.Metrics.Gini),
			Nakamoto:         copyPtr(r.Metrics.Nakamoto),
			ConnectivityLoss: copyPtr(r.Metrics.ConnectivityLoss),
		}
	}
	return &c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// newestFirst orders by creation time descending, id breaking ties
func newestFirst(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
