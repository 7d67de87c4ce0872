package store

import (
	"context"
	"time"

	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/metrics"
)

// Instrumented records Prometheus metrics and debug logs around a Store
type Instrumented struct {
	next    Store
	driver  string
	metrics *metrics.Registry
	logger  logging.Logger
}

// Instrument wraps next; a nil registry or logger disables that concern
func Instrument(next Store, driver string, registry *metrics.Registry, logger logging.Logger) *Instrumented {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Instrumented{
		next:    next,
		driver:  driver,
		metrics: registry,
		logger:  logger.With(logging.Component("store"), logging.String("driver", driver)),
	}
}

// Driver names the wrapped backend
func (s *Instrumented) Driver() string {
	return s.driver
}

func (s *Instrumented) observe(op string, start time.Time, err error, fields ...logging.Field) {
	dur := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(s.driver, op, err, dur)
	}
	fields = append(fields, logging.Operation(op), logging.Latency(dur))
	if err != nil {
		s.logger.Warn("store operation failed", append(fields, logging.Error(err))...)
		return
	}
	s.logger.Debug("store operation", fields...)
}

func (s *Instrumented) Create(ctx context.Context, r *Record) (string, error) {
	start := time.Now()
	id, err := s.next.Create(ctx, r)
	s.observe("create", start, err, logging.AnalysisID(id))
	return id, err
}

func (s *Instrumented) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	r, err := s.next.Get(ctx, id)
	s.observe("get", start, err, logging.AnalysisID(id))
	return r, err
}

func (s *Instrumented) ListByUser(ctx context.Context, userID string) ([]*Record, error) {
	start := time.Now()
	out, err := s.next.ListByUser(ctx, userID)
	s.observe("list", start, err, logging.UserID(userID), logging.Count(len(out)))
	return out, err
}

func (s *Instrumented) Update(ctx context.Context, id string, p Patch) (*Record, error) {
	start := time.Now()
	r, err := s.next.Update(ctx, id, p)
	s.observe("update", start, err, logging.AnalysisID(id))
	return r, err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, err)
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
