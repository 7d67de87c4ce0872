package events

import (
	"context"
	"errors"

	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/metrics"
)

// Sink is a named Publisher
type Sink struct {
	Name      string
	Publisher Publisher
}

// Fanout publishes every event to each sink, logging and counting failures.
// A failing sink does not stop delivery to the others.
type Fanout struct {
	sinks   []Sink
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewFanout combines sinks. logger and registry may be nil.
func NewFanout(logger logging.Logger, registry *metrics.Registry, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Fanout{sinks: sinks, logger: logger, metrics: registry}
}

// Publish implements Publisher; it returns the joined sink errors
func (f *Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Publisher.Publish(ctx, e)
		if f.metrics != nil {
			f.metrics.RecordEvent(e.Topic, s.Name, err)
		}
		if err != nil {
			f.logger.Warn("event publish failed",
				logging.String("sink", s.Name),
				logging.String("topic", e.Topic),
				logging.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
