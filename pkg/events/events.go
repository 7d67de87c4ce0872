// Package events distributes analysis lifecycle events to in-process
// subscribers and to external consumers over an NNG PUB socket.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TopicAnalysisCompleted is published after every successful analysis
const TopicAnalysisCompleted = "nodes.analysis.completed"

// ErrClosed is returned when publishing to or subscribing on a closed sink
var ErrClosed = errors.New("event sink closed")

// Event is one message on a topic
type Event struct {
	ID      string    `json:"id"`
	Topic   string    `json:"topic"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

// New stamps a payload with an id and the current time
func New(topic string, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Topic:   topic,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
}

// AnalysisCompleted is the payload of TopicAnalysisCompleted
type AnalysisCompleted struct {
	AnalysisID          string   `json:"analysisId,omitempty"`
	Network             string   `json:"network"`
	Scenario            string   `json:"scenario"`
	Targets             []string `json:"targets,omitempty"`
	Gini                float64  `json:"gini"`
	Nakamoto            int      `json:"nakamoto"`
	ConnectivityLossPct float64  `json:"connectivityLossPct"`
	TotalNodes          int      `json:"totalNodes"`
	FailedNodes         int      `json:"failedNodes"`
}

// Publisher delivers events to one sink
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
