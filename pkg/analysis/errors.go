package analysis

import (
	"errors"
	"fmt"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/simulation"
)

// Kind classifies analysis failures so callers can map them to responses
type Kind int

const (
	// KindInvalidInput covers empty data and malformed parameters
	KindInvalidInput Kind = iota + 1
	// KindNoNodes means parsing succeeded structurally but found nothing
	KindNoNodes
	// KindUnsupported means the network or scenario is not known
	KindUnsupported
	// KindBackend wraps failures of collaborators such as the store
	KindBackend
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNoNodes:
		return "no_nodes"
	case KindUnsupported:
		return "unsupported"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Sentinel errors re-exported for errors.Is checks
var (
	ErrUnknownNetwork  = nodes.ErrUnknownNetwork
	ErrUnknownScenario = simulation.ErrUnknownScenario
)

// Error is the typed error returned by Service
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the cause
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}
