// Package adapter defines the notification boundary for completed
// conversions.
//
// Adapters publish one event per conversion to a downstream system.
// The CLI owns adapter lifecycle; users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/pithecene-io/qrare/metrics"
	"github.com/pithecene-io/qrare/types"
)

// EventType is the event_type of every conversion event.
const EventType = "conversion_completed"

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ConversionCompletedEvent is the payload published when an encode or
// decode finishes, successfully or not.
type ConversionCompletedEvent struct {
	EventType    string `json:"event_type"` // always "conversion_completed"
	Version      string `json:"version"`    // qrare version
	ConversionID string `json:"conversion_id"`
	Operation    string `json:"operation"` // encode or decode
	Outcome      string `json:"outcome"`   // success or failure
	// State is the final decode state. Empty for encodes.
	State string            `json:"state,omitempty"`
	File  types.LogicalFile `json:"file"`
	// Location is where artifacts were written or read.
	Location  string `json:"location"`
	Artifacts int    `json:"artifacts"`
	// ErrorKind and Error are set on failure.
	ErrorKind  string           `json:"error_kind,omitempty"`
	Error      string           `json:"error,omitempty"`
	Metrics    metrics.Snapshot `json:"metrics"`
	Timestamp  string           `json:"timestamp"` // RFC 3339
	DurationMs int64            `json:"duration_ms"`
}

// NewEvent builds an event for a finished conversion. A nil err means
// success.
func NewEvent(operation, conversionID string, file types.LogicalFile, err error, finished time.Time, duration time.Duration) *ConversionCompletedEvent {
	ev := &ConversionCompletedEvent{
		EventType:    EventType,
		Version:      types.Version,
		ConversionID: conversionID,
		Operation:    operation,
		Outcome:      OutcomeSuccess,
		File:         file,
		Timestamp:    finished.UTC().Format(time.RFC3339),
		DurationMs:   duration.Milliseconds(),
	}
	if err != nil {
		ev.Outcome = OutcomeFailure
		ev.ErrorKind = types.KindOf(err).String()
		ev.Error = err.Error()
	}
	return ev
}

// Adapter publishes conversion events to a downstream system.
type Adapter interface {
	// Publish sends a conversion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *ConversionCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
