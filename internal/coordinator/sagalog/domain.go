// Package sagalog records every state transition of an order submission saga.
//
// Each row carries the trace and span ids of the span that was active when
// it was written, so a failed checkout can be followed from the log straight
// into its trace.
package sagalog

import "time"

// Status represents the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Terminal reports whether no further entries follow s for the same saga.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SagaLog is a single append-only entry.
type SagaLog struct {
	// SagaID is the order id the submission was started for.
	SagaID string `json:"saga_id"`

	Status Status `json:"status"`

	// CurrentStep is the step that just finished or failed. Empty on
	// STARTED and COMPLETED.
	CurrentStep string `json:"current_step"`

	// Payload is the JSON submission summary, written on STARTED only.
	Payload string `json:"payload,omitempty"`

	// ErrorMessages is a JSON array of failure details.
	ErrorMessages string `json:"error_messages"`

	TraceID   string    `json:"trace_id"`
	SpanID    string    `json:"span_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
