package sagalog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Transition is one state change as seen by the orchestrator.
type Transition struct {
	Status Status
	Step   string
	// Payload is only set on StatusStarted.
	Payload string
	Errors  []string
}

// Entry turns t into a log row for sagaID, stamped with the current time and
// the ids of the span active in ctx. Without a valid span both ids are empty.
func (t Transition) Entry(ctx context.Context, sagaID string) *SagaLog {
	e := &SagaLog{
		SagaID:        sagaID,
		Status:        t.Status,
		CurrentStep:   t.Step,
		Payload:       t.Payload,
		ErrorMessages: encodeErrors(t.Errors),
		UpdatedAt:     time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}

// encodeErrors always yields a JSON array so readers never special-case NULL.
func encodeErrors(errs []string) string {
	if len(errs) == 0 {
		return "[]"
	}
	b, err := json.Marshal(errs)
	if err != nil {
		return "[]"
	}
	return string(b)
}
