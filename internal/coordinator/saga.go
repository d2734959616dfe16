package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/labeeb-storefront/internal/coordinator/sagalog"
)

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// StepError reports which step of a saga failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("saga step %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	sagaID  string
	steps   []Step
	log     sagalog.Repository
	payload string
}

// NewOrchestrator builds a saga runner. log may be nil, in which case no
// transitions are recorded.
func NewOrchestrator(sagaID string, steps []Step, log sagalog.Repository) *Orchestrator {
	return &Orchestrator{sagaID: sagaID, steps: steps, log: log}
}

// WithPayload attaches the serialized saga input recorded on the STARTED entry.
func (o *Orchestrator) WithPayload(payload string) *Orchestrator {
	o.payload = payload
	return o
}

// Start runs the saga steps sequentially.
// If a step fails, it triggers the compensation of all previously successful
// steps in reverse order and returns a *StepError wrapping the cause.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, sagalog.Transition{Status: sagalog.StatusStarted, Payload: o.payload})

	var successfulSteps []Step
	for _, step := range o.steps {
		slog.DebugContext(ctx, "executing saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "saga step failed, starting rollback",
				"saga_id", o.sagaID, "step", step.Name(), "error", err)
			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(ctx, sagalog.Transition{Status: sagalog.StatusCompensating, Step: step.Name(), Errors: errs})
			errs = append(errs, o.rollback(ctx, successfulSteps)...)
			o.record(ctx, sagalog.Transition{Status: sagalog.StatusFailed, Step: step.Name(), Errors: errs})
			return &StepError{Step: step.Name(), Err: err}
		}
		successfulSteps = append(successfulSteps, step)
		o.record(ctx, sagalog.Transition{Status: sagalog.StatusStepDone, Step: step.Name()})
	}

	o.record(ctx, sagalog.Transition{Status: sagalog.StatusCompleted})
	slog.DebugContext(ctx, "saga completed", "saga_id", o.sagaID)
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to compensate saga step",
				"saga_id", o.sagaID, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

// record appends a saga log entry. Log failures never change the saga outcome.
func (o *Orchestrator) record(ctx context.Context, t sagalog.Transition) {
	if o.log == nil {
		return
	}
	if err := o.log.Save(ctx, t.Entry(ctx, o.sagaID)); err != nil {
		slog.WarnContext(ctx, "failed to write saga log", "saga_id", o.sagaID, "status", t.Status, "error", err)
	}
}
