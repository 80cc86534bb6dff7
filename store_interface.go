package slims

import "context"

// RunStore tracks step invocations while they are in flight. Entries are
// dropped once the step reaches a terminal state; flow runs are never
// persisted.
type RunStore interface {
	// Begin records a newly received step invocation
	Begin(ctx context.Context, exec *StepExecution) error

	// UpdateStatus moves an in-flight invocation to a new non-terminal status
	UpdateStatus(ctx context.Context, runGUID string, index int, status StepStatus) error

	// Complete forgets an invocation that reached a terminal status
	Complete(ctx context.Context, runGUID string, index int, status StepStatus) error

	// Get returns an in-flight invocation
	Get(ctx context.Context, runGUID string, index int) (*StepExecution, error)

	// List returns in-flight invocations
	List(ctx context.Context, filter RunFilter) ([]*StepExecution, error)
}

// RunFilter defines filtering criteria for in-flight invocations
type RunFilter struct {
	FlowID string
	Status *StepStatus
	Limit  int
}
