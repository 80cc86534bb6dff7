package builder

import (
	"fmt"

	"github.com/sicko7947/slims"
)

// FlowBuilder provides a fluent API for building flows
type FlowBuilder struct {
	flow *slims.Flow
}

// NewFlow creates a new flow builder
func NewFlow(id, name string) *FlowBuilder {
	return &FlowBuilder{
		flow: &slims.Flow{
			ID:    id,
			Name:  name,
			Steps: []*slims.Step{},
		},
	}
}

// WithUsage sets where the flow is offered in the server's interface,
// e.g. "CONTENT_MANAGEMENT"
func (b *FlowBuilder) WithUsage(usage string) *FlowBuilder {
	b.flow.Usage = usage
	return b
}

// WithOptions applies functional options to the flow
func (b *FlowBuilder) WithOptions(opts ...FlowOption) *FlowBuilder {
	ApplyOptions(b.flow, opts...)
	return b
}

// ThenStep appends the given step. Its route is its position in the flow.
func (b *FlowBuilder) ThenStep(step *slims.Step) *FlowBuilder {
	b.flow.Steps = append(b.flow.Steps, step)
	return b
}

// Then builds a step from an action and appends it
func (b *FlowBuilder) Then(name string, action slims.Action, opts ...slims.StepOption) *FlowBuilder {
	return b.ThenStep(slims.NewStep(name, action, opts...))
}

// Sequence appends multiple steps in order
func (b *FlowBuilder) Sequence(steps ...*slims.Step) *FlowBuilder {
	for _, step := range steps {
		b.ThenStep(step)
	}
	return b
}

// Build finalizes and validates the flow
func (b *FlowBuilder) Build() (*slims.Flow, error) {
	if err := ValidateFlow(b.flow); err != nil {
		return nil, err
	}

	flow := *b.flow
	flow.Steps = append([]*slims.Step(nil), b.flow.Steps...)
	return &flow, nil
}

// MustBuild finalizes and validates the flow, panics on error
func (b *FlowBuilder) MustBuild() *slims.Flow {
	flow, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build flow: %v", err))
	}
	return flow
}
