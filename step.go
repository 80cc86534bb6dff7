package slims

import (
	"fmt"
)

// Action is the user-defined function run for a step. For synchronous
// steps the returned value becomes the callback's response body.
type Action func(run *FlowRun) (any, error)

// TypedHandler is a step function with a decoded input payload
type TypedHandler[TIn, TOut any] func(run *FlowRun, input TIn) (TOut, error)

// TypedAction adapts a TypedHandler to an Action. The callback payload is
// decoded into TIn before the handler runs.
func TypedAction[TIn, TOut any](handler TypedHandler[TIn, TOut]) Action {
	return func(run *FlowRun) (any, error) {
		var input TIn
		if err := run.Bind(&input); err != nil {
			return nil, err
		}
		return handler(run, input)
	}
}

// Step is one unit of a flow. Steps are immutable once built.
type Step struct {
	name   string
	action Action
	hidden bool
	async  bool
	input  []Parameter
	output []Parameter
}

// NewStep creates a step running action
func NewStep(name string, action Action, opts ...StepOption) *Step {
	s := &Step{
		name:   name,
		action: action,
		input:  []Parameter{},
		output: []Parameter{},
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the displayed step name
func (s *Step) Name() string {
	return s.name
}

// Action returns the step's action
func (s *Step) Action() Action {
	return s.action
}

// Hidden reports whether the step is hidden
func (s *Step) Hidden() bool {
	return s.hidden
}

// Asynchronous reports whether the step runs in the background
func (s *Step) Asynchronous() bool {
	return s.async
}

// Input returns the declared input parameters
func (s *Step) Input() []Parameter {
	return append([]Parameter(nil), s.input...)
}

// Output returns the declared output parameters
func (s *Step) Output() []Parameter {
	return append([]Parameter(nil), s.output...)
}

// Run invokes the action, turning a panic into an error
func (s *Step) Run(run *FlowRun) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()
	return s.action(run)
}

// StepDefinition is the registration form of a step
type StepDefinition struct {
	Hidden  bool         `json:"hidden"`
	Name    string       `json:"name"`
	Input   ParameterSet `json:"input"`
	Process Process      `json:"process"`
	Output  ParameterSet `json:"output"`
}

// ParameterSet wraps a list of parameter descriptors
type ParameterSet struct {
	Parameters []Parameter `json:"parameters"`
}

// Process tells the server how to call the step
type Process struct {
	Asynchronous bool   `json:"asynchronous"`
	Route        string `json:"route"`
}

// Definition returns the registration form of the step for the given route
func (s *Step) Definition(route string) StepDefinition {
	return StepDefinition{
		Hidden: s.hidden,
		Name:   s.name,
		Input:  ParameterSet{Parameters: nonNil(s.input)},
		Process: Process{
			Asynchronous: s.async,
			Route:        route,
		},
		Output: ParameterSet{Parameters: nonNil(s.output)},
	}
}

func nonNil(params []Parameter) []Parameter {
	if params == nil {
		return []Parameter{}
	}
	return params
}
