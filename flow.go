package slims

import "strconv"

// Flow is a named sequence of steps registered with the server
type Flow struct {
	ID    string
	Name  string
	Usage string
	Steps []*Step
}

// FlowDefinition is the registration form of a flow
type FlowDefinition struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Usage         string           `json:"usage"`
	Steps         []StepDefinition `json:"steps"`
	PythonAPIFlow bool             `json:"pythonApiFlow"`
}

// Route returns the dispatch key of the step at index
func (f *Flow) Route(index int) string {
	return Route(f.ID, index)
}

// Route builds the dispatch key "{flowID}/{index}"
func Route(flowID string, index int) string {
	return flowID + "/" + strconv.Itoa(index)
}

// Definition returns the registration form of the flow. Steps are routed
// by their zero-based position.
func (f *Flow) Definition() FlowDefinition {
	steps := make([]StepDefinition, 0, len(f.Steps))
	for i, step := range f.Steps {
		steps = append(steps, step.Definition(f.Route(i)))
	}
	return FlowDefinition{
		ID:            f.ID,
		Name:          f.Name,
		Usage:         f.Usage,
		Steps:         steps,
		PythonAPIFlow: true,
	}
}
