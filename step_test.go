package slims

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types
type TestInput struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

type TestOutput struct {
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Test handler that doubles the input
func testHandler(run *FlowRun, input TestInput) (TestOutput, error) {
	return TestOutput{
		Total:   input.Count * 2,
		Message: "Processed " + input.Label,
	}, nil
}

func noop(run *FlowRun) (any, error) {
	return nil, nil
}

func TestNewStep(t *testing.T) {
	step := NewStep("The step", noop)

	assert.Equal(t, "The step", step.Name())
	assert.NotNil(t, step.Action())
	assert.False(t, step.Hidden())
	assert.False(t, step.Asynchronous())
	assert.Empty(t, step.Input())
	assert.Empty(t, step.Output())
}

func TestNewStep_WithOptions(t *testing.T) {
	step := NewStep("The step", noop,
		Async(),
		Hidden(),
		WithInput(TextInput("text", "Text")),
		WithOutput(FileOutput()),
	)

	assert.True(t, step.Asynchronous())
	assert.True(t, step.Hidden())
	assert.Len(t, step.Input(), 1)
	assert.Len(t, step.Output(), 1)
}

func TestStep_Definition(t *testing.T) {
	step := NewStep("The step", noop, WithInput(TextInput("text", "Text")))

	data, err := json.Marshal(step.Definition("helloWorld/0"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"hidden": false,
		"name": "The step",
		"input": {"parameters": [{"name": "text", "label": "Text", "type": "STRING"}]},
		"process": {"asynchronous": false, "route": "helloWorld/0"},
		"output": {"parameters": []}
	}`, string(data))
}

func TestStep_RunRecoversPanic(t *testing.T) {
	step := NewStep("panicky", func(run *FlowRun) (any, error) {
		panic("boom")
	})

	_, err := step.Run(&FlowRun{Context: context.Background()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestStep_RunReturnsActionError(t *testing.T) {
	step := NewStep("failing", func(run *FlowRun) (any, error) {
		return nil, errors.New("no sample")
	})

	_, err := step.Run(&FlowRun{Context: context.Background()})
	assert.EqualError(t, err, "no sample")
}

func TestTypedAction(t *testing.T) {
	client := newTestClient(t, newFakeTransport())
	run, err := NewFlowRun(context.Background(), client, 0, []byte(callbackPayload))
	require.NoError(t, err)

	out, err := TypedAction(testHandler)(run)
	require.NoError(t, err)
	assert.Equal(t, TestOutput{Total: 6, Message: "Processed tube"}, out)
}

func TestTypedAction_BindError(t *testing.T) {
	client := newTestClient(t, newFakeTransport())
	run, err := NewFlowRun(context.Background(), client, 0, []byte(`{"flowInformation":{"flowRunGuid":"g"},"count":"three"}`))
	require.NoError(t, err)

	_, err = TypedAction(testHandler)(run)
	assert.Error(t, err)
}
