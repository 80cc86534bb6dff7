package slims

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepExecutionError_KeepsCause(t *testing.T) {
	cause := errors.New("sample not found")
	err := NewStepExecutionError("The step", "run-1", 0, cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsStepExecutionError(fmt.Errorf("wrapped: %w", err)))
	assert.Contains(t, err.Error(), ErrCodeStepExecution)
	assert.NotContains(t, err.Error(), "sample not found")
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"config", NewConfigError("missing %s", "client id"), IsConfigError},
		{"api", &APIError{Operation: "add", StatusCode: 400}, IsAPIError},
		{"lookup", &LookupError{Kind: "link", Name: "x"}, IsLookupError},
		{"route", &RouteNotFoundError{Route: "a/0"}, IsRouteNotFound},
		{"payload", &InvalidPayloadError{Message: "bad"}, IsInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("context: %w", tt.err)))
			assert.False(t, tt.check(errors.New("plain")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestLookupError_Message(t *testing.T) {
	assert.Equal(t, `[LOOKUP_ERROR] link "x" not found on Content`,
		(&LookupError{Kind: "link", Name: "x", Table: "Content"}).Error())
	assert.Equal(t, `[LOOKUP_ERROR] input "y" not found`,
		(&LookupError{Kind: "input", Name: "y"}).Error())
}
