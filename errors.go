package slims

import (
	"errors"
	"fmt"
	"time"
)

// Error codes
const (
	ErrCodeConfiguration  = "CONFIGURATION_ERROR"
	ErrCodeAPI            = "API_ERROR"
	ErrCodeLookup         = "LOOKUP_ERROR"
	ErrCodeStepExecution  = "STEP_EXECUTION_FAILED"
	ErrCodeRouteNotFound  = "ROUTE_NOT_FOUND"
	ErrCodeInvalidPayload = "INVALID_PAYLOAD"
)

// ErrAuthorizationState is returned when an authorization code arrives with
// a state other than the one sent in the authorization URL
var ErrAuthorizationState = errors.New("[" + ErrCodeConfiguration + "] authorization state does not match")

// ConfigError is raised at construction time for missing credentials or
// settings. It is never retried.
type ConfigError struct {
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("[%s] %s", ErrCodeConfiguration, e.Message)
}

// NewConfigError creates a new configuration error
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// APIError represents a non-success response from the server
type APIError struct {
	Operation  string `json:"operation"`
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s failed (status %d): %s", ErrCodeAPI, e.Operation, e.StatusCode, e.Body)
}

// newAPIError builds an APIError from a transport response
func newAPIError(operation string, resp *Response) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

// LookupError is raised for unknown column or link names
type LookupError struct {
	Kind  string `json:"kind"` // "column" or "link"
	Name  string `json:"name"`
	Table string `json:"table,omitempty"`
}

// Error implements the error interface
func (e *LookupError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("[%s] %s %q not found on %s", ErrCodeLookup, e.Kind, e.Name, e.Table)
	}
	return fmt.Sprintf("[%s] %s %q not found", ErrCodeLookup, e.Kind, e.Name)
}

// StepExecutionError is returned when a step action fails. The failure has
// already been reported to the server as a log line and a FAILED status.
type StepExecutionError struct {
	Step      string    `json:"step"`
	RunGUID   string    `json:"flowRunGuid"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`

	cause error
}

// NewStepExecutionError wraps the cause of a failed step
func NewStepExecutionError(step, runGUID string, index int, cause error) *StepExecutionError {
	return &StepExecutionError{
		Step:      step,
		RunGUID:   runGUID,
		Index:     index,
		Timestamp: time.Now(),
		cause:     cause,
	}
}

// Error implements the error interface
func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("[%s] step %q (run %s, index %d) failed", ErrCodeStepExecution, e.Step, e.RunGUID, e.Index)
}

// Unwrap returns the error raised by the step action
func (e *StepExecutionError) Unwrap() error {
	return e.cause
}

// RouteNotFoundError is returned when a callback names no registered step
type RouteNotFoundError struct {
	Route string `json:"route"`
}

// Error implements the error interface
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("[%s] no step registered for route %q", ErrCodeRouteNotFound, e.Route)
}

// InvalidPayloadError is returned when a callback body cannot be turned into a FlowRun
type InvalidPayloadError struct {
	Message string
}

// Error implements the error interface
func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("[%s] %s", ErrCodeInvalidPayload, e.Message)
}

// IsAPIError checks if an error is an API error
func IsAPIError(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

// IsLookupError checks if an error is a lookup error
func IsLookupError(err error) bool {
	var target *LookupError
	return errors.As(err, &target)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsStepExecutionError checks if an error is a step execution error
func IsStepExecutionError(err error) bool {
	var target *StepExecutionError
	return errors.As(err, &target)
}

// IsRouteNotFound checks if an error is a route lookup failure
func IsRouteNotFound(err error) bool {
	var target *RouteNotFoundError
	return errors.As(err, &target)
}

// IsInvalidPayload checks if an error is a malformed callback payload
func IsInvalidPayload(err error) bool {
	var target *InvalidPayloadError
	return errors.As(err, &target)
}
