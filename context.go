package slims

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

type actingUserKey struct{}

// WithActingUser returns a context whose outbound requests are attributed to user
func WithActingUser(ctx context.Context, user string) context.Context {
	if user == "" {
		return ctx
	}
	return context.WithValue(ctx, actingUserKey{}, user)
}

// ActingUser returns the user set by WithActingUser
func ActingUser(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(actingUserKey{}).(string)
	return user, ok && user != ""
}

// Keys of the callback payload set by the server
const (
	payloadFlowInformation = "flowInformation"
	payloadFlowRunGUID     = "flowRunGuid"
	payloadFlowID          = "flowId"
	payloadCurrentUser     = "SLIMS_CURRENT_USER"
	payloadStepSecret      = "flowStepSecret"
)

// FlowRun is the context handed to a step action. It lives for one
// callback invocation and is never persisted.
//
// The embedded context carries the acting user, so records fetched or
// changed through it are attributed to the user that triggered the step.
type FlowRun struct {
	context.Context

	// Index is the zero-based position of the step in its flow
	Index int

	// Data is the decoded callback payload. Numbers are json.Number.
	Data map[string]any

	// Logger (enriched with run context)
	Logger zerolog.Logger

	client *Client
	raw    json.RawMessage
	guid   string
	flowID string
}

// NewFlowRun decodes a callback payload. The payload must be a JSON object
// carrying flowInformation.flowRunGuid.
func NewFlowRun(ctx context.Context, client *Client, index int, payload []byte) (*FlowRun, error) {
	var data map[string]any
	if err := decodeJSON(payload, &data); err != nil {
		return nil, &InvalidPayloadError{Message: fmt.Sprintf("callback body is not a JSON object: %v", err)}
	}

	info, _ := data[payloadFlowInformation].(map[string]any)
	guid, _ := info[payloadFlowRunGUID].(string)
	if guid == "" {
		return nil, &InvalidPayloadError{Message: "callback body has no flowInformation.flowRunGuid"}
	}
	flowID, _ := info[payloadFlowID].(string)

	run := &FlowRun{
		Index:  index,
		Data:   data,
		client: client,
		raw:    append(json.RawMessage(nil), payload...),
		guid:   guid,
		flowID: flowID,
	}
	if user := run.CurrentUser(); user != "" {
		ctx = WithActingUser(ctx, user)
	}
	run.Context = ctx
	run.Logger = FlowRunLogger(client.logger, guid, flowID, index)

	return run, nil
}

// GUID returns the server-assigned run identifier
func (r *FlowRun) GUID() string {
	return r.guid
}

// FlowID returns the flow identifier sent by the server
func (r *FlowRun) FlowID() string {
	return r.flowID
}

// CurrentUser returns the end user that triggered the step, if any
func (r *FlowRun) CurrentUser() string {
	user, _ := r.Data[payloadCurrentUser].(string)
	return user
}

// Client returns the client the run reports through
func (r *FlowRun) Client() *Client {
	return r.client
}

// Input returns a raw input field value
func (r *FlowRun) Input(name string) (any, bool) {
	v, ok := r.Data[name]
	return v, ok
}

// Bind decodes the whole callback payload into target
func (r *FlowRun) Bind(target any) error {
	if err := json.Unmarshal(r.raw, target); err != nil {
		return fmt.Errorf("failed to bind flow run input: %w", err)
	}
	return nil
}

// GetInput is a generic function for type-safe input retrieval
func GetInput[T any](run *FlowRun, name string) (T, error) {
	var result T
	v, ok := run.Data[name]
	if !ok {
		return result, &LookupError{Kind: "input", Name: name}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return result, fmt.Errorf("failed to marshal input %s: %w", name, err)
	}
	if err := decodeJSON(data, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal input %s: %w", name, err)
	}
	return result, nil
}

// Log sends a message to the server's flow run log
func (r *FlowRun) Log(message string) error {
	r.Logger.Info().Msg(message)

	body := map[string]any{
		"index":       r.Index,
		"flowRunGuid": r.guid,
		"message":     message,
	}
	resp, err := r.client.Post(r, "external/log", body)
	if err != nil {
		return fmt.Errorf("failed to post log: %w", err)
	}
	if !resp.OK() {
		return newAPIError("log", resp)
	}
	return nil
}

// ReportStatus posts the step's terminal status to the server
func (r *FlowRun) ReportStatus(status StepStatus) error {
	r.Logger.Info().Str("status", status.String()).Msg("Updating flow run status")

	body := map[string]any{
		"index":       r.Index,
		"flowRunGuid": r.guid,
		"status":      status.String(),
	}
	resp, err := r.client.Post(r, "external/status", body)
	if err != nil {
		return fmt.Errorf("failed to post status: %w", err)
	}
	if !resp.OK() {
		return newAPIError("status update", resp)
	}
	return nil
}

// CheckUserSecret asks the server to confirm that the payload's step
// secret belongs to the current user
func (r *FlowRun) CheckUserSecret() error {
	secret, _ := r.Data[payloadStepSecret].(string)
	body := map[string]any{
		"index":       r.Index,
		"flowRunGuid": r.guid,
		"username":    r.CurrentUser(),
		"secret":      secret,
	}
	resp, err := r.client.Post(r, "external/userSecretCheck", body)
	if err != nil {
		return fmt.Errorf("failed to check user secret: %w", err)
	}
	if !resp.OK() {
		r.Logger.Info().Str("reason", resp.ErrorMessage()).Msg("User secret check failed")
		return &APIError{Operation: "user secret check", StatusCode: resp.StatusCode, Body: "Forbidden access"}
	}
	return nil
}
