package slims

import (
	"time"

	"github.com/rs/zerolog"
)

// Log event names
const (
	// Registration events
	EventFlowRegistered         = "flow_registered"
	EventFlowRegistrationFailed = "flow_registration_failed"
	EventAuthorizationRequired  = "authorization_required"
	EventHeartbeat              = "heartbeat"

	// Step-level events
	EventStepReceived  = "step_received"
	EventStepStarted   = "step_started"
	EventStepCompleted = "step_completed"
	EventStepFailed    = "step_failed"

	// Callbacks to the server
	EventCallbackFailed = "callback_failed"
)

// LogFlowsRegistered logs a successful (re-)registration
func LogFlowsRegistered(logger zerolog.Logger, flowIDs []string, reregister bool) {
	logger.Info().
		Str("event", EventFlowRegistered).
		Strs("flow_ids", flowIDs).
		Bool("reregister", reregister).
		Msg("Flows registered")
}

// LogFlowRegistrationFailed logs a refused or failed registration.
// Registration failures are never fatal.
func LogFlowRegistrationFailed(logger zerolog.Logger, flowIDs []string, statusCode int, err error) {
	ev := logger.Warn().
		Str("event", EventFlowRegistrationFailed).
		Strs("flow_ids", flowIDs)
	if statusCode != 0 {
		ev = ev.Int("status_code", statusCode)
	}
	ev.Err(err).Msg("Could not register flows")
}

// LogAuthorizationRequired logs the URL an operator must visit to authorize the instance
func LogAuthorizationRequired(logger zerolog.Logger, authURL string) {
	logger.Warn().
		Str("event", EventAuthorizationRequired).
		Str("authorization_url", authURL).
		Msg("Visit the authorization URL to register flows")
}

// LogStepReceived logs an inbound step callback
func LogStepReceived(logger zerolog.Logger, runGUID, route string) {
	logger.Debug().
		Str("event", EventStepReceived).
		Str("run_guid", runGUID).
		Str("route", route).
		Msg("Step callback received")
}

// LogStepStarted logs when a step starts execution
func LogStepStarted(logger zerolog.Logger, runGUID, stepName string, async bool) {
	logger.Info().
		Str("event", EventStepStarted).
		Str("run_guid", runGUID).
		Str("step_name", stepName).
		Bool("asynchronous", async).
		Msg("Step started")
}

// LogStepCompleted logs successful step completion
func LogStepCompleted(logger zerolog.Logger, runGUID, stepName string, duration time.Duration) {
	logger.Info().
		Str("event", EventStepCompleted).
		Str("run_guid", runGUID).
		Str("step_name", stepName).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("Step completed")
}

// LogStepFailed logs step failure
func LogStepFailed(logger zerolog.Logger, runGUID, stepName string, err error) {
	logger.Error().
		Str("event", EventStepFailed).
		Str("run_guid", runGUID).
		Str("step_name", stepName).
		Err(err).
		Msg("Step failed")
}

// LogCallbackFailed logs a log/status callback the server did not accept
func LogCallbackFailed(logger zerolog.Logger, resource string, err error) {
	logger.Error().
		Str("event", EventCallbackFailed).
		Str("resource", resource).
		Err(err).
		Msg("Callback to server failed")
}

// FlowRunLogger creates a logger enriched with run context
func FlowRunLogger(baseLogger zerolog.Logger, runGUID, flowID string, index int) zerolog.Logger {
	return baseLogger.With().
		Str("run_guid", runGUID).
		Str("flow_id", flowID).
		Int("index", index).
		Logger()
}

// StepLogger creates a logger enriched with step context
func StepLogger(runLogger zerolog.Logger, route, stepName string) zerolog.Logger {
	return runLogger.With().
		Str("route", route).
		Str("step_name", stepName).
		Logger()
}
