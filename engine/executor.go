package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sicko7947/slims"
)

// Execute runs the step registered under flowID and index for one callback
// payload.
//
// A synchronous step runs inline and its return value is returned. An
// asynchronous step is dispatched to a goroutine and Execute returns
// (nil, nil) at once. Either way the outcome is reported to the server:
// DONE on success, or one log line and FAILED on error, in which case the
// returned error is a *slims.StepExecutionError wrapping the cause.
func (e *Engine) Execute(ctx context.Context, flowID string, index int, payload []byte) (any, error) {
	route := slims.Route(flowID, index)

	step, ok := e.lookup(route)
	if !ok {
		return nil, &slims.RouteNotFoundError{Route: route}
	}

	if step.Asynchronous() {
		ctx = context.WithoutCancel(ctx)
	}

	run, err := slims.NewFlowRun(ctx, e.client, index, payload)
	if err != nil {
		return nil, err
	}
	run.Logger = slims.StepLogger(
		slims.FlowRunLogger(e.logger, run.GUID(), run.FlowID(), index),
		route,
		step.Name(),
	)
	slims.LogStepReceived(run.Logger, run.GUID(), route)

	exec := &slims.StepExecution{
		RunGUID:      run.GUID(),
		FlowID:       flowID,
		Route:        route,
		Index:        index,
		StepName:     step.Name(),
		Asynchronous: step.Asynchronous(),
		ActingUser:   run.CurrentUser(),
		Status:       slims.StepStatusReceived,
	}
	// A redelivered invocation that is still in flight is run again but
	// leaves the tracked entry to its first delivery
	tracked := true
	if err := e.store.Begin(ctx, exec); err != nil {
		run.Logger.Warn().Err(err).Msg("Failed to track step execution")
		tracked = false
	}

	if step.Asynchronous() {
		e.async.Add(1)
		go func() {
			defer e.async.Done()
			_, _ = e.executeStep(step, run, flowID, tracked)
		}()
		return nil, nil
	}

	return e.executeStep(step, run, flowID, tracked)
}

// executeStep moves one invocation from RUNNING to DONE or FAILED and
// reports the terminal status to the server
func (e *Engine) executeStep(step *slims.Step, run *slims.FlowRun, flowID string, tracked bool) (any, error) {
	logger := run.Logger

	if tracked {
		if err := e.store.UpdateStatus(run, run.GUID(), run.Index, slims.StepStatusRunning); err != nil {
			logger.Warn().Err(err).Msg("Failed to update step execution to running")
		}
	}
	slims.LogStepStarted(logger, run.GUID(), step.Name(), step.Asynchronous())

	e.metrics.stepsInFlight.Inc()
	defer e.metrics.stepsInFlight.Dec()

	startTime := time.Now()
	value, err := step.Run(run)
	duration := time.Since(startTime)

	if err != nil {
		return nil, e.failStep(step, run, flowID, tracked, err, duration)
	}

	if statusErr := run.ReportStatus(slims.StepStatusDone); statusErr != nil {
		slims.LogCallbackFailed(logger, "status", statusErr)
	}
	if tracked {
		e.complete(logger, run, slims.StepStatusDone)
	}
	e.metrics.recordStep(flowID, slims.StepStatusDone.String(), duration)
	slims.LogStepCompleted(logger, run.GUID(), step.Name(), duration)

	return value, nil
}

// failStep reports a failed action to the server and builds the error
// returned to the caller. Reporting failures are logged only.
func (e *Engine) failStep(step *slims.Step, run *slims.FlowRun, flowID string, tracked bool, cause error, duration time.Duration) error {
	logger := run.Logger
	slims.LogStepFailed(logger, run.GUID(), step.Name(), cause)

	if logErr := run.Log(cause.Error()); logErr != nil {
		slims.LogCallbackFailed(logger, "log", logErr)
	}
	if statusErr := run.ReportStatus(slims.StepStatusFailed); statusErr != nil {
		slims.LogCallbackFailed(logger, "status", statusErr)
	}
	if tracked {
		e.complete(logger, run, slims.StepStatusFailed)
	}
	e.metrics.recordStep(flowID, slims.StepStatusFailed.String(), duration)

	return slims.NewStepExecutionError(step.Name(), run.GUID(), run.Index, cause)
}

func (e *Engine) complete(logger zerolog.Logger, run *slims.FlowRun, status slims.StepStatus) {
	if err := e.store.Complete(run, run.GUID(), run.Index, status); err != nil {
		logger.Warn().Err(err).Msg("Failed to complete step execution")
	}
}
