package engine

import (
	"context"
	"time"

	"github.com/sicko7947/slims"
)

// StartHeartbeat starts re-registering every added flow, first after
// HeartbeatDelay and then every HeartbeatInterval, so flows survive a
// server restart. Calling it again while running is a no-op.
func (e *Engine) StartHeartbeat() {
	e.heartbeatMu.Lock()
	defer e.heartbeatMu.Unlock()

	if e.heartbeatCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.heartbeatCancel = cancel
	e.heartbeatDone = done

	e.logger.Info().
		Dur("delay", e.config.HeartbeatDelay).
		Dur("interval", e.config.HeartbeatInterval).
		Msg("Heartbeat started")

	go e.heartbeat(ctx, done)
}

// StopHeartbeat stops the heartbeat and waits for a running beat to return
func (e *Engine) StopHeartbeat() {
	e.heartbeatMu.Lock()
	cancel, done := e.heartbeatCancel, e.heartbeatDone
	e.heartbeatCancel, e.heartbeatDone = nil, nil
	e.heartbeatMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	e.logger.Info().Msg("Heartbeat stopped")
}

func (e *Engine) heartbeat(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(e.config.HeartbeatDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	e.beat(ctx)

	ticker := time.NewTicker(e.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.beat(ctx)
		}
	}
}

// beat re-registers all flows. Errors are logged by register and the
// loop carries on.
func (e *Engine) beat(ctx context.Context) {
	flows := e.Flows()

	e.logger.Debug().
		Str("event", slims.EventHeartbeat).
		Int("flows", len(flows)).
		Msg("Heartbeat")

	if len(flows) == 0 {
		return
	}
	_ = e.register(ctx, flows, true)
}
