package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/sicko7947/slims"
	"github.com/sicko7947/slims/store"
)

// registrationPath is the server resource flows are registered on
const registrationPath = "external/"

// Engine serves the flows of one client instance. The server calls it back
// once per step invocation.
type Engine struct {
	client      *slims.Client
	store       slims.RunStore
	logger      zerolog.Logger
	config      EngineConfig
	instanceURL string
	metrics     *metrics
	app         *fiber.App

	mu     sync.RWMutex
	routes map[string]*slims.Step
	flows  []slims.FlowDefinition

	// In-flight asynchronous steps
	async sync.WaitGroup

	heartbeatMu     sync.Mutex
	heartbeatCancel context.CancelFunc
	heartbeatDone   chan struct{}
}

// EngineConfig holds engine configuration
type EngineConfig struct {
	// Host and Port are where the server reaches the callback endpoint
	Host string
	Port int

	// HeartbeatDelay is the wait before the first re-registration
	HeartbeatDelay time.Duration

	// HeartbeatInterval is the wait between re-registrations
	HeartbeatInterval time.Duration
}

// DefaultEngineConfig provides sensible defaults
var DefaultEngineConfig = EngineConfig{
	Host:              "localhost",
	Port:              5000,
	HeartbeatDelay:    5 * time.Second,
	HeartbeatInterval: 60 * time.Second,
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithLogger sets a custom logger for the engine
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConfig sets a custom configuration for the engine. Zero fields keep
// their defaults.
func WithConfig(config EngineConfig) EngineOption {
	return func(e *Engine) {
		if config.Host != "" {
			e.config.Host = config.Host
		}
		if config.Port != 0 {
			e.config.Port = config.Port
		}
		if config.HeartbeatDelay > 0 {
			e.config.HeartbeatDelay = config.HeartbeatDelay
		}
		if config.HeartbeatInterval > 0 {
			e.config.HeartbeatInterval = config.HeartbeatInterval
		}
	}
}

// WithStore sets the tracker of in-flight step invocations
func WithStore(runStore slims.RunStore) EngineOption {
	return func(e *Engine) {
		e.store = runStore
	}
}

// WithInstanceURL overrides the callback URL sent at registration, which
// defaults to http://{host}:{port}
func WithInstanceURL(url string) EngineOption {
	return func(e *Engine) {
		e.instanceURL = url
	}
}

// NewEngine creates a new flow engine for client
// If no logger is provided, a default stdout logger with Info level is used
// If no store is provided, an in-memory tracker is used
func NewEngine(client *slims.Client, opts ...EngineOption) (*Engine, error) {
	if client == nil {
		return nil, slims.NewConfigError("client is required")
	}

	// Default logger: pretty console output, Info level
	defaultLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)

	eng := &Engine{
		client:  client,
		logger:  defaultLogger,
		config:  DefaultEngineConfig,
		metrics: newMetrics(),
		routes:  make(map[string]*slims.Step),
		flows:   []slims.FlowDefinition{},
	}

	// Apply options
	for _, opt := range opts {
		opt(eng)
	}

	if eng.store == nil {
		eng.store = store.NewMemoryStore()
	}
	if eng.instanceURL == "" {
		eng.instanceURL = fmt.Sprintf("http://%s:%d", eng.config.Host, eng.config.Port)
	}
	eng.logger = eng.logger.With().Str("instance", client.Name()).Logger()

	eng.app = fiber.New()
	eng.registerRoutes(eng.app)

	return eng, nil
}

// Client returns the client the engine reports through
func (e *Engine) Client() *slims.Client {
	return e.client
}

// Config returns the effective configuration
func (e *Engine) Config() EngineConfig {
	return e.config
}

// InstanceURL returns the callback URL sent at registration
func (e *Engine) InstanceURL() string {
	return e.instanceURL
}

// AddFlow adds a flow to the dispatch table and registers it with the
// server. Flows should be added before the engine starts serving.
//
// When the transport still waits for an authorization code, the
// authorization URL is logged and registration happens after the code
// exchange. A refused registration is logged and not returned.
func (e *Engine) AddFlow(ctx context.Context, flow *slims.Flow) error {
	if flow == nil {
		return slims.NewConfigError("flow is required")
	}
	if flow.ID == "" {
		return slims.NewConfigError("flow id is required")
	}
	if len(flow.Steps) == 0 {
		return slims.NewConfigError("flow %s has no steps", flow.ID)
	}

	def := flow.Definition()

	e.mu.Lock()
	for _, existing := range e.flows {
		if existing.ID == flow.ID {
			e.mu.Unlock()
			return slims.NewConfigError("flow %s is already registered", flow.ID)
		}
	}
	for i, step := range flow.Steps {
		e.routes[flow.Route(i)] = step
	}
	e.flows = append(e.flows, def)
	count := len(e.flows)
	e.mu.Unlock()

	e.metrics.flowsRegistered.Set(float64(count))

	if authorizer, ok := e.client.Authorizer(); ok && !authorizer.Authorized() {
		slims.LogAuthorizationRequired(e.logger, authorizer.AuthCodeURL())
		return nil
	}

	_ = e.register(ctx, []slims.FlowDefinition{def}, false)
	return nil
}

// Flows returns the definitions of all added flows
func (e *Engine) Flows() []slims.FlowDefinition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]slims.FlowDefinition(nil), e.flows...)
}

// lookup resolves a route to its step
func (e *Engine) lookup(route string) (*slims.Step, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	step, ok := e.routes[route]
	return step, ok
}

// registration is the body of a flow registration
type registration struct {
	Instance instance               `json:"instance"`
	Flows    []slims.FlowDefinition `json:"flows"`
}

type instance struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// register posts flow definitions to the server. Failures are logged and
// returned for callers that care; none of them is fatal.
func (e *Engine) register(ctx context.Context, flows []slims.FlowDefinition, reregister bool) error {
	ids := make([]string, 0, len(flows))
	for _, f := range flows {
		ids = append(ids, f.ID)
	}

	body := registration{
		Instance: instance{URL: e.instanceURL, Name: e.client.Name()},
		Flows:    flows,
	}

	resp, err := e.client.Post(ctx, registrationPath, body)
	if err != nil {
		slims.LogFlowRegistrationFailed(e.logger, ids, 0, err)
		e.metrics.recordRegistration(reregister, "error")
		return fmt.Errorf("failed to register flows: %w", err)
	}
	if !resp.OK() {
		apiErr := &slims.APIError{
			Operation:  "flow registration",
			StatusCode: resp.StatusCode,
			Body:       resp.ErrorMessage(),
		}
		slims.LogFlowRegistrationFailed(e.logger, ids, resp.StatusCode, apiErr)
		e.metrics.recordRegistration(reregister, "refused")
		return apiErr
	}

	slims.LogFlowsRegistered(e.logger, ids, reregister)
	e.metrics.recordRegistration(reregister, "ok")
	return nil
}

// HandleOAuthCode exchanges an authorization code for a token, registers
// every added flow and starts the heartbeat. state must match the one of
// the authorization URL.
func (e *Engine) HandleOAuthCode(ctx context.Context, code, state string) error {
	authorizer, ok := e.client.Authorizer()
	if !ok {
		return slims.NewConfigError("transport does not use authorization codes")
	}
	if !authorizer.ValidState(state) {
		e.logger.Warn().Msg("Authorization code rejected: state mismatch")
		return slims.ErrAuthorizationState
	}
	if err := authorizer.Exchange(ctx, code); err != nil {
		e.logger.Error().Err(err).Msg("Authorization code exchange failed")
		return err
	}
	e.logger.Info().Msg("Authorization code exchanged")

	if flows := e.Flows(); len(flows) > 0 {
		_ = e.register(ctx, flows, false)
	}
	e.StartHeartbeat()
	return nil
}

// ActiveRuns lists the step invocations currently in flight
func (e *Engine) ActiveRuns(ctx context.Context) ([]*slims.StepExecution, error) {
	return e.store.List(ctx, slims.RunFilter{})
}

// Wait blocks until every asynchronous step has finished or ctx expires
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.async.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen starts the callback server and blocks until it stops. An empty
// addr listens on the configured port. Transports that need no
// authorization code start the heartbeat here.
func (e *Engine) Listen(addr string) error {
	if addr == "" {
		addr = fmt.Sprintf(":%d", e.config.Port)
	}
	if authorizer, ok := e.client.Authorizer(); !ok || authorizer.Authorized() {
		e.StartHeartbeat()
	}

	e.logger.Info().Str("address", addr).Msg("Starting callback server")
	return e.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops the heartbeat and the callback server, then waits for
// asynchronous steps until ctx expires
func (e *Engine) Shutdown(ctx context.Context) error {
	e.StopHeartbeat()

	if err := e.app.ShutdownWithContext(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Callback server forced to shutdown")
	}

	if err := e.Wait(ctx); err != nil {
		return fmt.Errorf("asynchronous steps still running: %w", err)
	}

	e.logger.Info().Msg("Engine stopped")
	return nil
}
