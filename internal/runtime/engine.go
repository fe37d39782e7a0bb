package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Engine runs turns against a set of flows.
// It keeps no per-session state: every call takes a session snapshot and returns a new one.
type Engine struct {
	loader      ports.FlowLoader
	evaluator   ConditionEvaluator
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	now         func() time.Time
	nduEnabled  bool
	defaultFlow string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source used for slot timestamps and turn ids.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithNDU toggles Natural Dialogue Understanding mode.
// In NDU mode slots come from the active topic's best intent, and new sessions
// start in the "misunderstood" flow unless WithDefaultFlow says otherwise.
func WithNDU(enabled bool) EngineOption {
	return func(e *Engine) {
		e.nduEnabled = enabled
	}
}

// WithDefaultFlow sets the flow new sessions start in.
func WithDefaultFlow(name string) EngineOption {
	return func(e *Engine) {
		e.defaultFlow = name
	}
}

// NewEngine creates a new engine. A nil evaluator decides literal conditions only.
func NewEngine(loader ports.FlowLoader, evaluator ConditionEvaluator, opts ...EngineOption) *Engine {
	if evaluator == nil {
		evaluator = LiteralEvaluator
	}
	e := &Engine{
		loader:    loader,
		evaluator: evaluator,
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.defaultFlow == "" {
		e.defaultFlow = domain.DefaultFlow
		if e.nduEnabled {
			e.defaultFlow = domain.DefaultNDUFlow
		}
	}
	return e
}

// NDUEnabled reports whether the engine runs in NDU mode.
func (e *Engine) NDUEnabled() bool {
	return e.nduEnabled
}

// Flows returns the flows currently served by the loader.
func (e *Engine) Flows(ctx context.Context) ([]domain.Flow, error) {
	flows, err := e.loader.ListFlows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flows: %w", err)
	}
	return flows, nil
}

// Start creates a session positioned at the start node of the default flow.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	flows, err := e.Flows(ctx)
	if err != nil {
		return nil, err
	}
	target, err := flowStart(flows, e.defaultFlow)
	if err != nil {
		return nil, err
	}
	state := domain.NewSessionState(sessionID, target)
	state.UpdatedAt = e.now()
	e.logger.Debug("session started", "session_id", sessionID, "flow", target.FlowName, "node", target.NodeName)
	return state, nil
}
