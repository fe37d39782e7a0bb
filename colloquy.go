package colloquy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/internal/validator"
	"github.com/aretw0/colloquy/pkg/adapters/loam"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	loamrepo "github.com/aretw0/loam"
)

type (
	// TurnResult is everything a turn produced.
	TurnResult = runtime.TurnResult
	// Decision is the outcome of the classifier's actions for a turn.
	Decision = runtime.Decision
	// SlotUpdate reports the slot changes of a turn.
	SlotUpdate = runtime.SlotUpdate
	// TurnOption tunes a single turn.
	TurnOption = runtime.TurnOption
	// ConditionEvaluator decides transition conditions.
	ConditionEvaluator = runtime.ConditionEvaluator
	// ValidationReport lists flow graph errors and warnings.
	ValidationReport = validator.Report
)

// WithTopic sets the session topic for a turn.
func WithTopic(topic string) TurnOption {
	return runtime.WithTopic(topic)
}

// RefTable evaluates reference conditions from a fixed table.
func RefTable(table map[string]bool) ConditionEvaluator {
	return runtime.RefTable(table)
}

// ResolveTTL converts loosely typed host input (numbers, numeric strings, nil) into a
// context TTL. Non-numeric input resolves to the default when appended.
func ResolveTTL(v any) float64 {
	return runtime.ResolveTTL(v)
}

// Engine is the high-level entry point for the library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	loader      ports.FlowLoader
	evaluator   runtime.ConditionEvaluator
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom FlowLoader, bypassing the default Loam initialization.
func WithLoader(l ports.FlowLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithConditionEvaluator sets how transition conditions that reference host
// expressions are decided. Without one, only literal conditions pass.
func WithConditionEvaluator(eval ConditionEvaluator) Option {
	return func(e *Engine) {
		e.evaluator = eval
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithNDU enables NDU mode: new sessions start in the misunderstood flow and slots
// come from the current topic's top intent.
func WithNDU(enabled bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithNDU(enabled))
	}
}

// WithDefaultFlow overrides the flow new sessions start in.
func WithDefaultFlow(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.runtimeOpts = append(e.runtimeOpts, runtime.WithDefaultFlow(name))
		}
	}
}

// New initializes a new Engine.
// By default, it reads flow documents from a Loam repository at flowsDir.
// If WithLoader is provided, flowsDir can be empty and Loam is skipped.
func New(flowsDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if flowsDir == "" {
			return nil, fmt.Errorf("flowsDir is required when no custom loader is provided")
		}

		absPath, err := filepath.Abs(flowsDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict mode keeps numbers consistent across JSON and YAML documents.
		// The engine never writes flows, so the repository is opened read-only.
		repo, err := loamrepo.Init(absPath,
			loamrepo.WithStrict(true),
			loamrepo.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		eng.loader = loam.New(loamrepo.NewTypedRepository[loam.FlowMetadata](repo))
	} else if flowsDir != "" {
		eng.Name = filepath.Base(flowsDir)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("flows", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(eng.loader, eng.evaluator, runtimeOpts...)
	return eng, nil
}

// Start creates a session at the start node of the default flow.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return e.runtime.Start(ctx, sessionID)
}

// ProcessTurn applies one classified message to a session and returns the new state.
// The given state is never modified.
func (e *Engine) ProcessTurn(ctx context.Context, state *domain.SessionState, u domain.Understanding, opts ...TurnOption) (*TurnResult, error) {
	return e.runtime.ProcessTurn(ctx, state, u, opts...)
}

// Navigate resolves a destination from pos without touching any session.
func (e *Engine) Navigate(ctx context.Context, pos domain.Position, destination string) (domain.Target, error) {
	return e.runtime.Navigate(ctx, pos, destination)
}

// AppendContexts returns a copy of state with the comma-separated contexts added.
// A non-finite ttl falls back to domain.DefaultContextTTL.
func (e *Engine) AppendContexts(state *domain.SessionState, names string, ttl float64) *domain.SessionState {
	return e.runtime.AppendContexts(state, names, ttl)
}

// RankTriggers scores triggers and orders them best first.
func (e *Engine) RankTriggers(triggers map[string]domain.Trigger) []domain.RankedTrigger {
	return runtime.RankTriggers(runtime.TriggersInOrder(triggers))
}

// NDUEnabled reports whether the engine runs in NDU mode.
func (e *Engine) NDUEnabled() bool {
	return e.runtime.NDUEnabled()
}

// Flows returns the flow definitions for introspection tools.
func (e *Engine) Flows(ctx context.Context) ([]domain.Flow, error) {
	return e.runtime.Flows(ctx)
}

// Validate checks the loaded flows for broken destinations and dead nodes.
func (e *Engine) Validate(ctx context.Context) (*ValidationReport, error) {
	return validator.Validate(ctx, e.loader)
}

// Watch returns a channel that signals when the underlying flows change.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}
