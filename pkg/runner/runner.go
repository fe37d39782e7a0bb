package runner

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/session"
)

// Runner applies turns to stored sessions.
type Runner struct {
	Engine  *colloquy.Engine
	Manager *session.Manager
	Logger  *slog.Logger
}

// Outcome is a processed turn together with the changes it made to the session.
type Outcome struct {
	*colloquy.TurnResult
	Diff *domain.SessionDiff
}

// New creates a Runner. Without WithManager or WithStore, sessions live in memory.
func New(engine *colloquy.Engine, opts ...Option) *Runner {
	r := &Runner{Engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	if r.Manager == nil {
		r.Manager = session.NewManager(memory.NewStore())
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Start loads the session, creating it at the default flow when it does not exist.
func (r *Runner) Start(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return r.Manager.LoadOrStart(ctx, sessionID, r.Engine.Start)
}

// Session returns the stored session.
func (r *Runner) Session(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return r.Manager.Load(ctx, sessionID)
}

// HandleTurn runs one turn for the session, starting it when needed.
// When the turn fails (for example on an unresolvable destination) nothing is saved.
func (r *Runner) HandleTurn(ctx context.Context, sessionID string, u domain.Understanding, opts ...colloquy.TurnOption) (*Outcome, error) {
	var out *Outcome
	_, err := r.Manager.Update(ctx, sessionID, r.Engine.Start, func(ctx context.Context, current *domain.SessionState) (*domain.SessionState, ports.SaveOptions, error) {
		res, err := r.Engine.ProcessTurn(ctx, current, u, opts...)
		if err != nil {
			return nil, ports.SaveOptions{}, err
		}
		out = &Outcome{TurnResult: res, Diff: domain.Diff(current, res.Session)}
		return res.Session, ports.SaveOptions{ForcePersist: res.ForcePersist}, nil
	})
	if err != nil {
		r.Logger.Warn("turn failed", "session_id", sessionID, "err", err)
		return nil, err
	}
	r.Logger.Info("turn processed",
		"session_id", sessionID,
		"turn_id", out.TurnID,
		"decision", out.Decision.Kind(),
		"flow", out.Session.Position.FlowName,
		"node", out.Session.Position.NodeName,
	)
	return out, nil
}

// AppendContexts adds comma-separated contexts to an existing session.
func (r *Runner) AppendContexts(ctx context.Context, sessionID, names string, ttl float64) (*domain.SessionState, error) {
	return r.Manager.Update(ctx, sessionID, nil, func(ctx context.Context, current *domain.SessionState) (*domain.SessionState, ports.SaveOptions, error) {
		return r.Engine.AppendContexts(current, names, ttl), ports.SaveOptions{}, nil
	})
}

// Reset deletes the session so the next turn starts over.
func (r *Runner) Reset(ctx context.Context, sessionID string) error {
	return r.Manager.Delete(ctx, sessionID)
}
