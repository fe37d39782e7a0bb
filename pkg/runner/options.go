package runner

import (
	"log/slog"

	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithManager configures the session manager.
func WithManager(m *session.Manager) Option {
	return func(r *Runner) {
		r.Manager = m
	}
}

// WithStore wraps store in a session manager with default settings.
func WithStore(store ports.SessionStore) Option {
	return func(r *Runner) {
		r.Manager = session.NewManager(store)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}
