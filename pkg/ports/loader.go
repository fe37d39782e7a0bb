package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// FlowLoader defines how the engine retrieves the authored flows.
// Implementations return flows in a stable order; name lookups take the first match.
type FlowLoader interface {
	ListFlows(ctx context.Context) ([]domain.Flow, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed document.
	Watch(ctx context.Context) (<-chan string, error)
}
