package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Loader implements ports.FlowLoader over a fixed set of flows.
type Loader struct {
	mu    sync.RWMutex
	flows []domain.Flow
}

// NewLoader creates a loader serving the given flows in the given order.
func NewLoader(flows ...domain.Flow) *Loader {
	return &Loader{flows: append([]domain.Flow(nil), flows...)}
}

// NewFromFlows is like NewLoader but rejects unnamed flows and flows without a start node.
func NewFromFlows(flows ...domain.Flow) (*Loader, error) {
	for i, f := range flows {
		if f.Name == "" {
			return nil, fmt.Errorf("flow %d missing name", i)
		}
		if f.StartNode == "" {
			return nil, fmt.Errorf("flow %s missing start node", f.Name)
		}
	}
	return NewLoader(flows...), nil
}

// ListFlows returns the flows.
func (l *Loader) ListFlows(ctx context.Context) ([]domain.Flow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Flow(nil), l.flows...), nil
}

// Replace swaps the served flows, e.g. after a reload.
func (l *Loader) Replace(flows ...domain.Flow) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flows = append([]domain.Flow(nil), flows...)
}
