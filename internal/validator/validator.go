package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Report collects the problems found in a set of flows.
// Errors break navigation at runtime; warnings point at dead content.
type Report struct {
	Errors   []string
	Warnings []string
}

// Err folds the errors into a single error, or returns nil when there are none.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate loads the flows and checks them.
func Validate(ctx context.Context, loader ports.FlowLoader) (*Report, error) {
	flows, err := loader.ListFlows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flows: %w", err)
	}
	return ValidateFlows(flows), nil
}

// ValidateFlows checks flow structure and crawls each flow from its start node.
// Destinations using the return or caller markers depend on the session and are not checked.
func ValidateFlows(flows []domain.Flow) *Report {
	r := &Report{}

	seen := make(map[string]bool, len(flows))
	for _, f := range flows {
		if f.Name == "" {
			r.errorf("flow without a name")
			continue
		}
		if seen[f.Name] {
			r.errorf("duplicate flow '%s': only the first definition is reachable", f.Name)
			continue
		}
		seen[f.Name] = true
		checkFlow(r, f, flows)
	}
	return r
}

func checkFlow(r *Report, f domain.Flow, flows []domain.Flow) {
	names := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.Name == "" {
			r.errorf("flow '%s': node without a name", f.Name)
			continue
		}
		if names[n.Name] {
			r.errorf("flow '%s': duplicate node '%s'", f.Name, n.Name)
		}
		names[n.Name] = true
	}

	if _, ok := f.Start(); !ok {
		r.errorf("flow '%s': start node '%s' not found", f.Name, f.StartNode)
		return
	}

	check := func(from string, t domain.Transition) (string, bool) {
		dest := t.Destination
		if dest == "" || strings.Contains(dest, domain.CallerMarker) {
			return "", false
		}
		if names[dest] {
			return dest, true
		}
		if _, ok := domain.FindFlow(flows, dest); ok {
			return "", false
		}
		r.errorf("flow '%s': node '%s' points to '%s', which is neither a node nor a flow", f.Name, from, dest)
		return "", false
	}

	for _, t := range f.CatchAll {
		check("catch_all", t)
	}

	visited := map[string]bool{}
	queue := []string{f.StartNode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		node, _ := f.Node(current)
		for _, t := range node.Next {
			if next, ok := check(current, t); ok && !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	for _, t := range f.CatchAll {
		if names[t.Destination] {
			visited[t.Destination] = true
		}
	}
	for _, n := range f.Nodes {
		if n.Name != "" && !visited[n.Name] {
			r.warnf("flow '%s': node '%s' is unreachable from '%s'", f.Name, n.Name, f.StartNode)
		}
	}
}
