package runtime

import (
	"context"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Navigate resolves a transition destination from the given position.
//
// Resolution order:
//  1. "##" anywhere: the previous position, verbatim.
//  2. "#" anywhere: the named node inside the previous flow.
//  3. a node of the current flow.
//  4. a flow name: that flow's start node.
//
// An unmatched destination yields *domain.UnresolvableDestinationError, and so
// does "##" on a session that has no previous position yet.
func Navigate(pos domain.Position, destination string, flows []domain.Flow) (domain.Target, error) {
	if strings.Contains(destination, domain.ReturnMarker) {
		if pos.PreviousFlowName == "" || pos.PreviousNodeName == "" {
			return domain.Target{}, &domain.UnresolvableDestinationError{Destination: destination}
		}
		return pos.Previous(), nil
	}

	if strings.Contains(destination, domain.CallerMarker) {
		nodeName := strings.Replace(destination, domain.CallerMarker, "", 1)
		prev, ok := domain.FindFlow(flows, pos.PreviousFlowName)
		if !ok {
			return domain.Target{}, &domain.UnresolvableDestinationError{Destination: destination}
		}
		node, ok := prev.Node(nodeName)
		if !ok {
			return domain.Target{}, &domain.UnresolvableDestinationError{Destination: destination}
		}
		return domain.Target{FlowName: prev.Name, NodeName: node.Name}, nil
	}

	if current, ok := domain.FindFlow(flows, pos.FlowName); ok {
		if node, ok := current.Node(destination); ok {
			return domain.Target{FlowName: current.Name, NodeName: node.Name}, nil
		}
	}

	return flowStart(flows, destination)
}

// Redirect resolves a classifier redirect. The flow reference goes straight to the
// flow-name tier; an explicit node must exist in that flow.
func Redirect(r domain.FlowRedirect, flows []domain.Flow) (domain.Target, error) {
	target, err := flowStart(flows, domain.NormalizeFlowName(r.Flow))
	if err != nil {
		return domain.Target{}, err
	}
	if r.Node == "" {
		return target, nil
	}
	flow, _ := domain.FindFlow(flows, target.FlowName)
	node, ok := flow.Node(r.Node)
	if !ok {
		return domain.Target{}, &domain.UnresolvableDestinationError{Destination: r.Node}
	}
	return domain.Target{FlowName: flow.Name, NodeName: node.Name}, nil
}

func flowStart(flows []domain.Flow, name string) (domain.Target, error) {
	flow, ok := domain.FindFlow(flows, name)
	if !ok {
		return domain.Target{}, &domain.UnresolvableDestinationError{Destination: name}
	}
	return domain.Target{FlowName: flow.Name, NodeName: flow.StartNode}, nil
}

// Navigate resolves destination against the loaded flows without touching the session.
func (e *Engine) Navigate(ctx context.Context, pos domain.Position, destination string) (domain.Target, error) {
	flows, err := e.Flows(ctx)
	if err != nil {
		return domain.Target{}, err
	}
	target, err := Navigate(pos, destination, flows)
	if err != nil {
		e.logger.Debug("destination not resolved", "destination", destination, "flow", pos.FlowName, "node", pos.NodeName)
		return domain.Target{}, err
	}
	return target, nil
}
