package dsl

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Builder manages flow construction. Flows keep the order they were first declared in.
type Builder struct {
	order []string
	flows map[string]*FlowBuilder
}

// New creates a new flow builder.
func New() *Builder {
	return &Builder{
		flows: make(map[string]*FlowBuilder),
	}
}

// Flow returns the builder for the named flow, creating it on first use.
func (b *Builder) Flow(name string) *FlowBuilder {
	name = domain.NormalizeFlowName(name)
	if fb, ok := b.flows[name]; ok {
		return fb
	}
	fb := &FlowBuilder{
		flow:  domain.Flow{Name: name},
		nodes: make(map[string]*NodeBuilder),
	}
	b.flows[name] = fb
	b.order = append(b.order, name)
	return fb
}

// Build compiles the flows into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	flows := make([]domain.Flow, 0, len(b.order))
	for _, name := range b.order {
		flows = append(flows, b.flows[name].Build())
	}

	loader, err := memory.NewFromFlows(flows...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// FlowBuilder configures one flow.
type FlowBuilder struct {
	flow      domain.Flow
	nodeOrder []string
	nodes     map[string]*NodeBuilder
}

// Start overrides the start node. By default the first declared node starts the flow.
func (f *FlowBuilder) Start(node string) *FlowBuilder {
	f.flow.StartNode = node
	return f
}

// CatchAll adds a flow-level transition evaluated after the node's own transitions.
func (f *FlowBuilder) CatchAll(condition, destination string) *FlowBuilder {
	f.flow.CatchAll = append(f.flow.CatchAll, domain.Transition{
		Condition:   domain.ParseExpression(condition),
		Destination: destination,
	})
	return f
}

// Node returns the builder for the named node, creating it on first use.
func (f *FlowBuilder) Node(name string) *NodeBuilder {
	if nb, ok := f.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{node: domain.Node{Name: name}}
	f.nodes[name] = nb
	f.nodeOrder = append(f.nodeOrder, name)
	return nb
}

// Build returns the underlying domain.Flow.
func (f *FlowBuilder) Build() domain.Flow {
	flow := f.flow
	flow.Nodes = make([]domain.Node, 0, len(f.nodeOrder))
	for _, name := range f.nodeOrder {
		flow.Nodes = append(flow.Nodes, f.nodes[name].Build())
	}
	if flow.StartNode == "" && len(flow.Nodes) > 0 {
		flow.StartNode = flow.Nodes[0].Name
	}
	return flow
}
