package dsl

import "github.com/aretw0/colloquy/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node domain.Node
}

// OnEnter appends instructions run when the node is entered.
func (n *NodeBuilder) OnEnter(refs ...string) *NodeBuilder {
	for _, r := range refs {
		n.node.OnEnter = append(n.node.OnEnter, domain.Ref(r))
	}
	return n
}

// OnReceive appends instructions run when a message arrives while waiting on the node.
func (n *NodeBuilder) OnReceive(refs ...string) *NodeBuilder {
	for _, r := range refs {
		n.node.OnReceive = append(n.node.OnReceive, domain.Ref(r))
	}
	return n
}

// Go adds an unconditional transition.
func (n *NodeBuilder) Go(destination string) *NodeBuilder {
	n.node.Next = append(n.node.Next, domain.Transition{
		Condition:   domain.Always,
		Destination: destination,
	})
	return n
}

// Branch adds a conditional transition.
func (n *NodeBuilder) Branch(condition, destination string) *NodeBuilder {
	n.node.Next = append(n.node.Next, domain.Transition{
		Condition:   domain.ParseExpression(condition),
		Destination: destination,
	})
	return n
}

// Return adds an unconditional transition back to the previous position.
func (n *NodeBuilder) Return() *NodeBuilder {
	return n.Go(domain.ReturnMarker)
}

// Terminal clears the outgoing transitions.
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.node.Next = nil
	return n
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
