package domain

// Target is a concrete place in the graph.
type Target struct {
	FlowName string `json:"flow_name"`
	NodeName string `json:"node_name"`
}

// String renders the target as flow#node.
func (t Target) String() string {
	return t.FlowName + "#" + t.NodeName
}

// Position is the current target of a session plus the one it came from.
type Position struct {
	FlowName         string `json:"flow_name"`
	NodeName         string `json:"node_name"`
	PreviousFlowName string `json:"previous_flow_name,omitempty"`
	PreviousNodeName string `json:"previous_node_name,omitempty"`
}

// Current returns the active target.
func (p Position) Current() Target {
	return Target{FlowName: p.FlowName, NodeName: p.NodeName}
}

// Previous returns the remembered target.
func (p Position) Previous() Target {
	return Target{FlowName: p.PreviousFlowName, NodeName: p.PreviousNodeName}
}

// Advance commits a navigation to t. The current target becomes the previous one,
// so "##" and "#node" always address where the session was on the prior turn.
func (p Position) Advance(t Target) Position {
	return Position{
		FlowName:         t.FlowName,
		NodeName:         t.NodeName,
		PreviousFlowName: p.FlowName,
		PreviousNodeName: p.NodeName,
	}
}
