package domain

import "strings"

// Flow is a named, read-only graph of nodes with a designated start node.
type Flow struct {
	Name      string       `json:"name"`
	StartNode string       `json:"start_node"`
	Nodes     []Node       `json:"nodes"`
	CatchAll  []Transition `json:"catch_all,omitempty"`
}

// Node returns the first node named exactly name, in declaration order.
func (f *Flow) Node(name string) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].Name == name {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// Start returns the flow's start node.
func (f *Flow) Start() (*Node, bool) {
	return f.Node(f.StartNode)
}

// FindFlow returns the first flow named exactly name, in declaration order.
func FindFlow(flows []Flow, name string) (*Flow, bool) {
	for i := range flows {
		if flows[i].Name == name {
			return &flows[i], true
		}
	}
	return nil, false
}

// NormalizeFlowName strips the authored file suffix from a flow reference.
func NormalizeFlowName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), FlowFileSuffix)
}
