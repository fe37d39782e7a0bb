package domain

// Node is a single step of a flow.
// OnEnter and OnReceive hold references for the host action runtime; the engine only
// carries them through.
type Node struct {
	Name      string       `json:"name"`
	OnEnter   []Expression `json:"on_enter,omitempty"`
	OnReceive []Expression `json:"on_receive,omitempty"`
	Next      []Transition `json:"next,omitempty"`
}

// IsWaiting reports whether the node pauses for user input before its transitions run.
func (n *Node) IsWaiting() bool {
	return len(n.OnReceive) > 0
}
