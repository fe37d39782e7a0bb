package loam

// FlowMetadata is the document shape of a flow.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type FlowMetadata struct {
	Name      string               `json:"name" mapstructure:"name"`
	Start     string               `json:"start" mapstructure:"start"`
	StartNode string               `json:"start_node" mapstructure:"start_node"`
	CatchAll  []TransitionMetadata `json:"catch_all" mapstructure:"catch_all"`
	Nodes     []NodeMetadata       `json:"nodes" mapstructure:"nodes"`
}

// NodeMetadata is one node inside a flow document.
type NodeMetadata struct {
	Name      string               `json:"name" mapstructure:"name"`
	ID        string               `json:"id" mapstructure:"id"`
	OnEnter   []string             `json:"on_enter" mapstructure:"on_enter"`
	OnReceive []string             `json:"on_receive" mapstructure:"on_receive"`
	Next      []TransitionMetadata `json:"next" mapstructure:"next"`
}

// TransitionMetadata is one outgoing edge.
// Condition may be authored as a YAML boolean or as a string.
type TransitionMetadata struct {
	Condition any    `json:"condition" mapstructure:"condition"`
	To        string `json:"to" mapstructure:"to"`
	Node      string `json:"node" mapstructure:"node"`
	Flow      string `json:"flow" mapstructure:"flow"`
}
