package domain

// Transition is an edge of the flow graph.
// Within a node, transitions are ordered and the first truthy condition wins.
//
// Destination grammar:
//   - "##"      return to the previous position
//   - "#node"   a node inside the previous (calling) flow
//   - "node"    a node inside the current flow
//   - "flow"    the start node of another flow
type Transition struct {
	Condition   Expression `json:"condition"`
	Destination string     `json:"destination"`
}
