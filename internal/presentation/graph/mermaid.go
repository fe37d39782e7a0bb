package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
)

// callerID is the shared node every return or caller edge points at.
const callerID = "caller"

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	Visited []domain.Target
	Current domain.Target
}

// GenerateMermaid produces a Mermaid flowchart with one subgraph per flow.
// It applies semantic styling:
// - Start node: ((Circle))
// - Node without transitions: ([Stadium])
// - Default: [Rectangle]
// Edges that leave the flow are dotted, catch-all edges start at the flow itself,
// and destinations that do not resolve point at a flagged placeholder.
func GenerateMermaid(flows []domain.Flow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, flow := range flows {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", flowID(flow.Name), flow.Name)
		for _, node := range flow.Nodes {
			opener, closer := "[", "]"
			switch {
			case node.Name == flow.StartNode:
				opener, closer = "((", "))"
			case len(node.Next) == 0:
				opener, closer = "([", "])"
			}
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", nodeID(flow.Name, node.Name), opener, node.Name, closer)
		}
		sb.WriteString("    end\n")
	}

	var edges edgeWriter
	for _, flow := range flows {
		for _, node := range flow.Nodes {
			pos := domain.Position{FlowName: flow.Name, NodeName: node.Name}
			for _, t := range node.Next {
				edges.write(&sb, nodeID(flow.Name, node.Name), pos, t, flows)
			}
		}
		if len(flow.CatchAll) > 0 {
			pos := domain.Position{FlowName: flow.Name, NodeName: flow.StartNode}
			for _, t := range flow.CatchAll {
				edges.write(&sb, flowID(flow.Name), pos, t, flows)
			}
		}
	}
	if edges.caller {
		fmt.Fprintf(&sb, "    %s{{\"caller\"}}\n", callerID)
	}
	for _, id := range slices.Sorted(maps.Keys(edges.missing)) {
		fmt.Fprintf(&sb, "    %s[\"⚠ %s\"]\n", id, edges.missing[id])
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, t := range overlay.Visited {
			id := nodeID(t.FlowName, t.NodeName)
			if !seen[id] && t.NodeName != "" {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Current.NodeName != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current.FlowName, overlay.Current.NodeName))
		}
	}

	return sb.String()
}

type edgeWriter struct {
	caller  bool
	missing map[string]string
}

func (e *edgeWriter) write(sb *strings.Builder, from string, pos domain.Position, t domain.Transition, flows []domain.Flow) {
	var to string
	jump := false

	switch {
	case strings.Contains(t.Destination, domain.CallerMarker):
		to, jump = callerID, true
		e.caller = true
	default:
		target, err := runtime.Navigate(pos, t.Destination, flows)
		if err != nil {
			to = "missing_" + sanitizeMermaidID(t.Destination)
			if e.missing == nil {
				e.missing = make(map[string]string)
			}
			e.missing[to] = t.Destination
		} else {
			to = nodeID(target.FlowName, target.NodeName)
			jump = target.FlowName != pos.FlowName
		}
	}

	arrow := "-->"
	if jump {
		arrow = "-.->"
	}
	if label := conditionLabel(t.Condition); label != "" {
		arrow = fmt.Sprintf("-- \"%s\" -->", label)
		if jump {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
	}
	fmt.Fprintf(sb, "    %s %s %s\n", from, arrow, to)
}

// conditionLabel is empty for transitions that always fire.
func conditionLabel(c domain.Expression) string {
	if c.IsLiteral() && c.Literal {
		return ""
	}
	return strings.ReplaceAll(c.String(), "\"", "'")
}

func flowID(flow string) string {
	return "flow_" + sanitizeMermaidID(flow)
}

func nodeID(flow, node string) string {
	return sanitizeMermaidID(flow) + "__" + sanitizeMermaidID(node)
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", "#", "_").Replace(id)
}
