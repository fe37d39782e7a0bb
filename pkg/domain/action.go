package domain

import "strings"

// ActionKind names what the classifier asked the engine to do.
type ActionKind string

const (
	ActionSend     ActionKind = "send"
	ActionRedirect ActionKind = "redirect"
	ActionContinue ActionKind = "continue"

	// Aliases emitted by older decision engines; they normalise to ActionRedirect.
	ActionStartWorkflow ActionKind = "startWorkflow"
	ActionGoToNode      ActionKind = "goToNode"
)

// Normalize folds aliases into the canonical kinds.
// Unknown kinds are returned unchanged.
func (k ActionKind) Normalize() ActionKind {
	switch strings.ToLower(string(k)) {
	case "send":
		return ActionSend
	case "redirect", "startworkflow", "gotonode":
		return ActionRedirect
	case "continue":
		return ActionContinue
	}
	return k
}

// SendContent is a reply chosen by the classifier.
type SendContent struct {
	Source        string           `json:"source" mapstructure:"source"`
	SourceDetails string           `json:"source_details,omitempty" mapstructure:"source_details"`
	Confidence    float64          `json:"confidence,omitempty" mapstructure:"confidence"`
	Payloads      []map[string]any `json:"payloads,omitempty" mapstructure:"payloads"`
}

// FlowRedirect sends the session to a flow, optionally to a specific node of it.
type FlowRedirect struct {
	Flow string `json:"flow" mapstructure:"flow"`
	Node string `json:"node,omitempty" mapstructure:"node"`
}

// TurnAction is one action requested by the classifier.
type TurnAction struct {
	Kind     ActionKind    `json:"kind" mapstructure:"kind"`
	Send     *SendContent  `json:"send,omitempty" mapstructure:"send"`
	Redirect *FlowRedirect `json:"redirect,omitempty" mapstructure:"redirect"`
}
