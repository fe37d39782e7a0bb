package domain

import "time"

// TurnSummary records what the last turn decided.
type TurnSummary struct {
	TurnID           string    `json:"turn_id"`
	Action           string    `json:"action"`
	HighestTriggerID string    `json:"highest_trigger_id,omitempty"`
	Node             Target    `json:"node"`
	Topic            string    `json:"topic,omitempty"`
	At               time.Time `json:"at"`
}

// SessionState is the snapshot persisted between turns.
type SessionState struct {
	ID       string       `json:"id"`
	Position Position     `json:"position"`
	Slots    SlotMap      `json:"slots"`
	Contexts []NLUContext `json:"contexts"`

	// CurrentTopic is the active topic, empty when none.
	CurrentTopic string `json:"current_topic,omitempty"`

	LastTurn *TurnSummary `json:"last_turn,omitempty"`

	// History lists the targets visited, oldest first.
	History []Target `json:"history,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionState creates a session positioned at the start of a flow.
func NewSessionState(id string, start Target) *SessionState {
	return &SessionState{
		ID:       id,
		Position: Position{FlowName: start.FlowName, NodeName: start.NodeName},
		Slots:    make(SlotMap),
		Contexts: []NLUContext{},
		History:  []Target{start},
	}
}

// Clone returns a copy that can be modified without touching s.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.Slots = s.Slots.Clone()
	out.Contexts = append([]NLUContext(nil), s.Contexts...)
	if out.Contexts == nil {
		out.Contexts = []NLUContext{}
	}
	out.History = append([]Target(nil), s.History...)
	if s.LastTurn != nil {
		lt := *s.LastTurn
		out.LastTurn = &lt
	}
	return &out
}
