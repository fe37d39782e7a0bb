package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		raw  string
		want Expression
	}{
		{"", Literal(true)},
		{"true", Literal(true)},
		{" TRUE ", Literal(true)},
		{"false", Literal(false)},
		{"event.nlu.intent.name === 'hello'", Ref("event.nlu.intent.name === 'hello'")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExpression(tt.raw))
		})
	}
}

func TestExpression_JSONRoundTrip(t *testing.T) {
	tr := Transition{Condition: Ref("temp.ok"), Destination: "next"}
	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"condition":"temp.ok","destination":"next"}`, string(data))

	var back Transition
	require.NoError(t, json.Unmarshal([]byte(`{"condition":"false","destination":"x"}`), &back))
	assert.Equal(t, Literal(false), back.Condition)
}

func TestPosition_Advance(t *testing.T) {
	pos := Position{FlowName: "main", NodeName: "entry"}

	inSub := pos.Advance(Target{FlowName: "sub", NodeName: "start"})
	assert.Equal(t, Position{FlowName: "sub", NodeName: "start", PreviousFlowName: "main", PreviousNodeName: "entry"}, inSub)

	// Moves inside a flow also remember where the session was.
	deeper := inSub.Advance(Target{FlowName: "sub", NodeName: "step2"})
	assert.Equal(t, Position{FlowName: "sub", NodeName: "step2", PreviousFlowName: "sub", PreviousNodeName: "start"}, deeper)
}

func TestFlow_NodeFirstMatchWins(t *testing.T) {
	f := Flow{Name: "main", StartNode: "a", Nodes: []Node{
		{Name: "a", Next: []Transition{{Condition: Always, Destination: "first"}}},
		{Name: "a", Next: []Transition{{Condition: Always, Destination: "second"}}},
	}}
	n, ok := f.Node("a")
	require.True(t, ok)
	assert.Equal(t, "first", n.Next[0].Destination)

	_, ok = f.Node("A")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestSlotMap_CloneIsIndependent(t *testing.T) {
	m := SlotMap{"a": {Name: "a", Turns: 1, ExpiresAfterTurns: ExpireAfter(3)}}
	c := m.Clone()
	s := c["a"]
	s.Turns = 9
	*s.ExpiresAfterTurns = 7
	c["a"] = s

	assert.Equal(t, 1, m["a"].Turns)
	assert.Equal(t, 3, *m["a"].ExpiresAfterTurns)
}

func TestUnresolvableDestinationError(t *testing.T) {
	err := error(&UnresolvableDestinationError{Destination: "nowhere"})
	assert.Equal(t, "Could not find any node or flow under the name of 'nowhere'", err.Error())
	assert.ErrorIs(t, err, ErrUnresolvableDestination)
}

func TestActionKind_Normalize(t *testing.T) {
	assert.Equal(t, ActionRedirect, ActionStartWorkflow.Normalize())
	assert.Equal(t, ActionRedirect, ActionGoToNode.Normalize())
	assert.Equal(t, ActionSend, ActionKind("SEND").Normalize())
	assert.Equal(t, ActionKind("wat"), ActionKind("wat").Normalize())
}
