/*
Package colloquy is a dialog navigation and turn-state engine for conversational agents.

A host feeds it one classified message at a time (an Understanding: intent, slot
candidates, scored triggers and the actions a decision engine picked) and colloquy
keeps the per-session bookkeeping: where the conversation sits in the flow graph,
which slots have been filled and for how long they stay, and which NLU contexts are
active. The host stays in charge of I/O and of executing node instructions.

# Concepts

  - Flows are named graphs of nodes. Transitions name a destination that is resolved
    against the session position: "##" returns to the previous position, "#node"
    targets a node of the previous flow, and anything else is a node of the current
    flow or a flow name.
  - Slots age by one turn per message and expire after their configured number of turns.
  - Contexts carry a TTL in turns; a TTL of 0 never expires.
  - Triggers are ranked by the mean of their sub-scores.

# Usage

	eng, err := colloquy.New("./flows")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.Start(ctx, "session-123")
	if err != nil {
		log.Fatal(err)
	}

	u, _ := nlu.DecodeJSON(payload)
	res, err := eng.ProcessTurn(ctx, state, u)
	if err != nil {
		log.Fatal(err)
	}
	log.Println(res.Decision.Describe(), res.Session.Position.Current())

For sessions that live across requests, pkg/runner combines the engine with the
session manager and a store from pkg/adapters.
*/
package colloquy
