package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/oklog/ulid/v2"
)

// TurnResult is everything a turn produced.
type TurnResult struct {
	TurnID   string
	Session  *domain.SessionState
	Decision Decision
	Ranked   []domain.RankedTrigger
	Slots    SlotUpdate

	// Transition is the node transition taken, nil when the turn did not follow one.
	Transition *domain.Transition
	Navigated  bool

	// Node is the node the session now sits on, for the host action runtime.
	Node *domain.Node

	// ForcePersist asks the session layer to write through to durable storage.
	ForcePersist bool
}

// TurnOption tunes a single turn.
type TurnOption func(*turnConfig)

type turnConfig struct {
	topic    string
	setTopic bool
}

// WithTopic sets the session's current topic before slots are merged.
// An empty topic clears it.
func WithTopic(topic string) TurnOption {
	return func(c *turnConfig) {
		c.topic = topic
		c.setTopic = true
	}
}

// ProcessTurn applies one classified message to a session.
//
// The steps run in order: context aging, slot expiry and merge, trigger ranking,
// classifier actions, then node transitions when the classifier asked to continue
// (or sent no actions). At most one navigation happens per turn.
//
// On an unresolvable destination the original session is returned untouched
// together with the error.
func (e *Engine) ProcessTurn(ctx context.Context, state *domain.SessionState, u domain.Understanding, opts ...TurnOption) (*TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("process turn: %w", domain.ErrSessionNotFound)
	}

	var cfg turnConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	flows, err := e.Flows(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	turnID := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	base := domain.EventBase{Timestamp: now, SessionID: state.ID, TurnID: turnID}
	e.emitTurnStart(ctx, base)

	next := state.Clone()
	if cfg.setTopic {
		next.CurrentTopic = cfg.topic
	}
	next.Contexts = DecrementContexts(next.Contexts)

	slots := UpdateSlots(next.Slots, u, SlotOptions{
		CurrentTopic: next.CurrentTopic,
		NDUEnabled:   e.nduEnabled,
		Now:          now,
	})
	next.Slots = slots.Slots
	e.emitSlotsMerged(ctx, base, slots)

	ranked := RankTriggers(TriggersInOrder(u.Triggers))
	decision := Evaluate(u.Actions, ranked)

	result := &TurnResult{
		TurnID:       turnID,
		Decision:     decision,
		Ranked:       ranked,
		Slots:        slots,
		ForcePersist: slots.ForcePersist,
	}

	target, transition, err := e.selectTarget(ctx, next, u, decision, flows)
	if err != nil {
		e.logger.Warn("turn aborted", "session_id", state.ID, "turn_id", turnID, "err", err)
		e.emitTurnEnd(ctx, base, decision.Kind(), now, err)
		result.Session = state
		return result, err
	}

	if target != nil {
		from := next.Position.Current()
		next.Position = next.Position.Advance(*target)
		next.History = append(next.History, *target)
		result.Navigated = true
		result.Transition = transition
		e.emitNavigate(ctx, base, transition, decision, from, *target)
	}

	if flow, ok := domain.FindFlow(flows, next.Position.FlowName); ok {
		if node, ok := flow.Node(next.Position.NodeName); ok {
			result.Node = node
		}
	}

	summary := &domain.TurnSummary{
		TurnID: turnID,
		Action: decision.Kind(),
		Node:   next.Position.Current(),
		Topic:  next.CurrentTopic,
		At:     now,
	}
	if decision.Top != nil {
		summary.HighestTriggerID = decision.Top.ID
	}
	next.LastTurn = summary
	next.UpdatedAt = now

	result.Session = next
	e.emitTurnEnd(ctx, base, decision.Kind(), now, nil)
	return result, nil
}

// selectTarget decides where the turn goes, if anywhere.
func (e *Engine) selectTarget(ctx context.Context, state *domain.SessionState, u domain.Understanding, d Decision, flows []domain.Flow) (*domain.Target, *domain.Transition, error) {
	if d.Redirect != nil {
		target, err := Redirect(*d.Redirect, flows)
		if err != nil {
			return nil, nil, err
		}
		return &target, nil, nil
	}

	if len(u.Actions) > 0 && !d.Continue {
		return nil, nil, nil
	}

	flow, ok := domain.FindFlow(flows, state.Position.FlowName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, state.Position.FlowName)
	}
	node, ok := flow.Node(state.Position.NodeName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s#%s", domain.ErrNodeNotFound, flow.Name, state.Position.NodeName)
	}

	candidates := make([]domain.Transition, 0, len(node.Next)+len(flow.CatchAll))
	candidates = append(candidates, node.Next...)
	candidates = append(candidates, flow.CatchAll...)

	for i := range candidates {
		t := candidates[i]
		ok, err := e.evaluator(ctx, t.Condition, state)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedExpression) {
				e.logger.Debug("condition evaluation failed", "session_id", state.ID, "condition", t.Condition.String(), "err", err)
			}
			continue
		}
		if !ok {
			continue
		}
		target, err := Navigate(state.Position, t.Destination, flows)
		if err != nil {
			return nil, nil, err
		}
		return &target, &t, nil
	}
	return nil, nil, nil
}
