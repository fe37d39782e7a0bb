package runtime

import (
	"context"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
)

func (e *Engine) emitTurnStart(ctx context.Context, base domain.EventBase) {
	if e.hooks.OnTurnStart == nil {
		return
	}
	base.Type = domain.EventTurnStart
	e.hooks.OnTurnStart(ctx, &domain.TurnEvent{EventBase: base})
}

func (e *Engine) emitTurnEnd(ctx context.Context, base domain.EventBase, action string, started time.Time, err error) {
	e.logger.Debug("turn finished", "session_id", base.SessionID, "turn_id", base.TurnID, "action", action, "err", err)
	if e.hooks.OnTurnEnd == nil {
		return
	}
	base.Type = domain.EventTurnEnd
	base.Timestamp = e.now()
	e.hooks.OnTurnEnd(ctx, &domain.TurnEvent{
		EventBase: base,
		Action:    action,
		Duration:  base.Timestamp.Sub(started),
		Err:       err,
	})
}

func (e *Engine) emitSlotsMerged(ctx context.Context, base domain.EventBase, u SlotUpdate) {
	if len(u.Written) > 0 || len(u.Expired) > 0 {
		e.logger.Debug("slots merged", "session_id", base.SessionID, "written", u.Written, "expired", u.Expired, "skipped", u.Skipped)
	}
	if e.hooks.OnSlotsMerged == nil {
		return
	}
	base.Type = domain.EventSlotsMerged
	e.hooks.OnSlotsMerged(ctx, &domain.SlotEvent{
		EventBase: base,
		Written:   u.Written,
		Expired:   u.Expired,
		Skipped:   u.Skipped,
	})
}

func (e *Engine) emitNavigate(ctx context.Context, base domain.EventBase, t *domain.Transition, d Decision, from, to domain.Target) {
	destination := to.FlowName
	switch {
	case t != nil:
		destination = t.Destination
	case d.Redirect != nil:
		destination = d.Redirect.Flow
	}
	e.logger.Debug("navigated", "session_id", base.SessionID, "destination", destination, "from", from.String(), "to", to.String())
	if e.hooks.OnNavigate == nil {
		return
	}
	base.Type = domain.EventNavigate
	e.hooks.OnNavigate(ctx, &domain.NavigationEvent{
		EventBase:   base,
		Destination: destination,
		From:        from,
		To:          to,
	})
}
