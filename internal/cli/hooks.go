package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/colloquy/pkg/domain"
)

// DebugHooks logs every engine event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			logger.Debug("Turn Start", "session_id", e.SessionID, "turn_id", e.TurnID)
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			if e.Err != nil {
				logger.Debug("Turn End (Error)", "turn_id", e.TurnID, "err", e.Err)
				return
			}
			logger.Debug("Turn End", "turn_id", e.TurnID, "action", e.Action, "duration", e.Duration)
		},
		OnSlotsMerged: func(ctx context.Context, e *domain.SlotEvent) {
			logger.Debug("Slots Merged", "turn_id", e.TurnID, "written", e.Written, "expired", e.Expired, "skipped", e.Skipped)
		},
		OnNavigate: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.Debug("Navigate", "destination", e.Destination, "from", e.From.String(), "to", e.To.String())
		},
	}
}
