package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurnStart   EventType = "turn_start"
	EventTurnEnd     EventType = "turn_end"
	EventSlotsMerged EventType = "slots_merged"
	EventNavigate    EventType = "navigate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	TurnID    string    `json:"turn_id"`
}

// TurnEvent marks the boundaries of a turn.
type TurnEvent struct {
	EventBase
	Action   string        `json:"action,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// SlotEvent reports the outcome of the slot merge.
type SlotEvent struct {
	EventBase
	Written []string `json:"written,omitempty"`
	Expired []string `json:"expired,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
}

// NavigationEvent reports a resolved destination.
type NavigationEvent struct {
	EventBase
	Destination string `json:"destination"`
	From        Target `json:"from"`
	To          Target `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurnStart   func(context.Context, *TurnEvent)
	OnTurnEnd     func(context.Context, *TurnEvent)
	OnSlotsMerged func(context.Context, *SlotEvent)
	OnNavigate    func(context.Context, *NavigationEvent)
}
