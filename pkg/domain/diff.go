package domain

import (
	"reflect"
)

// SessionDiff represents the changes a turn made to a session.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Position *Position `json:"position,omitempty"`

	// Slots contains only changed, added or deleted slots.
	// For deletions, the key is present with a nil value.
	Slots map[string]*Slot `json:"slots,omitempty"`

	// Contexts holds the full context list when it changed.
	Contexts []NLUContext `json:"contexts,omitempty"`

	Topic *string `json:"topic,omitempty"`

	// HistoryAppended contains targets appended to history.
	HistoryAppended []Target `json:"history_appended,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *SessionState) *SessionDiff {
	if newState == nil {
		return nil
	}

	diff := &SessionDiff{
		SessionID: newState.ID,
	}

	if oldState == nil || oldState.Position != newState.Position {
		pos := newState.Position
		diff.Position = &pos
	}
	if oldState == nil {
		if newState.CurrentTopic != "" {
			diff.Topic = &newState.CurrentTopic
		}
	} else if oldState.CurrentTopic != newState.CurrentTopic {
		diff.Topic = &newState.CurrentTopic
	}

	diff.Slots = diffSlots(oldState, newState)

	if oldState == nil {
		if len(newState.Contexts) > 0 {
			diff.Contexts = newState.Contexts
		}
	} else if !reflect.DeepEqual(oldState.Contexts, newState.Contexts) {
		diff.Contexts = newState.Contexts
		if diff.Contexts == nil {
			diff.Contexts = []NLUContext{}
		}
	}

	diff.HistoryAppended = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffSlots(old *SessionState, new *SessionState) map[string]*Slot {
	delta := make(map[string]*Slot)

	if old == nil {
		for k, v := range new.Slots {
			v := v
			delta[k] = &v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Slots {
		oldVal, exists := old.Slots[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			v := newVal
			delta[k] = &v
		}
	}

	for k := range old.Slots {
		if _, exists := new.Slots[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes append-only history.
func diffHistory(old *SessionState, new *SessionState) []Target {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil {
		return new.History
	}
	if len(new.History) > len(old.History) {
		return new.History[len(old.History):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.Position == nil &&
		d.Topic == nil &&
		len(d.Slots) == 0 &&
		d.Contexts == nil &&
		len(d.HistoryAppended) == 0
}
