package domain

import "time"

// Slot is a named value extracted from user input and remembered across turns.
type Slot struct {
	Name       string    `json:"name"`
	Value      any       `json:"value"`
	Source     any       `json:"source,omitempty"`
	Entity     string    `json:"entity,omitempty"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`

	// Turns counts the turns since the slot was last written.
	Turns int `json:"turns"`

	// Overwritable false protects the value from later extractions.
	Overwritable bool `json:"overwritable"`

	// ExpiresAfterTurns deletes the slot once Turns reaches it.
	// Nil disables expiry.
	ExpiresAfterTurns *int `json:"expires_after_turns,omitempty"`
}

// ExpireAfter returns an expiry setting of n turns.
func ExpireAfter(n int) *int {
	return &n
}

// Expired reports whether the slot has outlived its expiry setting.
func (s Slot) Expired() bool {
	return s.ExpiresAfterTurns != nil && s.Turns >= *s.ExpiresAfterTurns
}

// SlotMap is the per-session slot store, keyed by slot name.
type SlotMap map[string]Slot

// Clone returns a shallow copy of the map. Slot values are copied, their Value payloads are shared.
func (m SlotMap) Clone() SlotMap {
	out := make(SlotMap, len(m))
	for k, v := range m {
		if v.ExpiresAfterTurns != nil {
			v.ExpiresAfterTurns = ExpireAfter(*v.ExpiresAfterTurns)
		}
		out[k] = v
	}
	return out
}

// SlotCandidate is a value proposed by the classifier for a slot.
type SlotCandidate struct {
	Name       string  `json:"name" mapstructure:"name"`
	Value      any     `json:"value" mapstructure:"value"`
	Source     any     `json:"source,omitempty" mapstructure:"source"`
	Entity     string  `json:"entity,omitempty" mapstructure:"entity"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
	Start      int     `json:"start,omitempty" mapstructure:"start"`
	End        int     `json:"end,omitempty" mapstructure:"end"`
}

// SlotCollection groups candidates by slot name (or entity type).
// Each list is ordered best-first by the classifier.
type SlotCollection map[string][]SlotCandidate
