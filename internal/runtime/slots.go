package runtime

import (
	"sort"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
)

// SlotOptions carries the per-turn inputs of the slot merge.
type SlotOptions struct {
	// CurrentTopic selects topic-scoped extraction when NDUEnabled is set.
	CurrentTopic string
	NDUEnabled   bool
	Now          time.Time
}

// SlotUpdate is the outcome of UpdateSlots.
type SlotUpdate struct {
	Slots   domain.SlotMap
	Written []string
	Expired []string
	Skipped []string

	// ForcePersist is set when at least one slot was written.
	ForcePersist bool
}

// UpdateSlots ages the existing slots, then merges this turn's candidates.
// The input map is never modified.
func UpdateSlots(existing domain.SlotMap, u domain.Understanding, opts SlotOptions) SlotUpdate {
	slots, expired := ExpireSlots(existing)
	written, skipped := MergeSlots(slots, SelectCandidates(u, opts), opts.Now)
	return SlotUpdate{
		Slots:        slots,
		Written:      written,
		Expired:      expired,
		Skipped:      skipped,
		ForcePersist: len(written) > 0,
	}
}

// ExpireSlots returns a copy of existing with every slot one turn older and the
// expired ones removed, along with the removed names (sorted).
func ExpireSlots(existing domain.SlotMap) (domain.SlotMap, []string) {
	out := existing.Clone()
	var expired []string
	for name, slot := range out {
		slot.Turns++
		if slot.Expired() {
			delete(out, name)
			expired = append(expired, name)
			continue
		}
		out[name] = slot
	}
	sort.Strings(expired)
	return out, expired
}

// SelectCandidates picks this turn's slot candidates.
//
// By default it walks u.Slots in key order and keeps the first candidate with a
// value from each list. A slot name already taken by an earlier list is skipped. With NDU enabled and a topic active, the slots of that
// topic's highest-confidence intent are used instead.
func SelectCandidates(u domain.Understanding, opts SlotOptions) []domain.SlotCandidate {
	source := u.Slots
	if opts.NDUEnabled && opts.CurrentTopic != "" {
		source = nil
		if prediction, ok := u.Predictions[opts.CurrentTopic]; ok {
			if top, ok := prediction.TopIntent(); ok {
				source = top.Slots
			}
		}
	}

	keys := make([]string, 0, len(source))
	for k := range source {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidates := make([]domain.SlotCandidate, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		for _, c := range source[k] {
			if c.Value == nil {
				continue
			}
			if c.Name == "" {
				c.Name = k
			}
			if !seen[c.Name] {
				seen[c.Name] = true
				candidates = append(candidates, c)
			}
			break
		}
	}
	return candidates
}

// MergeSlots writes candidates into slots in place, skipping protected ones.
// It returns the written and skipped names in candidate order.
func MergeSlots(slots domain.SlotMap, candidates []domain.SlotCandidate, now time.Time) (written, skipped []string) {
	for _, c := range candidates {
		if current, ok := slots[c.Name]; ok && !current.Overwritable {
			skipped = append(skipped, c.Name)
			continue
		}
		slots[c.Name] = domain.Slot{
			Name:         c.Name,
			Value:        c.Value,
			Source:       c.Source,
			Entity:       c.Entity,
			Confidence:   c.Confidence,
			Timestamp:    now,
			Turns:        0,
			Overwritable: true,
		}
		written = append(written, c.Name)
	}
	return written, skipped
}
