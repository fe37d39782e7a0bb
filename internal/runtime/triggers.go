package runtime

import (
	"fmt"
	"math"
	"sort"

	"github.com/aretw0/colloquy/pkg/domain"
)

// NoScore is given to triggers whose result cannot be averaged.
const NoScore = -1.0

// ScoreTrigger returns the mean of the trigger's results, or NoScore when there
// are none or the mean is not a number.
func ScoreTrigger(t domain.Trigger) float64 {
	if len(t.Result) == 0 {
		return NoScore
	}
	var sum float64
	for _, v := range t.Result {
		sum += v
	}
	mean := sum / float64(len(t.Result))
	if math.IsNaN(mean) {
		return NoScore
	}
	return mean
}

// RankTriggers scores every trigger and orders them best first.
// Equal scores keep their input order.
func RankTriggers(triggers []domain.Trigger) []domain.RankedTrigger {
	ranked := make([]domain.RankedTrigger, 0, len(triggers))
	for _, t := range triggers {
		ranked = append(ranked, domain.RankedTrigger{Trigger: t, Score: ScoreTrigger(t)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// TriggersInOrder flattens a trigger map into a slice ordered by id.
// Map keys fill in missing trigger ids.
func TriggersInOrder(m map[string]domain.Trigger) []domain.Trigger {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.Trigger, 0, len(ids))
	for _, id := range ids {
		t := m[id]
		if t.ID == "" {
			t.ID = id
		}
		out = append(out, t)
	}
	return out
}

// Decision is the classifier's action plan for a turn, normalised.
type Decision struct {
	Sends    []domain.SendContent
	Redirect *domain.FlowRedirect
	Continue bool

	// Top is the highest ranked trigger, if any.
	Top *domain.RankedTrigger
}

// Evaluate folds the classifier's actions into a Decision.
// Sends keep their order, the last redirect wins, and unknown kinds are ignored.
func Evaluate(actions []domain.TurnAction, ranked []domain.RankedTrigger) Decision {
	var d Decision
	for _, a := range actions {
		switch a.Kind.Normalize() {
		case domain.ActionSend:
			if a.Send != nil {
				d.Sends = append(d.Sends, *a.Send)
			}
		case domain.ActionRedirect:
			if a.Redirect != nil {
				r := *a.Redirect
				d.Redirect = &r
			}
		case domain.ActionContinue:
			d.Continue = true
		}
	}
	if len(ranked) > 0 {
		top := ranked[0]
		d.Top = &top
	}
	return d
}

// Kind names the dominant action of the decision.
func (d Decision) Kind() string {
	switch {
	case d.Redirect != nil:
		return string(domain.ActionRedirect)
	case len(d.Sends) > 0:
		return string(domain.ActionSend)
	case d.Continue:
		return string(domain.ActionContinue)
	}
	return "none"
}

// Describe renders the decision as a deterministic one-liner.
func (d Decision) Describe() string {
	switch {
	case d.Redirect != nil:
		if d.Redirect.Node != "" {
			return fmt.Sprintf("redirect %s#%s", domain.NormalizeFlowName(d.Redirect.Flow), d.Redirect.Node)
		}
		return fmt.Sprintf("redirect %s", domain.NormalizeFlowName(d.Redirect.Flow))
	case len(d.Sends) > 0:
		s := d.Sends[0]
		if s.SourceDetails != "" {
			return fmt.Sprintf("send %s (%s)", s.Source, s.SourceDetails)
		}
		return fmt.Sprintf("send %s", s.Source)
	case d.Continue:
		return "continue"
	}
	return "none"
}
