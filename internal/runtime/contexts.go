package runtime

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
)

// AppendContexts adds the comma separated names to existing with the given TTL.
//
// A non-finite ttl falls back to domain.DefaultContextTTL. When a name appears
// more than once the highest TTL wins, with 0 ranking lowest. Survivors keep the
// order of their first occurrence. The input slice is never modified.
func AppendContexts(existing []domain.NLUContext, names string, ttl float64) []domain.NLUContext {
	resolved := domain.DefaultContextTTL
	if !math.IsNaN(ttl) && !math.IsInf(ttl, 0) {
		resolved = clampTTL(ttl)
	}

	parts := strings.Split(names, ",")
	candidates := make([]domain.NLUContext, 0, len(existing)+len(parts))
	candidates = append(candidates, existing...)
	for _, p := range parts {
		candidates = append(candidates, domain.NLUContext{Context: strings.TrimSpace(p), TTL: resolved})
	}

	return dedupeContexts(candidates)
}

// clampTTL truncates ttl toward zero and saturates at the int range.
func clampTTL(ttl float64) int {
	switch {
	case ttl >= math.MaxInt:
		return math.MaxInt
	case ttl <= math.MinInt:
		return math.MinInt
	}
	return int(ttl)
}

func dedupeContexts(candidates []domain.NLUContext) []domain.NLUContext {
	index := make(map[string]int, len(candidates))
	out := make([]domain.NLUContext, 0, len(candidates))
	for _, c := range candidates {
		i, seen := index[c.Context]
		if !seen {
			index[c.Context] = len(out)
			out = append(out, c)
			continue
		}
		if c.TTL > out[i].TTL {
			out[i].TTL = c.TTL
		}
	}
	return out
}

// DecrementContexts ages the contexts by one turn.
// Never-expiring entries (TTL 0) are kept as is; others are dropped once they reach 0.
func DecrementContexts(existing []domain.NLUContext) []domain.NLUContext {
	out := make([]domain.NLUContext, 0, len(existing))
	for _, c := range existing {
		if c.TTL == domain.ContextTTLNever {
			out = append(out, c)
			continue
		}
		if c.TTL > 1 {
			c.TTL--
			out = append(out, c)
		}
	}
	return out
}

// ResolveTTL converts loosely typed host input into a TTL for AppendContexts.
// Anything that is not a number yields NaN, which AppendContexts maps to the default.
func ResolveTTL(v any) float64 {
	switch t := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// AppendContexts returns a copy of state with the named contexts added.
func (e *Engine) AppendContexts(state *domain.SessionState, names string, ttl float64) *domain.SessionState {
	next := state.Clone()
	next.Contexts = AppendContexts(next.Contexts, names, ttl)
	next.UpdatedAt = e.now()
	e.logger.Debug("contexts appended", "session_id", state.ID, "contexts", domain.ContextNames(next.Contexts))
	return next
}
