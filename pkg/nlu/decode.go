// Package nlu decodes classifier output into domain.Understanding.
//
// Input is free-form: keys may be snake_case or camelCase, numbers may arrive as
// strings, a slot may carry one candidate or a list of them, and an action may be a
// bare kind name. Malformed candidates are dropped rather than failing the turn.
package nlu

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Decode converts a raw classifier payload into an Understanding.
//
// Shape problems degrade instead of failing: a slot candidate that does not decode
// is dropped, a trigger sub-score that is not a number becomes NaN (ranked at the
// floor), and any other unparseable number reads as 0.
func Decode(raw map[string]any) (domain.Understanding, error) {
	var u domain.Understanding
	if len(raw) == 0 {
		return u, nil
	}

	decoder, err := newDecoder(&u,
		candidatesHook,
		actionHook,
		scoresHook,
		lenientFloatHook,
	)
	if err != nil {
		return u, err
	}
	if err := decoder.Decode(raw); err != nil {
		return u, fmt.Errorf("decode understanding: %w", err)
	}

	normalize(&u)
	return u, nil
}

func newDecoder(result any, hooks ...mapstructure.DecodeHookFuncType) (*mapstructure.Decoder, error) {
	fns := make([]mapstructure.DecodeHookFunc, 0, len(hooks))
	for _, h := range hooks {
		fns = append(fns, h)
	}
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           result,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(fns...),
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	})
}

// DecodeJSON decodes a JSON classifier payload.
func DecodeJSON(data []byte) (domain.Understanding, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Understanding{}, fmt.Errorf("decode understanding: %w", err)
	}
	return Decode(raw)
}

var (
	candidateSliceType = reflect.TypeOf([]domain.SlotCandidate{})
	actionType         = reflect.TypeOf(domain.TurnAction{})
	scoresType         = reflect.TypeOf(map[string]float64{})
)

// candidatesHook accepts a single candidate where a list is expected and keeps
// only the entries that decode as a candidate on their own.
func candidatesHook(from, to reflect.Type, data any) (any, error) {
	if to != candidateSliceType {
		return data, nil
	}
	var items []any
	switch v := data.(type) {
	case map[string]any:
		items = []any{v}
	case []any:
		items = v
	}

	kept := make([]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if decodesAsCandidate(m) {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

func decodesAsCandidate(m map[string]any) bool {
	var c domain.SlotCandidate
	decoder, err := newDecoder(&c)
	if err != nil {
		return false
	}
	return decoder.Decode(m) == nil
}

// scoresHook turns trigger sub-scores into floats. Values that are not numbers
// become NaN so the trigger ranks at the floor instead of failing the payload.
func scoresHook(from, to reflect.Type, data any) (any, error) {
	if to != scoresType {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return map[string]float64{}, nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = toScore(v)
	}
	return out, nil
}

func toScore(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

// lenientFloatHook reads a non-numeric string as 0 for plain confidence fields.
func lenientFloatHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Float64 || from.Kind() != reflect.String {
		return data, nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(reflect.ValueOf(data).String()), 64); err != nil {
		return 0.0, nil
	}
	return data, nil
}

// actionHook lets an action be written as its kind alone, e.g. "continue".
func actionHook(from, to reflect.Type, data any) (any, error) {
	if to != actionType || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]any{"kind": data}, nil
}

func normalize(u *domain.Understanding) {
	for id, tr := range u.Triggers {
		if tr.ID == "" {
			tr.ID = id
			u.Triggers[id] = tr
		}
	}
	for i := range u.Actions {
		u.Actions[i].Kind = u.Actions[i].Kind.Normalize()
	}
	for k, cands := range u.Slots {
		for i := range cands {
			if cands[i].Name == "" {
				cands[i].Name = k
			}
		}
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(s))
}
