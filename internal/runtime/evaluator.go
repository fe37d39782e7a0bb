package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/colloquy/pkg/domain"
)

// ErrUnsupportedExpression is returned by evaluators that cannot decide a reference.
var ErrUnsupportedExpression = errors.New("unsupported expression")

// ConditionEvaluator decides a transition condition for the given session.
// The engine never interprets reference syntax itself.
type ConditionEvaluator func(ctx context.Context, expr domain.Expression, state *domain.SessionState) (bool, error)

// LiteralEvaluator decides literals and rejects references.
func LiteralEvaluator(_ context.Context, expr domain.Expression, _ *domain.SessionState) (bool, error) {
	if expr.IsLiteral() {
		return expr.Literal, nil
	}
	return false, ErrUnsupportedExpression
}

// RefTable returns an evaluator that decides references from a fixed table.
// Unknown references are false. It is meant for hosts with precomputed conditions and for tests.
func RefTable(table map[string]bool) ConditionEvaluator {
	return func(ctx context.Context, expr domain.Expression, state *domain.SessionState) (bool, error) {
		if expr.IsLiteral() {
			return expr.Literal, nil
		}
		return table[expr.Ref], nil
	}
}
