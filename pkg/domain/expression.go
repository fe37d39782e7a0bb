package domain

import "strings"

// ExpressionKind discriminates the two condition shapes.
type ExpressionKind string

const (
	ExpressionLiteral   ExpressionKind = "literal"
	ExpressionReference ExpressionKind = "reference"
)

// Expression is a transition or hook condition.
// Literals are decided by the engine; references are opaque and handed to the host evaluator.
type Expression struct {
	Kind    ExpressionKind
	Literal bool
	Ref     string
}

// Always is the unconditional expression.
var Always = Literal(true)

// Literal builds a literal boolean expression.
func Literal(v bool) Expression {
	return Expression{Kind: ExpressionLiteral, Literal: v}
}

// Ref builds an external reference expression.
func Ref(ref string) Expression {
	return Expression{Kind: ExpressionReference, Ref: ref}
}

// ParseExpression reads the authored text form of a condition.
// "true"/"false" (any case) are literals and an empty string means "always".
// Everything else is kept verbatim as a reference.
func ParseExpression(raw string) Expression {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "", "true":
		return Literal(true)
	case "false":
		return Literal(false)
	}
	return Ref(raw)
}

// IsLiteral reports whether the engine can decide the expression on its own.
func (e Expression) IsLiteral() bool {
	return e.Kind != ExpressionReference
}

// String returns the authored text form.
func (e Expression) String() string {
	if e.Kind == ExpressionReference {
		return e.Ref
	}
	if e.Literal {
		return "true"
	}
	return "false"
}

// MarshalText implements encoding.TextMarshaler.
func (e Expression) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Expression) UnmarshalText(text []byte) error {
	*e = ParseExpression(string(text))
	return nil
}
