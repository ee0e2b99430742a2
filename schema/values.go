package schema

// Pair is the value vocabulary of tuple schemas.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairOf builds a pair without naming the type arguments at the call
// site.
func PairOf[A, B any](first A, second B) Pair[A, B] {
	return Pair[A, B]{First: first, Second: second}
}

// Either is the value vocabulary of either schemas: a value that holds
// exactly one of two alternatives. The zero Either holds the zero left
// value, so every Either encodes.
type Either[L, R any] struct {
	left  L
	right R
	isR   bool
}

// Left builds an Either holding the left alternative.
func Left[L, R any](v L) Either[L, R] { return Either[L, R]{left: v} }

// Right builds an Either holding the right alternative.
func Right[L, R any](v R) Either[L, R] { return Either[L, R]{right: v, isR: true} }

// IsLeft reports whether the left alternative is held.
func (e Either[L, R]) IsLeft() bool { return !e.isR }

// IsRight reports whether the right alternative is held.
func (e Either[L, R]) IsRight() bool { return e.isR }

// Left returns the left payload and whether it is held.
func (e Either[L, R]) Left() (L, bool) { return e.left, !e.isR }

// Right returns the right payload and whether it is held.
func (e Either[L, R]) Right() (R, bool) { return e.right, e.isR }

// Tagged is the value vocabulary of enum schemas materialized from a
// serialized AST: the case identifier plus the case payload.
type Tagged struct {
	Case  string
	Value any
}
