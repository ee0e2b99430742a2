// Package schema defines the structural schema model: a closed set of
// node types describing how a Go value maps onto the wire value union,
// plus typed constructors that build nodes while erasing the element
// types into closures. The package is purely descriptive; deriving an
// encoder/decoder pair from a node tree happens in the root attrcodec
// package.
//
// Typed constructors return a Schema[T], a phantom-typed handle on the
// underlying node. The closures stashed on each node are the only place
// the erased types survive, which is what lets a single untyped engine
// serve every schema.
package schema

import (
	"sync"
)

// NodeKind identifies a schema node variant.
type NodeKind uint8

const (
	KindPrimitive NodeKind = iota
	KindOptional
	KindTuple
	KindSequence
	KindMap
	KindEither
	KindRecord
	KindEnum
	KindTransform
	KindLazy
	KindFail
	KindMeta
)

func (k NodeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindOptional:
		return "optional"
	case KindTuple:
		return "tuple"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindEither:
		return "either"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindTransform:
		return "transform"
	case KindLazy:
		return "lazy"
	case KindFail:
		return "fail"
	case KindMeta:
		return "meta"
	default:
		return "unknown"
	}
}

// Node is one variant of the closed schema union. The set of
// implementations is fixed; consumers switch over the concrete types and
// treat anything else as a contract violation.
type Node interface {
	Kind() NodeKind
	node()
}

// Schema is a typed handle on a schema node. The type parameter never
// appears in a field; it exists so constructors compose type-safely.
type Schema[T any] struct {
	n Node
}

// Node returns the underlying untyped node.
func (s Schema[T]) Node() Node { return s.n }

// fromNode wraps an untyped node back into a typed handle. Callers are
// responsible for the pairing of T and node vocabulary.
func fromNode[T any](n Node) Schema[T] { return Schema[T]{n: n} }

// ---- node variants ----

// PrimitiveNode maps a single Go scalar onto one wire kind. Layout and
// UTC apply to time primitives only.
type PrimitiveNode struct {
	Type   PrimitiveType
	Layout string
	UTC    bool
}

func (*PrimitiveNode) Kind() NodeKind { return KindPrimitive }
func (*PrimitiveNode) node()          {}

// OptionalNode wraps an element schema; absence encodes as Null.
type OptionalNode struct {
	Elem Node

	None   func() any
	IsNone func(v any) bool
	Wrap   func(elem any) any
	Unwrap func(v any) any
}

func (*OptionalNode) Kind() NodeKind { return KindOptional }
func (*OptionalNode) node()          {}

// TupleNode pairs two schemas; the wire form is a two-item list.
type TupleNode struct {
	Left  Node
	Right Node

	First  func(v any) any
	Second func(v any) any
	Make   func(first, second any) any
}

func (*TupleNode) Kind() NodeKind { return KindTuple }
func (*TupleNode) node()          {}

// SequenceNode maps a homogeneous collection onto a wire list. Iterate
// yields the elements in encoding order; Build folds decoded elements
// back into the collection value.
type SequenceNode struct {
	Elem Node

	Iterate func(v any, yield func(elem any))
	Build   func(elems []any) any
}

func (*SequenceNode) Kind() NodeKind { return KindSequence }
func (*SequenceNode) node()          {}

// MapEntry is one key/value pair flowing between a MapNode and the
// engine.
type MapEntry struct {
	Key   any
	Value any
}

// MapNode maps a keyed collection onto either a native wire map (string
// primitive keys) or a list of two-item pair lists (any other key
// schema).
type MapNode struct {
	Key   Node
	Value Node

	Iterate func(v any, yield func(key, val any))
	Build   func(entries []MapEntry) any
}

func (*MapNode) Kind() NodeKind { return KindMap }
func (*MapNode) node()          {}

// EitherNode is a two-way choice; the wire form is a single-entry map
// keyed "Left" or "Right".
type EitherNode struct {
	Left  Node
	Right Node

	// Deconstruct returns the held payload and which side holds it.
	Deconstruct func(v any) (payload any, right bool)
	MakeLeft    func(payload any) any
	MakeRight   func(payload any) any
}

func (*EitherNode) Kind() NodeKind { return KindEither }
func (*EitherNode) node()          {}

// RecordField is one named field of a record.
type RecordField struct {
	Name   string
	Schema Node

	Get func(record any) any
	Set func(builder any, v any)
}

// RecordNode maps a product type onto a wire map keyed by field name.
// Decode walks a fresh builder through every Set and then Finish.
type RecordNode struct {
	Fields []RecordField

	New    func() any
	Finish func(builder any) any
}

func (*RecordNode) Kind() NodeKind { return KindRecord }
func (*RecordNode) node()          {}

// EnumCase is one variant of a sum type. Deconstruct reports whether the
// value belongs to this case and, if so, hands back the payload;
// Construct rebuilds the sum value from a decoded payload.
type EnumCase struct {
	ID     string
	Const  string // wire tag override; empty means use ID
	Schema Node

	Deconstruct func(v any) (payload any, ok bool)
	Construct   func(payload any) any
}

// Tag returns the identifier this case uses on the wire.
func (c EnumCase) Tag() string {
	if c.Const != "" {
		return c.Const
	}
	return c.ID
}

// EnumNode maps a sum type onto the wire. With an empty Discriminator
// the wrapper strategy applies: a single-entry map keyed by the case
// tag. Otherwise the case tag is injected into the encoded map under the
// Discriminator key, with a bare-string form when every case is
// data-less.
type EnumNode struct {
	Cases         []EnumCase
	Discriminator string
}

func (*EnumNode) Kind() NodeKind { return KindEnum }
func (*EnumNode) node()          {}

// TransformNode adapts an inner schema to an outer value type. Into maps
// inner to outer on decode, From inverts it on encode; either direction
// may fail.
type TransformNode struct {
	Inner Node

	Into func(inner any) (outer any, err error)
	From func(outer any) (inner any, err error)
}

func (*TransformNode) Kind() NodeKind { return KindTransform }
func (*TransformNode) node()          {}

// LazyNode defers building its element until first use, which is what
// makes recursive schemas expressible. Forcing is memoized and safe for
// concurrent first use.
type LazyNode struct {
	once  sync.Once
	thunk func() Node
	n     Node
}

// Defer returns a lazy node around the given thunk. The thunk runs at
// most once.
func Defer(thunk func() Node) *LazyNode {
	if thunk == nil {
		panic("schema: Defer requires a thunk")
	}
	return &LazyNode{thunk: thunk}
}

// Force resolves and memoizes the deferred node.
func (l *LazyNode) Force() Node {
	l.once.Do(func() {
		l.n = l.thunk()
		l.thunk = nil
		if l.n == nil {
			panic("schema: lazy thunk returned nil")
		}
	})
	return l.n
}

func (*LazyNode) Kind() NodeKind { return KindLazy }
func (*LazyNode) node()          {}

// FailNode rejects every value in both directions with a fixed message.
// It is the placeholder for schema positions that must never carry data.
type FailNode struct {
	Message string
}

func (*FailNode) Kind() NodeKind { return KindFail }
func (*FailNode) node()          {}

// MetaNode is the schema of schemas: its value vocabulary is Node
// itself, and its wire form is the serialized schema AST.
type MetaNode struct{}

func (*MetaNode) Kind() NodeKind { return KindMeta }
func (*MetaNode) node()          {}

// Unlazy unwraps any chain of lazy nodes, forcing as it goes. Other
// nodes pass through untouched.
func Unlazy(n Node) Node {
	for {
		l, ok := n.(*LazyNode)
		if !ok {
			return n
		}
		n = l.Force()
	}
}
