package schema

// Optional wraps an element schema into a pointer-typed schema: nil
// encodes as Null, anything else as the element. Decoding inverts that.
func Optional[T any](elem Schema[T]) Schema[*T] {
	return fromNode[*T](&OptionalNode{
		Elem: elem.Node(),
		None: func() any {
			var none *T
			return none
		},
		IsNone: func(v any) bool { return v.(*T) == nil },
		Wrap: func(elem any) any {
			t := elem.(T)
			return &t
		},
		Unwrap: func(v any) any { return *(v.(*T)) },
	})
}

// Tuple pairs two schemas into a Pair schema; the wire form is a
// two-item list.
func Tuple[A, B any](left Schema[A], right Schema[B]) Schema[Pair[A, B]] {
	return fromNode[Pair[A, B]](&TupleNode{
		Left:   left.Node(),
		Right:  right.Node(),
		First:  func(v any) any { return v.(Pair[A, B]).First },
		Second: func(v any) any { return v.(Pair[A, B]).Second },
		Make: func(first, second any) any {
			return Pair[A, B]{First: first.(A), Second: second.(B)}
		},
	})
}

// Slice maps a Go slice onto a wire list.
func Slice[T any](elem Schema[T]) Schema[[]T] {
	return fromNode[[]T](&SequenceNode{
		Elem: elem.Node(),
		Iterate: func(v any, yield func(any)) {
			for _, e := range v.([]T) {
				yield(e)
			}
		},
		Build: func(elems []any) any {
			out := make([]T, len(elems))
			for i, e := range elems {
				out[i] = e.(T)
			}
			return out
		},
	})
}

// Sequence maps an arbitrary collection type onto a wire list through a
// pair of slice conversions. It serves collection types Slice cannot
// express, such as chunk or set wrappers.
func Sequence[C, E any](elem Schema[E], toSlice func(C) []E, fromSlice func([]E) C) Schema[C] {
	return fromNode[C](&SequenceNode{
		Elem: elem.Node(),
		Iterate: func(v any, yield func(any)) {
			for _, e := range toSlice(v.(C)) {
				yield(e)
			}
		},
		Build: func(elems []any) any {
			out := make([]E, len(elems))
			for i, e := range elems {
				out[i] = e.(E)
			}
			return fromSlice(out)
		},
	})
}

// MapOf maps a Go map onto the wire. String-primitive keys encode as a
// native wire map; any other key schema falls back to a list of
// key/value pair lists.
func MapOf[K comparable, V any](key Schema[K], value Schema[V]) Schema[map[K]V] {
	return fromNode[map[K]V](&MapNode{
		Key:   key.Node(),
		Value: value.Node(),
		Iterate: func(v any, yield func(k, val any)) {
			for k, e := range v.(map[K]V) {
				yield(k, e)
			}
		},
		Build: func(entries []MapEntry) any {
			out := make(map[K]V, len(entries))
			for _, e := range entries {
				out[e.Key.(K)] = e.Value.(V)
			}
			return out
		},
	})
}

// EitherOf maps an Either value onto a single-entry wire map keyed
// "Left" or "Right".
func EitherOf[L, R any](left Schema[L], right Schema[R]) Schema[Either[L, R]] {
	return fromNode[Either[L, R]](&EitherNode{
		Left:  left.Node(),
		Right: right.Node(),
		Deconstruct: func(v any) (any, bool) {
			e := v.(Either[L, R])
			if r, ok := e.Right(); ok {
				return r, true
			}
			l, _ := e.Left()
			return l, false
		},
		MakeLeft:  func(p any) any { return Left[L, R](p.(L)) },
		MakeRight: func(p any) any { return Right[L, R](p.(R)) },
	})
}

// Transform adapts an inner schema to an outer value type. into runs
// after decode, from runs before encode; both may fail, and a failure
// surfaces as a codec error at the transform's position.
func Transform[A, B any](inner Schema[A], into func(A) (B, error), from func(B) (A, error)) Schema[B] {
	return fromNode[B](&TransformNode{
		Inner: inner.Node(),
		Into: func(v any) (any, error) {
			out, err := into(v.(A))
			if err != nil {
				return nil, err
			}
			return out, nil
		},
		From: func(v any) (any, error) {
			in, err := from(v.(B))
			if err != nil {
				return nil, err
			}
			return in, nil
		},
	})
}

// Lazy defers schema construction until first use, which is how a
// schema refers to itself. The thunk runs at most once, even under
// concurrent first use.
func Lazy[T any](thunk func() Schema[T]) Schema[T] {
	return fromNode[T](Defer(func() Node { return thunk().Node() }))
}

// Fail rejects every decoded value with the given message. Encoding
// degrades to Null so derived encoders stay total.
func Fail[T any](message string) Schema[T] {
	return fromNode[T](&FailNode{Message: message})
}

// Meta is the schema of schemas: it encodes and decodes schema nodes
// themselves, using the serialized AST as the wire form.
func Meta() Schema[Node] {
	return fromNode[Node](&MetaNode{})
}
