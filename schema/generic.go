package schema

import "fmt"

// The Generic constructors build nodes over the untyped value
// vocabulary: optionals hold nil or the element, tuples hold
// Pair[any, any], sequences []any, maps []MapEntry, eithers
// Either[any, any], records map[string]any and enums Tagged. They serve
// schemas materialized from a serialized AST and callers assembling
// schemas at runtime.

// GenericOptional builds an optional node over the untyped vocabulary.
func GenericOptional(elem Node) *OptionalNode {
	return &OptionalNode{
		Elem:   elem,
		None:   func() any { return nil },
		IsNone: func(v any) bool { return v == nil },
		Wrap:   func(e any) any { return e },
		Unwrap: func(v any) any { return v },
	}
}

// GenericTuple builds a tuple node over Pair[any, any].
func GenericTuple(left, right Node) *TupleNode {
	return &TupleNode{
		Left:   left,
		Right:  right,
		First:  func(v any) any { return v.(Pair[any, any]).First },
		Second: func(v any) any { return v.(Pair[any, any]).Second },
		Make:   func(a, b any) any { return Pair[any, any]{First: a, Second: b} },
	}
}

// GenericSequence builds a sequence node over []any.
func GenericSequence(elem Node) *SequenceNode {
	return &SequenceNode{
		Elem: elem,
		Iterate: func(v any, yield func(any)) {
			for _, e := range v.([]any) {
				yield(e)
			}
		},
		Build: func(elems []any) any { return elems },
	}
}

// GenericMap builds a map node over []MapEntry. An ordered entry list
// rather than a Go map keeps the vocabulary usable for key schemas whose
// values Go cannot hash.
func GenericMap(key, value Node) *MapNode {
	return &MapNode{
		Key:   key,
		Value: value,
		Iterate: func(v any, yield func(k, val any)) {
			for _, e := range v.([]MapEntry) {
				yield(e.Key, e.Value)
			}
		},
		Build: func(entries []MapEntry) any { return entries },
	}
}

// GenericEither builds an either node over Either[any, any].
func GenericEither(left, right Node) *EitherNode {
	return &EitherNode{
		Left:  left,
		Right: right,
		Deconstruct: func(v any) (any, bool) {
			e := v.(Either[any, any])
			if r, ok := e.Right(); ok {
				return r, true
			}
			l, _ := e.Left()
			return l, false
		},
		MakeLeft:  func(p any) any { return Left[any, any](p) },
		MakeRight: func(p any) any { return Right[any, any](p) },
	}
}

// GenericField names one field for GenericRecord.
type GenericField struct {
	Name   string
	Schema Node
}

// GenericRecord builds a record node over map[string]any. Field name
// collisions panic, as in Record.
func GenericRecord(fields ...GenericField) *RecordNode {
	seen := make(map[string]bool, len(fields))
	rf := make([]RecordField, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			panic("schema: record field requires a name")
		}
		if f.Schema == nil {
			panic(fmt.Sprintf("schema: field %q has no schema", f.Name))
		}
		if seen[f.Name] {
			panic(fmt.Sprintf("schema: duplicate field %q in record", f.Name))
		}
		seen[f.Name] = true
		name := f.Name
		rf[i] = RecordField{
			Name:   name,
			Schema: f.Schema,
			Get:    func(r any) any { return r.(map[string]any)[name] },
			Set:    func(b, v any) { b.(map[string]any)[name] = v },
		}
	}
	return &RecordNode{
		Fields: rf,
		New:    func() any { return map[string]any{} },
		Finish: func(b any) any { return b },
	}
}

// GenericCase names one variant for GenericEnum.
type GenericCase struct {
	ID     string
	Const  string
	Schema Node
}

// GenericEnum builds an enum node over Tagged values. An empty
// discriminator selects the wrapper strategy.
func GenericEnum(discriminator string, cases ...GenericCase) *EnumNode {
	if len(cases) == 0 {
		panic("schema: enum requires at least one case")
	}
	ids := make(map[string]bool, len(cases))
	tags := make(map[string]bool, len(cases))
	ec := make([]EnumCase, len(cases))
	for i, c := range cases {
		if c.ID == "" {
			panic("schema: enum case requires an id")
		}
		if c.Schema == nil {
			panic(fmt.Sprintf("schema: case %q has no schema", c.ID))
		}
		if ids[c.ID] {
			panic(fmt.Sprintf("schema: duplicate case id %q in enum", c.ID))
		}
		ids[c.ID] = true
		id := c.ID
		ec[i] = EnumCase{
			ID:     id,
			Const:  c.Const,
			Schema: c.Schema,
			Deconstruct: func(v any) (any, bool) {
				t := v.(Tagged)
				if t.Case != id {
					return nil, false
				}
				return t.Value, true
			},
			Construct: func(p any) any { return Tagged{Case: id, Value: p} },
		}
		if tag := ec[i].Tag(); tags[tag] {
			panic(fmt.Sprintf("schema: duplicate wire tag %q in enum", tag))
		} else {
			tags[tag] = true
		}
	}
	return &EnumNode{Cases: ec, Discriminator: discriminator}
}
