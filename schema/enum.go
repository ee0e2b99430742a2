package schema

import "fmt"

// CaseSpec describes one variant of an enum schema under construction.
// Build specs with Case, CaseObject or CaseValue and hand them to Enum
// or TaggedEnum.
type CaseSpec[E any] struct {
	id       string
	constTag string
	node     Node
	dec      func(E) (any, bool)
	con      func(any) E
}

// Case binds a variant identifier to its payload schema. deconstruct
// reports whether a sum value belongs to this case and extracts the
// payload; construct rebuilds the sum value from a decoded payload.
func Case[E, V any](id string, s Schema[V], deconstruct func(E) (V, bool), construct func(V) E) CaseSpec[E] {
	return CaseSpec[E]{
		id:   id,
		node: s.Node(),
		dec: func(v E) (any, bool) {
			p, ok := deconstruct(v)
			if !ok {
				return nil, false
			}
			return p, true
		},
		con: func(p any) E { return construct(p.(V)) },
	}
}

// Const overrides the identifier this case uses on the wire while
// keeping the declared id for the serialized schema form. Matching honors
// the override in both directions.
func (c CaseSpec[E]) Const(tag string) CaseSpec[E] {
	c.constTag = tag
	return c
}

// CaseObject declares a data-less variant represented by a fixed value.
// is reports whether a sum value is that variant.
func CaseObject[E any](id string, value E, is func(E) bool) CaseSpec[E] {
	return Case[E, struct{}](id, Unit(),
		func(v E) (struct{}, bool) { return struct{}{}, is(v) },
		func(struct{}) E { return value })
}

// CaseValue is CaseObject for comparable sum types, matching by
// equality with the fixed value.
func CaseValue[E comparable](id string, value E) CaseSpec[E] {
	return CaseObject(id, value, func(v E) bool { return v == value })
}

// Enum maps a sum type onto the wrapper form: a single-entry map keyed
// by the case tag. Enum panics on duplicate case ids or wire tags, since
// an ambiguous variant table is a construction bug.
func Enum[E any](cases ...CaseSpec[E]) Schema[E] {
	return fromNode[E](buildEnum("", cases))
}

// TaggedEnum maps a sum type onto the discriminator form: the case tag
// is injected into the encoded map under the given key. When every case
// is data-less the wire form collapses to the bare tag string.
func TaggedEnum[E any](discriminator string, cases ...CaseSpec[E]) Schema[E] {
	if discriminator == "" {
		panic("schema: TaggedEnum requires a discriminator key")
	}
	return fromNode[E](buildEnum(discriminator, cases))
}

func buildEnum[E any](discriminator string, cases []CaseSpec[E]) *EnumNode {
	if len(cases) == 0 {
		panic("schema: enum requires at least one case")
	}
	ids := make(map[string]bool, len(cases))
	tags := make(map[string]bool, len(cases))
	ec := make([]EnumCase, len(cases))
	for i, c := range cases {
		if c.id == "" {
			panic("schema: enum case requires an id")
		}
		if ids[c.id] {
			panic(fmt.Sprintf("schema: duplicate case id %q in enum", c.id))
		}
		ids[c.id] = true
		dec, con := c.dec, c.con
		ec[i] = EnumCase{
			ID:     c.id,
			Const:  c.constTag,
			Schema: c.node,
			Deconstruct: func(v any) (any, bool) {
				return dec(v.(E))
			},
			Construct: func(p any) any { return con(p) },
		}
		if tag := ec[i].Tag(); tags[tag] {
			panic(fmt.Sprintf("schema: duplicate wire tag %q in enum", tag))
		} else {
			tags[tag] = true
		}
	}
	return &EnumNode{Cases: ec, Discriminator: discriminator}
}
