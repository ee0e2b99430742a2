package schema

import "fmt"

// FieldSpec describes one field of a record schema under construction.
// Build specs with Field and hand them to Record.
type FieldSpec[S any] struct {
	name string
	node Node
	get  func(S) any
	set  func(*S, any)
}

// Field binds a named field to its schema and a getter/setter pair. The
// getter projects the field out of a record for encoding; the setter
// writes a decoded value into the record builder.
func Field[S, F any](name string, s Schema[F], get func(S) F, set func(*S, F)) FieldSpec[S] {
	return FieldSpec[S]{
		name: name,
		node: s.Node(),
		get:  func(r S) any { return get(r) },
		set:  func(b *S, v any) { set(b, v.(F)) },
	}
}

// Record maps a struct onto a wire map keyed by field name. Every field
// is required: decoding fails on the first absent or invalid field.
// Record panics when two fields share a name or a field is missing its
// schema, since that is a construction bug rather than input failure.
func Record[S any](fields ...FieldSpec[S]) Schema[S] {
	seen := make(map[string]bool, len(fields))
	rf := make([]RecordField, len(fields))
	for i, f := range fields {
		if f.name == "" {
			panic("schema: record field requires a name")
		}
		if f.node == nil {
			panic(fmt.Sprintf("schema: field %q has no schema", f.name))
		}
		if seen[f.name] {
			panic(fmt.Sprintf("schema: duplicate field %q in record", f.name))
		}
		seen[f.name] = true
		get, set := f.get, f.set
		rf[i] = RecordField{
			Name:   f.name,
			Schema: f.node,
			Get:    func(r any) any { return get(r.(S)) },
			Set:    func(b any, v any) { set(b.(*S), v) },
		}
	}
	return fromNode[S](&RecordNode{
		Fields: rf,
		New:    func() any { return new(S) },
		Finish: func(b any) any { return *(b.(*S)) },
	})
}
