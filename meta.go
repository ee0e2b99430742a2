package attrcodec

import (
	"fmt"
	"time"

	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// The serialized schema form is itself a wire value: a map tagged by a
// "kind" entry, one per node variant. Transforms serialize as their
// inner schema, since the conversion closures have no wire form. Lazy
// nodes are numbered on first visit and re-occurrences become
// {"kind":"ref"} back-edges, which is what lets a recursive schema
// round-trip. A materialized schema speaks the generic value vocabulary
// documented in package schema.

// encodeSchema serializes a node tree, threading lazy ids through a
// single walk so shared nodes keep one id.
func encodeSchema(n schema.Node) wire.Value {
	e := &schemaEncoder{ids: map[*schema.LazyNode]int64{}}
	return e.encode(n)
}

type schemaEncoder struct {
	ids  map[*schema.LazyNode]int64
	next int64
}

func (e *schemaEncoder) encode(n schema.Node) wire.Value {
	switch t := n.(type) {
	case *schema.PrimitiveNode:
		m := map[string]wire.Value{
			"kind": wire.Str("primitive"),
			"of":   wire.Str(t.Type.String()),
		}
		if t.Type == schema.PrimTime {
			m["layout"] = wire.Str(t.Layout)
			if t.UTC {
				m["utc"] = wire.Bool(true)
			}
		}
		return wire.Map(m)
	case *schema.OptionalNode:
		return wire.Map(map[string]wire.Value{
			"kind": wire.Str("optional"),
			"of":   e.encode(t.Elem),
		})
	case *schema.TupleNode:
		return wire.Map(map[string]wire.Value{
			"kind":  wire.Str("tuple"),
			"left":  e.encode(t.Left),
			"right": e.encode(t.Right),
		})
	case *schema.SequenceNode:
		return wire.Map(map[string]wire.Value{
			"kind": wire.Str("sequence"),
			"of":   e.encode(t.Elem),
		})
	case *schema.MapNode:
		return wire.Map(map[string]wire.Value{
			"kind":  wire.Str("map"),
			"key":   e.encode(t.Key),
			"value": e.encode(t.Value),
		})
	case *schema.EitherNode:
		return wire.Map(map[string]wire.Value{
			"kind":  wire.Str("either"),
			"left":  e.encode(t.Left),
			"right": e.encode(t.Right),
		})
	case *schema.RecordNode:
		fields := make([]wire.Value, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = wire.Map(map[string]wire.Value{
				"name":   wire.Str(f.Name),
				"schema": e.encode(f.Schema),
			})
		}
		return wire.Map(map[string]wire.Value{
			"kind":   wire.Str("record"),
			"fields": wire.List(fields...),
		})
	case *schema.EnumNode:
		cases := make([]wire.Value, len(t.Cases))
		for i, c := range t.Cases {
			cm := map[string]wire.Value{
				"id":     wire.Str(c.ID),
				"schema": e.encode(c.Schema),
			}
			if c.Const != "" {
				cm["const"] = wire.Str(c.Const)
			}
			cases[i] = wire.Map(cm)
		}
		m := map[string]wire.Value{
			"kind":  wire.Str("enum"),
			"cases": wire.List(cases...),
		}
		if t.Discriminator != "" {
			m["discriminator"] = wire.Str(t.Discriminator)
		}
		return wire.Map(m)
	case *schema.TransformNode:
		return e.encode(t.Inner)
	case *schema.LazyNode:
		if id, ok := e.ids[t]; ok {
			return wire.Map(map[string]wire.Value{
				"kind": wire.Str("ref"),
				"id":   wire.Int(id),
			})
		}
		id := e.next
		e.next++
		e.ids[t] = id
		return wire.Map(map[string]wire.Value{
			"kind": wire.Str("lazy"),
			"id":   wire.Int(id),
			"of":   e.encode(t.Force()),
		})
	case *schema.FailNode:
		return wire.Map(map[string]wire.Value{
			"kind":    wire.Str("fail"),
			"message": wire.Str(t.Message),
		})
	case *schema.MetaNode:
		return wire.Map(map[string]wire.Value{"kind": wire.Str("meta")})
	default:
		panic(fmt.Sprintf("attrcodec: unsupported schema node %T", n))
	}
}

// decodeSchema materializes a node tree from its serialized form.
func decodeSchema(v wire.Value) (schema.Node, error) {
	d := &schemaDecoder{refs: map[int64]*schema.LazyNode{}}
	return d.decode(v)
}

type schemaDecoder struct {
	refs map[int64]*schema.LazyNode
}

func (d *schemaDecoder) decode(v wire.Value) (schema.Node, error) {
	m, err := v.AsMap()
	if err != nil {
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected map, got %s", v.Kind()))
	}
	kind, err := d.str(m, "kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "primitive":
		name, err := d.str(m, "of")
		if err != nil {
			return nil, err
		}
		pt, ok := schema.PrimitiveTypeByName(name)
		if !ok {
			return nil, issueAt("/of", CodeInvalidEnum, fmt.Sprintf("unknown primitive %q", name))
		}
		node := &schema.PrimitiveNode{Type: pt}
		if pt == schema.PrimTime {
			if layoutV, ok := m["layout"]; ok {
				layout, err := layoutV.AsStr()
				if err != nil {
					return nil, issueAt("/layout", CodeInvalidType, fmt.Sprintf("expected string, got %s", layoutV.Kind()))
				}
				node.Layout = layout
			} else {
				node.Layout = time.RFC3339Nano
				node.UTC = true
			}
			if utcV, ok := m["utc"]; ok {
				utc, err := utcV.AsBool()
				if err != nil {
					return nil, issueAt("/utc", CodeInvalidType, fmt.Sprintf("expected bool, got %s", utcV.Kind()))
				}
				node.UTC = utc
			}
		}
		return node, nil

	case "optional":
		of, err := d.child(m, "of")
		if err != nil {
			return nil, err
		}
		return schema.GenericOptional(of), nil

	case "tuple":
		left, err := d.child(m, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.child(m, "right")
		if err != nil {
			return nil, err
		}
		return schema.GenericTuple(left, right), nil

	case "sequence":
		of, err := d.child(m, "of")
		if err != nil {
			return nil, err
		}
		return schema.GenericSequence(of), nil

	case "map":
		key, err := d.child(m, "key")
		if err != nil {
			return nil, err
		}
		value, err := d.child(m, "value")
		if err != nil {
			return nil, err
		}
		return schema.GenericMap(key, value), nil

	case "either":
		left, err := d.child(m, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.child(m, "right")
		if err != nil {
			return nil, err
		}
		return schema.GenericEither(left, right), nil

	case "record":
		fieldsV, ok := m["fields"]
		if !ok {
			return nil, issueAt("/fields", CodeRequired, "")
		}
		items, err := fieldsV.AsList()
		if err != nil {
			return nil, issueAt("/fields", CodeInvalidType, fmt.Sprintf("expected list, got %s", fieldsV.Kind()))
		}
		fields := make([]schema.GenericField, len(items))
		seen := make(map[string]bool, len(items))
		for i, it := range items {
			pos := fmt.Sprintf("/fields/%d", i)
			fm, err := it.AsMap()
			if err != nil {
				return nil, issueAt(pos, CodeInvalidType, fmt.Sprintf("expected map, got %s", it.Kind()))
			}
			name, err := d.str(fm, "name")
			if err != nil {
				return nil, rebaseErr(pos, err)
			}
			if seen[name] {
				return nil, issueAt(pos+"/name", CodeInvalidFormat, fmt.Sprintf("duplicate field %q", name))
			}
			seen[name] = true
			fs, err := d.child(fm, "schema")
			if err != nil {
				return nil, rebaseErr(pos, err)
			}
			fields[i] = schema.GenericField{Name: name, Schema: fs}
		}
		return schema.GenericRecord(fields...), nil

	case "enum":
		casesV, ok := m["cases"]
		if !ok {
			return nil, issueAt("/cases", CodeRequired, "")
		}
		items, err := casesV.AsList()
		if err != nil {
			return nil, issueAt("/cases", CodeInvalidType, fmt.Sprintf("expected list, got %s", casesV.Kind()))
		}
		if len(items) == 0 {
			return nil, issueAt("/cases", CodeInvalidFormat, "expected at least one case")
		}
		discriminator := ""
		if discV, ok := m["discriminator"]; ok {
			discriminator, err = discV.AsStr()
			if err != nil {
				return nil, issueAt("/discriminator", CodeInvalidType, fmt.Sprintf("expected string, got %s", discV.Kind()))
			}
		}
		cases := make([]schema.GenericCase, len(items))
		ids := make(map[string]bool, len(items))
		tags := make(map[string]bool, len(items))
		for i, it := range items {
			pos := fmt.Sprintf("/cases/%d", i)
			cm, err := it.AsMap()
			if err != nil {
				return nil, issueAt(pos, CodeInvalidType, fmt.Sprintf("expected map, got %s", it.Kind()))
			}
			id, err := d.str(cm, "id")
			if err != nil {
				return nil, rebaseErr(pos, err)
			}
			if ids[id] {
				return nil, issueAt(pos+"/id", CodeInvalidFormat, fmt.Sprintf("duplicate case id %q", id))
			}
			ids[id] = true
			constTag := ""
			if constV, ok := cm["const"]; ok {
				constTag, err = constV.AsStr()
				if err != nil {
					return nil, issueAt(pos+"/const", CodeInvalidType, fmt.Sprintf("expected string, got %s", constV.Kind()))
				}
			}
			tag := id
			if constTag != "" {
				tag = constTag
			}
			if tags[tag] {
				return nil, issueAt(pos, CodeInvalidFormat, fmt.Sprintf("duplicate wire tag %q", tag))
			}
			tags[tag] = true
			cs, err := d.child(cm, "schema")
			if err != nil {
				return nil, rebaseErr(pos, err)
			}
			cases[i] = schema.GenericCase{ID: id, Const: constTag, Schema: cs}
		}
		return schema.GenericEnum(discriminator, cases...), nil

	case "lazy":
		id, err := d.id(m)
		if err != nil {
			return nil, err
		}
		if _, exists := d.refs[id]; exists {
			return nil, issueAt("/id", CodeInvalidFormat, fmt.Sprintf("duplicate lazy id %d", id))
		}
		slot := new(schema.Node)
		lazy := schema.Defer(func() schema.Node { return *slot })
		d.refs[id] = lazy
		body, err := d.child(m, "of")
		if err != nil {
			return nil, err
		}
		*slot = body
		return lazy, nil

	case "ref":
		id, err := d.id(m)
		if err != nil {
			return nil, err
		}
		lazy, ok := d.refs[id]
		if !ok {
			return nil, issueAt("/id", CodeInvalidFormat, fmt.Sprintf("unresolved schema ref %d", id))
		}
		return lazy, nil

	case "fail":
		msg, err := d.str(m, "message")
		if err != nil {
			return nil, err
		}
		return &schema.FailNode{Message: msg}, nil

	case "meta":
		return &schema.MetaNode{}, nil

	default:
		return nil, issueAt("/kind", CodeInvalidEnum, fmt.Sprintf("unknown schema kind %q", kind))
	}
}

func (d *schemaDecoder) str(m map[string]wire.Value, key string) (string, error) {
	e, ok := m[key]
	if !ok {
		return "", issueAt("/"+key, CodeRequired, "")
	}
	s, err := e.AsStr()
	if err != nil {
		return "", issueAt("/"+key, CodeInvalidType, fmt.Sprintf("expected string, got %s", e.Kind()))
	}
	return s, nil
}

func (d *schemaDecoder) child(m map[string]wire.Value, key string) (schema.Node, error) {
	e, ok := m[key]
	if !ok {
		return nil, issueAt("/"+key, CodeRequired, "")
	}
	n, err := d.decode(e)
	if err != nil {
		return nil, rebaseErr("/"+key, err)
	}
	return n, nil
}

func (d *schemaDecoder) id(m map[string]wire.Value) (int64, error) {
	e, ok := m["id"]
	if !ok {
		return 0, issueAt("/id", CodeRequired, "")
	}
	n, err := e.AsNum()
	if err != nil {
		return 0, issueAt("/id", CodeInvalidType, fmt.Sprintf("expected number, got %s", e.Kind()))
	}
	id, err := n.Int64()
	if err != nil {
		return 0, issueAt("/id", CodeInvalidFormat, fmt.Sprintf("bad id %q", n))
	}
	return id, nil
}

// MetaEncode renders a schema node as a wire value, the same mapping
// the meta schema's codec applies. Every node kind serializes; the
// value round-trips through MetaDecode up to transform and collection
// identity.
func MetaEncode(n schema.Node) wire.Value {
	return encodeSchema(n)
}

// MetaDecode materializes a schema node from its wire form.
func MetaDecode(v wire.Value) (schema.Node, error) {
	return decodeSchema(v)
}

// FormatSchema serializes a schema node into its tagged JSON form.
func FormatSchema(n schema.Node) ([]byte, error) {
	return wire.ToJSON(MetaEncode(n))
}

// FormatSchemaYAML serializes a schema node as plain YAML, the form the
// schema documents under version control use.
func FormatSchemaYAML(n schema.Node) ([]byte, error) {
	return wire.ToYAML(MetaEncode(n))
}

// ParseSchema materializes a schema from its tagged JSON form. The
// resulting node derives an AnyCodec speaking the generic vocabulary.
func ParseSchema(data []byte) (schema.Node, error) {
	v, err := wire.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return MetaDecode(v)
}

// ParseSchemaYAML materializes a schema from a plain YAML document.
func ParseSchemaYAML(data []byte) (schema.Node, error) {
	v, err := wire.FromYAML(data)
	if err != nil {
		return nil, err
	}
	return MetaDecode(v)
}
