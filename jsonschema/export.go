// Package jsonschema renders the tagged JSON grammar of a schema as a
// JSON Schema document, for consumption by external validators and
// editors. The exported document describes exactly the bytes
// wire.ToJSON produces for encoded values; decoders accept a few
// lenient forms on top of that (extra record entries, the map form of a
// data-less discriminator enum) which the document does not admit.
// Fail is the one decode-oriented export: it matches nothing, while its
// encoder degrades to Null.
package jsonschema

import (
	"fmt"
	"time"

	"github.com/attrkit/attrcodec/schema"
)

// FromNode folds a schema node tree into a JSON Schema document. Lazy
// nodes become entries under $defs referenced by $ref, so recursive
// schemas export as finite documents.
func FromNode(n schema.Node) *Schema {
	e := &exporter{ids: map[*schema.LazyNode]string{}}
	root := e.fold(n)
	if len(e.defs) > 0 {
		root.Defs = e.defs
	}
	return root
}

type exporter struct {
	ids  map[*schema.LazyNode]string
	defs map[string]*Schema
}

func (e *exporter) fold(n schema.Node) *Schema {
	switch t := n.(type) {
	case *schema.PrimitiveNode:
		return primitiveSchema(t)
	case *schema.OptionalNode:
		return &Schema{OneOf: []*Schema{
			tagged("NULL", &Schema{Type: "boolean"}),
			e.fold(t.Elem),
		}}
	case *schema.TupleNode:
		return tagged("L", &Schema{
			Type:        "array",
			PrefixItems: []*Schema{e.fold(t.Left), e.fold(t.Right)},
			MinItems:    intp(2),
			MaxItems:    intp(2),
		})
	case *schema.SequenceNode:
		return tagged("L", &Schema{Type: "array", Items: e.fold(t.Elem)})
	case *schema.MapNode:
		if isStringKey(t.Key) {
			return tagged("M", &Schema{Type: "object", AdditionalProperties: e.fold(t.Value)})
		}
		pair := tagged("L", &Schema{
			Type:        "array",
			PrefixItems: []*Schema{e.fold(t.Key), e.fold(t.Value)},
			MinItems:    intp(2),
			MaxItems:    intp(2),
		})
		return tagged("L", &Schema{Type: "array", Items: pair})
	case *schema.EitherNode:
		return &Schema{OneOf: []*Schema{
			tagged("M", singleProp("Left", e.fold(t.Left))),
			tagged("M", singleProp("Right", e.fold(t.Right))),
		}}
	case *schema.RecordNode:
		props := make(map[string]*Schema, len(t.Fields))
		required := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			props[f.Name] = e.fold(f.Schema)
			required = append(required, f.Name)
		}
		return tagged("M", &Schema{Type: "object", Properties: props, Required: required})
	case *schema.EnumNode:
		return e.enum(t)
	case *schema.TransformNode:
		return e.fold(t.Inner)
	case *schema.LazyNode:
		if name, ok := e.ids[t]; ok {
			return &Schema{Ref: "#/$defs/" + name}
		}
		name := fmt.Sprintf("d%d", len(e.ids))
		e.ids[t] = name
		if e.defs == nil {
			e.defs = map[string]*Schema{}
		}
		e.defs[name] = e.fold(t.Force())
		return &Schema{Ref: "#/$defs/" + name}
	case *schema.FailNode:
		return &Schema{Not: &Schema{}}
	case *schema.MetaNode:
		return tagged("M", &Schema{Type: "object"})
	default:
		panic(fmt.Sprintf("jsonschema: unhandled node kind %s", n.Kind()))
	}
}

func (e *exporter) enum(t *schema.EnumNode) *Schema {
	if t.Discriminator == "" {
		variants := make([]*Schema, len(t.Cases))
		for i, c := range t.Cases {
			variants[i] = tagged("M", singleProp(c.Tag(), e.fold(c.Schema)))
		}
		return &Schema{OneOf: variants}
	}

	if allDataless(t) {
		tags := make([]string, len(t.Cases))
		for i, c := range t.Cases {
			tags[i] = c.Tag()
		}
		return tagged("S", &Schema{Type: "string", Enum: tags})
	}

	disc := t.Discriminator
	variants := make([]*Schema, len(t.Cases))
	for i, c := range t.Cases {
		tagProp := &Schema{Type: "string", Enum: []string{c.Tag()}}
		if isUnit(c.Schema) {
			variants[i] = tagged("M", &Schema{
				Type:       "object",
				Properties: map[string]*Schema{disc: tagProp},
				Required:   []string{disc},
			})
			continue
		}
		// A payload case encodes to a map with the tag injected, so its
		// fold is the M-tagged object of the payload plus the
		// discriminator property.
		folded := e.fold(c.Schema)
		if obj := taggedPayload(folded, "M"); obj != nil && obj.Properties != nil {
			obj.Properties[disc] = tagProp
			obj.Required = append(obj.Required, disc)
			variants[i] = folded
			continue
		}
		variants[i] = tagged("M", &Schema{
			Type:       "object",
			Properties: map[string]*Schema{disc: tagProp},
			Required:   []string{disc},
		})
	}
	return &Schema{OneOf: variants}
}

func primitiveSchema(p *schema.PrimitiveNode) *Schema {
	switch p.Type {
	case schema.PrimBool:
		return tagged("BOOL", &Schema{Type: "boolean"})
	case schema.PrimUnit:
		return tagged("NULL", &Schema{Type: "boolean"})
	case schema.PrimString, schema.PrimChar, schema.PrimLocation:
		return tagged("S", &Schema{Type: "string"})
	case schema.PrimBinary:
		return tagged("B", &Schema{Type: "string", ContentEncoding: "base64"})
	case schema.PrimInt, schema.PrimInt8, schema.PrimInt16, schema.PrimInt32, schema.PrimInt64,
		schema.PrimBigInt:
		return tagged("N", &Schema{Type: "string", Pattern: `^-?\d+$`})
	case schema.PrimUint, schema.PrimUint8, schema.PrimUint16, schema.PrimUint32, schema.PrimUint64:
		return tagged("N", &Schema{Type: "string", Pattern: `^\d+$`})
	case schema.PrimFloat32, schema.PrimFloat64:
		return tagged("N", &Schema{Type: "string", Pattern: `^-?\d+(\.\d+)?$`})
	case schema.PrimNumber:
		return tagged("N", &Schema{Type: "string", Pattern: `^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?$`})
	case schema.PrimDuration:
		return tagged("S", &Schema{Type: "string", Pattern: `^-?(\d+(\.\d+)?(ns|us|µs|ms|s|m|h))+$`})
	case schema.PrimTime:
		s := &Schema{Type: "string"}
		if p.Layout == "" || p.Layout == time.RFC3339Nano || p.Layout == time.RFC3339 {
			s.Format = "date-time"
		}
		return tagged("S", s)
	case schema.PrimWeekday:
		return tagged("S", &Schema{Type: "string", Enum: []string{
			"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
		}})
	case schema.PrimMonth:
		return tagged("S", &Schema{Type: "string", Enum: []string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		}})
	case schema.PrimYear:
		return tagged("S", &Schema{Type: "string", Pattern: `^(-?\d{4}|[+-]\d{5,})$`})
	case schema.PrimZoneOffset:
		return tagged("S", &Schema{Type: "string", Pattern: `^(Z|[+-]\d{2}:\d{2}(:\d{2})?)$`})
	case schema.PrimUUID:
		return tagged("S", &Schema{Type: "string", Format: "uuid"})
	default:
		panic(fmt.Sprintf("jsonschema: unhandled primitive %s", p.Type))
	}
}

// tagged wraps a payload schema in the single-key object form the wire
// JSON bridge emits for the given kind tag.
func tagged(tag string, payload *Schema) *Schema {
	return &Schema{
		Type:                 "object",
		Properties:           map[string]*Schema{tag: payload},
		Required:             []string{tag},
		AdditionalProperties: false,
	}
}

// taggedPayload returns the payload under a tagged wrapper built by
// tagged, or nil when the schema has some other shape.
func taggedPayload(s *Schema, tag string) *Schema {
	if s == nil || s.Type != "object" || len(s.Properties) != 1 {
		return nil
	}
	return s.Properties[tag]
}

func singleProp(name string, s *Schema) *Schema {
	return &Schema{
		Type:       "object",
		Properties: map[string]*Schema{name: s},
		Required:   []string{name},
	}
}

func isStringKey(n schema.Node) bool {
	p, ok := schema.Unlazy(n).(*schema.PrimitiveNode)
	return ok && p.Type == schema.PrimString
}

func isUnit(n schema.Node) bool {
	p, ok := schema.Unlazy(n).(*schema.PrimitiveNode)
	return ok && p.Type == schema.PrimUnit
}

func allDataless(t *schema.EnumNode) bool {
	for _, c := range t.Cases {
		if !isUnit(c.Schema) {
			return false
		}
	}
	return true
}

func intp(i int) *int { return &i }
