package attrcodec

import (
	"fmt"

	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// Enums compile per strategy. The wrapper strategy nests the payload
// under a single-entry map keyed by the case tag. The discriminator
// strategy injects the tag into the payload map itself, collapsing to a
// bare tag string when every case is data-less.

func enumEncoder(t *schema.EnumNode) encodeFunc {
	type caseEnc struct {
		tag   string
		decon func(any) (any, bool)
		enc   encodeFunc
	}
	cases := make([]caseEnc, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = caseEnc{tag: c.Tag(), decon: c.Deconstruct, enc: compileEncoder(c.Schema)}
	}

	if t.Discriminator == "" {
		return func(v any) (wire.Value, error) {
			for _, c := range cases {
				p, ok := c.decon(v)
				if !ok {
					continue
				}
				av, err := c.enc(p)
				if err != nil {
					return wire.Value{}, rebaseErr("/"+c.tag, err)
				}
				return wire.Map(map[string]wire.Value{c.tag: av}), nil
			}
			// No case claimed the value: encode Null rather than invent a
			// variant.
			return wire.Null(), nil
		}
	}

	disc := t.Discriminator
	dataless := allDataless(t)
	return func(v any) (wire.Value, error) {
		for _, c := range cases {
			p, ok := c.decon(v)
			if !ok {
				continue
			}
			av, err := c.enc(p)
			if err != nil {
				return wire.Value{}, err
			}
			switch av.Kind() {
			case wire.KindMap:
				m, _ := av.AsMap()
				m[disc] = wire.Str(c.tag)
				return av, nil
			case wire.KindNull:
				if dataless {
					return wire.Str(c.tag), nil
				}
				return wire.Map(map[string]wire.Value{disc: wire.Str(c.tag)}), nil
			default:
				panic(fmt.Sprintf("attrcodec: discriminator case %q encoded to %s; a discriminator enum requires map or null payloads", c.tag, av.Kind()))
			}
		}
		return wire.Null(), nil
	}
}

func enumDecoder(t *schema.EnumNode) decodeFunc {
	type caseDec struct {
		tag  string
		unit bool
		con  func(any) any
		dec  decodeFunc
	}
	cases := make([]caseDec, len(t.Cases))
	byTag := make(map[string]int, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = caseDec{tag: c.Tag(), unit: isUnit(c.Schema), con: c.Construct, dec: compileDecoder(c.Schema)}
		byTag[c.Tag()] = i
	}

	if t.Discriminator == "" {
		return func(v wire.Value) (any, error) {
			m, err := v.AsMap()
			if err != nil {
				return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected single-entry map, got %s", v.Kind()))
			}
			if len(m) == 0 {
				return nil, issueAt("/", CodeInvalidFormat, "expected a variant entry, got an empty map")
			}
			var tag string
			var payload wire.Value
			if len(m) == 1 {
				for k, e := range m {
					tag, payload = k, e
				}
			} else {
				// Several entries: honor the first declared case whose tag
				// is present.
				found := false
				for _, c := range cases {
					if e, ok := m[c.tag]; ok {
						tag, payload, found = c.tag, e, true
						break
					}
				}
				if !found {
					return nil, issueAt("/", CodeInvalidEnum, "no known variant key present")
				}
			}
			idx, ok := byTag[tag]
			if !ok {
				return nil, issueAt("/", CodeInvalidEnum, fmt.Sprintf("unknown variant %q", tag))
			}
			out, err := cases[idx].dec(payload)
			if err != nil {
				return nil, rebaseErr("/"+tag, err)
			}
			return cases[idx].con(out), nil
		}
	}

	disc := t.Discriminator
	dataless := allDataless(t)
	return func(v wire.Value) (any, error) {
		switch v.Kind() {
		case wire.KindString:
			if !dataless {
				return nil, issueAt("/", CodeInvalidType, "bare variant tag is only valid when every case is data-less")
			}
			s, _ := v.AsStr()
			idx, ok := byTag[s]
			if !ok {
				return nil, issueAt("/", CodeDiscriminatorUnknown, fmt.Sprintf("unknown variant %q", s))
			}
			out, err := cases[idx].dec(wire.Null())
			if err != nil {
				return nil, err
			}
			return cases[idx].con(out), nil
		case wire.KindMap:
			m, _ := v.AsMap()
			tagv, ok := m[disc]
			if !ok {
				return nil, issueAt("/"+disc, CodeDiscriminatorMissing, "")
			}
			s, err := tagv.AsStr()
			if err != nil {
				return nil, issueAt("/"+disc, CodeInvalidType, fmt.Sprintf("expected string, got %s", tagv.Kind()))
			}
			idx, ok := byTag[s]
			if !ok {
				return nil, issueAt("/"+disc, CodeDiscriminatorUnknown, fmt.Sprintf("unknown variant %q", s))
			}
			payload := v
			if cases[idx].unit {
				payload = wire.Null()
			}
			out, err := cases[idx].dec(payload)
			if err != nil {
				return nil, err
			}
			return cases[idx].con(out), nil
		default:
			return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected map, got %s", v.Kind()))
		}
	}
}

// allDataless reports whether every case payload is the unit primitive,
// which is what permits the bare-string discriminator form.
func allDataless(t *schema.EnumNode) bool {
	for _, c := range t.Cases {
		if !isUnit(c.Schema) {
			return false
		}
	}
	return true
}

func isUnit(n schema.Node) bool {
	p, ok := schema.Unlazy(n).(*schema.PrimitiveNode)
	return ok && p.Type == schema.PrimUnit
}
