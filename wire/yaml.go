package wire

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// The YAML bridge is the loose one, meant for fixtures and schema
// documents rather than canonical storage: plain YAML scalars map onto
// kinds directly instead of going through the tagged form. Numbers pass
// through YAML's scalar model, so a value that must keep exact decimal
// text should travel over the JSON or CBOR bridge instead.

// FromYAML parses a plain YAML document into a value. Mappings must be
// string-keyed; timestamps become canonical RFC 3339 strings.
func FromYAML(data []byte) (Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("wire: invalid YAML: %w", err)
	}
	return fromLoose(raw)
}

// ToYAML serializes a value as plain YAML. Integral numbers render as
// ints, other finite decimals as floats, and anything else as the raw
// number text.
func ToYAML(v Value) ([]byte, error) {
	t, err := toLoose(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(t)
}

func fromLoose(raw any) (Value, error) {
	switch r := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(r), nil
	case int:
		return Int(int64(r)), nil
	case int64:
		return Int(r), nil
	case uint64:
		return Uint(r), nil
	case float64:
		return Float(r), nil
	case string:
		return Str(r), nil
	case []byte:
		return Bin(r), nil
	case time.Time:
		return Str(r.UTC().Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Value, len(r))
		for i, it := range r {
			v, err := fromLoose(it)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]any:
		entries := make(map[string]Value, len(r))
		for k, e := range r {
			v, err := fromLoose(e)
			if err != nil {
				return Value{}, err
			}
			entries[k] = v
		}
		return Map(entries), nil
	case map[any]any:
		return Value{}, fmt.Errorf("wire: YAML mapping keys must be strings")
	default:
		return Value{}, fmt.Errorf("wire: unsupported YAML node type %T", raw)
	}
}

func toLoose(v Value) (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindNumber:
		if i, err := v.num.Int64(); err == nil {
			return i, nil
		}
		if f, err := v.num.Float64(); err == nil {
			return f, nil
		}
		return string(v.num), nil
	case KindString:
		return v.str, nil
	case KindBinary:
		return v.bin, nil
	case KindList:
		items := make([]any, len(v.list))
		for i, it := range v.list {
			t, err := toLoose(it)
			if err != nil {
				return nil, err
			}
			items[i] = t
		}
		return items, nil
	case KindMap:
		entries := make(map[string]any, len(v.m))
		for k, e := range v.m {
			t, err := toLoose(e)
			if err != nil {
				return nil, err
			}
			entries[k] = t
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("wire: unknown kind %d", v.kind)
	}
}
