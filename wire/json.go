package wire

import (
	"bytes"
	"encoding/base64"
	"fmt"

	json "github.com/goccy/go-json"
)

// The JSON bridge speaks the store's tagged item form: every value is a
// single-key object whose key names the kind, e.g. {"S":"id-1"},
// {"N":"2.5"}, {"B":"aGk="}, {"BOOL":true}, {"NULL":true},
// {"L":[...]}, {"M":{"k":...}}. Numbers stay textual so precision never
// leaks into a float; binary travels as standard base64.

// ToJSON serializes a value into its tagged JSON form.
func ToJSON(v Value) ([]byte, error) {
	t, err := toTagged(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(t)
}

// FromJSON parses a tagged JSON document back into a value.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("wire: invalid JSON: %w", err)
	}
	return fromTagged(raw)
}

// MarshalJSON implements json.Marshaler using the tagged form.
func (v Value) MarshalJSON() ([]byte, error) { return ToJSON(v) }

// UnmarshalJSON implements json.Unmarshaler using the tagged form.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// toTagged converts a value into the generic single-key tagged tree both
// serialization bridges share. Numbers are validated here so a malformed
// Number surfaces as an error on either bridge rather than as corrupt
// output.
func toTagged(v Value) (any, error) {
	switch v.kind {
	case KindNull:
		return map[string]any{"NULL": true}, nil
	case KindBool:
		return map[string]any{"BOOL": v.b}, nil
	case KindNumber:
		if err := v.num.Check(); err != nil {
			return nil, err
		}
		return map[string]any{"N": string(v.num)}, nil
	case KindString:
		return map[string]any{"S": v.str}, nil
	case KindBinary:
		return map[string]any{"B": v.bin}, nil
	case KindList:
		items := make([]any, len(v.list))
		for i, it := range v.list {
			t, err := toTagged(it)
			if err != nil {
				return nil, err
			}
			items[i] = t
		}
		return map[string]any{"L": items}, nil
	case KindMap:
		entries := make(map[string]any, len(v.m))
		for k, e := range v.m {
			t, err := toTagged(e)
			if err != nil {
				return nil, err
			}
			entries[k] = t
		}
		return map[string]any{"M": entries}, nil
	default:
		return nil, fmt.Errorf("wire: unknown kind %d", v.kind)
	}
}

// fromTagged rebuilds a value from a decoded tagged tree. It accepts the
// shapes both bridges produce plus a little leniency: the N payload may
// be quoted decimal text (canonical) or a bare JSON number (delivered as
// json.Number under UseNumber); binary arrives as base64 text from JSON
// or []byte from CBOR.
func fromTagged(raw any) (Value, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return Value{}, fmt.Errorf("wire: expected a single-key tagged object, got %T", raw)
	}
	var tag string
	var payload any
	for k, p := range m {
		tag, payload = k, p
	}
	switch tag {
	case "NULL":
		if _, ok := payload.(bool); !ok {
			return Value{}, fmt.Errorf("wire: NULL payload must be a bool, got %T", payload)
		}
		return Null(), nil
	case "BOOL":
		b, ok := payload.(bool)
		if !ok {
			return Value{}, fmt.Errorf("wire: BOOL payload must be a bool, got %T", payload)
		}
		return Bool(b), nil
	case "N":
		var text string
		switch p := payload.(type) {
		case json.Number:
			text = string(p)
		case string:
			text = p
		default:
			return Value{}, fmt.Errorf("wire: N payload must be number text, got %T", payload)
		}
		n := Number(text)
		if err := n.Check(); err != nil {
			return Value{}, err
		}
		return Num(n), nil
	case "S":
		s, ok := payload.(string)
		if !ok {
			return Value{}, fmt.Errorf("wire: S payload must be a string, got %T", payload)
		}
		return Str(s), nil
	case "B":
		switch p := payload.(type) {
		case []byte:
			return Bin(p), nil
		case string:
			b, err := base64.StdEncoding.DecodeString(p)
			if err != nil {
				return Value{}, fmt.Errorf("wire: B payload is not base64: %w", err)
			}
			return Bin(b), nil
		default:
			return Value{}, fmt.Errorf("wire: B payload must be bytes or base64 text, got %T", payload)
		}
	case "L":
		items, ok := payload.([]any)
		if !ok {
			return Value{}, fmt.Errorf("wire: L payload must be an array, got %T", payload)
		}
		list := make([]Value, len(items))
		for i, it := range items {
			v, err := fromTagged(it)
			if err != nil {
				return Value{}, err
			}
			list[i] = v
		}
		return List(list...), nil
	case "M":
		entries, ok := payload.(map[string]any)
		if !ok {
			return Value{}, fmt.Errorf("wire: M payload must be an object, got %T", payload)
		}
		out := make(map[string]Value, len(entries))
		for k, e := range entries {
			v, err := fromTagged(e)
			if err != nil {
				return Value{}, err
			}
			out[k] = v
		}
		return Map(out), nil
	default:
		return Value{}, fmt.Errorf("wire: unknown tag %q", tag)
	}
}
