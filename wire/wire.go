// Package wire defines the dynamic attribute value exchanged with an
// attribute-value store: a closed tagged union of null, bool, number,
// string, binary, list and map. It is the only vocabulary codecs may
// produce or consume, and the sole boundary type handed to transport
// collaborators. Values are pure data; the package adds equality,
// ordering and serialization bridges (JSON, CBOR, YAML) but no behavior
// beyond inspection.
package wire

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindBinary
	KindList
	KindMap
)

// String returns the kind name as it appears in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a dynamic, self-describing attribute value. The zero Value is
// Null. Values are immutable by convention: callers must not mutate a
// slice or map after handing it to a constructor.
type Value struct {
	kind Kind
	b    bool
	num  Number
	str  string
	bin  []byte
	list []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Num returns a number value carrying the given decimal text.
func Num(n Number) Value { return Value{kind: KindNumber, num: n} }

// Int returns a number value for an int64.
func Int(v int64) Value { return Num(Number(strconv.FormatInt(v, 10))) }

// Uint returns a number value for a uint64.
func Uint(v uint64) Value { return Num(Number(strconv.FormatUint(v, 10))) }

// Float returns a number value using the shortest decimal text that
// round-trips the given float64. The 'f' form is used so the text never
// carries a binary-rounding artifact or an exponent.
func Float(v float64) Value {
	return Num(Number(strconv.FormatFloat(v, 'f', -1, 64)))
}

// Str returns a string value.
func Str(v string) Value { return Value{kind: KindString, str: v} }

// Bin returns a binary value.
func Bin(v []byte) Value { return Value{kind: KindBinary, bin: v} }

// List returns a list value with the given items, order preserved.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map returns a map value. Keys are unique by construction of the Go map;
// entry order is not significant.
func Map(entries map[string]Value) Value { return Value{kind: KindMap, m: entries} }

// Kind reports the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("wire: expected bool, got %s", v.kind)
	}
	return v.b, nil
}

// AsNum returns the number payload.
func (v Value) AsNum() (Number, error) {
	if v.kind != KindNumber {
		return "", fmt.Errorf("wire: expected number, got %s", v.kind)
	}
	return v.num, nil
}

// AsStr returns the string payload.
func (v Value) AsStr() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("wire: expected string, got %s", v.kind)
	}
	return v.str, nil
}

// AsBin returns the binary payload.
func (v Value) AsBin() ([]byte, error) {
	if v.kind != KindBinary {
		return nil, fmt.Errorf("wire: expected binary, got %s", v.kind)
	}
	return v.bin, nil
}

// AsList returns the list items.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("wire: expected list, got %s", v.kind)
	}
	return v.list, nil
}

// AsMap returns the map entries.
func (v Value) AsMap() (map[string]Value, error) {
	if v.kind != KindMap {
		return nil, fmt.Errorf("wire: expected map, got %s", v.kind)
	}
	return v.m, nil
}

// Len returns the number of items in a list or entries in a map, and 0
// for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Get returns the entry under key in a map value, or (Null, false).
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	e, ok := v.m[key]
	return e, ok
}

// Index returns the i-th item of a list value.
func (v Value) Index(i int) (Value, error) {
	if v.kind != KindList {
		return Value{}, fmt.Errorf("wire: expected list, got %s", v.kind)
	}
	if i < 0 || i >= len(v.list) {
		return Value{}, fmt.Errorf("wire: index %d out of bounds (len=%d)", i, len(v.list))
	}
	return v.list[i], nil
}

// Equal reports deep structural equality. Map entry order is irrelevant;
// numbers compare numerically when both carry valid decimal text, else by
// exact text.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// Compare imposes a total structural order over values: first by kind
// (null < bool < number < string < binary < list < map), then by the
// natural order within a kind. Lists compare item-wise then by length;
// maps by sorted key sequence then per-key values. The order exists for
// deterministic output, not for store-side semantics.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNull:
		return 0
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindNumber:
		return a.num.Cmp(b.num)
	case KindString:
		return strings.Compare(a.str, b.str)
	case KindBinary:
		return compareBytes(a.bin, b.bin)
	case KindList:
		for i := 0; i < len(a.list) && i < len(b.list); i++ {
			if c := Compare(a.list[i], b.list[i]); c != 0 {
				return c
			}
		}
		return len(a.list) - len(b.list)
	case KindMap:
		ak, bk := sortedKeys(a.m), sortedKeys(b.m)
		for i := 0; i < len(ak) && i < len(bk); i++ {
			if c := strings.Compare(ak[i], bk[i]); c != 0 {
				return c
			}
			if c := Compare(a.m[ak[i]], b.m[bk[i]]); c != 0 {
				return c
			}
		}
		return len(ak) - len(bk)
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func sortedKeys(m map[string]Value) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// String renders a compact literal form for debugging and test failure
// output. It is not a serialization format.
func (v Value) String() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}

func (v Value) render(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		b.WriteString(string(v.num))
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindBinary:
		fmt.Fprintf(b, "binary(%d bytes)", len(v.bin))
	case KindList:
		b.WriteByte('[')
		for i, it := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			it.render(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, k := range sortedKeys(v.m) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			v.m[k].render(b)
		}
		b.WriteByte('}')
	}
}
