package attrcodec

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// compileDecoder lowers a schema node into its decode closure. Decoding
// validates as it goes and stops at the first failure, reporting it as
// Issues rooted at the offending position.
func compileDecoder(n schema.Node) decodeFunc {
	switch t := n.(type) {
	case *schema.PrimitiveNode:
		return primitiveDecoder(t)

	case *schema.OptionalNode:
		elem := compileDecoder(t.Elem)
		none, wrap := t.None, t.Wrap
		return func(v wire.Value) (any, error) {
			if v.IsNull() {
				return none(), nil
			}
			out, err := elem(v)
			if err != nil {
				return nil, err
			}
			return wrap(out), nil
		}

	case *schema.TupleNode:
		left, right := compileDecoder(t.Left), compileDecoder(t.Right)
		mk := t.Make
		return func(v wire.Value) (any, error) {
			items, err := v.AsList()
			if err != nil {
				return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected list, got %s", v.Kind()))
			}
			if len(items) != 2 {
				return nil, issueAt("/", CodeInvalidFormat, fmt.Sprintf("expected 2 items, got %d", len(items)))
			}
			lv, err := left(items[0])
			if err != nil {
				return nil, rebaseErr("/0", err)
			}
			rv, err := right(items[1])
			if err != nil {
				return nil, rebaseErr("/1", err)
			}
			return mk(lv, rv), nil
		}

	case *schema.SequenceNode:
		elem := compileDecoder(t.Elem)
		build := t.Build
		return func(v wire.Value) (any, error) {
			items, err := v.AsList()
			if err != nil {
				return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected list, got %s", v.Kind()))
			}
			elems := make([]any, len(items))
			for i, it := range items {
				out, err := elem(it)
				if err != nil {
					return nil, rebaseErr("/"+strconv.Itoa(i), err)
				}
				elems[i] = out
			}
			return build(elems), nil
		}

	case *schema.MapNode:
		build := t.Build
		if isStringKey(t.Key) {
			valDec := compileDecoder(t.Value)
			return func(v wire.Value) (any, error) {
				m, err := v.AsMap()
				if err != nil {
					return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected map, got %s", v.Kind()))
				}
				keys := make([]string, 0, len(m))
				for k := range m {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				entries := make([]schema.MapEntry, 0, len(m))
				for _, k := range keys {
					out, err := valDec(m[k])
					if err != nil {
						return nil, rebaseErr("/"+k, err)
					}
					entries = append(entries, schema.MapEntry{Key: k, Value: out})
				}
				return build(entries), nil
			}
		}
		keyDec, valDec := compileDecoder(t.Key), compileDecoder(t.Value)
		return func(v wire.Value) (any, error) {
			items, err := v.AsList()
			if err != nil {
				return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected list of key/value pairs, got %s", v.Kind()))
			}
			entries := make([]schema.MapEntry, 0, len(items))
			for i, it := range items {
				pos := "/" + strconv.Itoa(i)
				pair, err := it.AsList()
				if err != nil {
					return nil, issueAt(pos, CodeInvalidType, fmt.Sprintf("expected pair, got %s", it.Kind()))
				}
				if len(pair) != 2 {
					return nil, issueAt(pos, CodeInvalidFormat, fmt.Sprintf("expected 2 items, got %d", len(pair)))
				}
				k, err := keyDec(pair[0])
				if err != nil {
					return nil, rebaseErr(pos+"/0", err)
				}
				val, err := valDec(pair[1])
				if err != nil {
					return nil, rebaseErr(pos+"/1", err)
				}
				entries = append(entries, schema.MapEntry{Key: k, Value: val})
			}
			return build(entries), nil
		}

	case *schema.EitherNode:
		left, right := compileDecoder(t.Left), compileDecoder(t.Right)
		mkLeft, mkRight := t.MakeLeft, t.MakeRight
		return func(v wire.Value) (any, error) {
			m, err := v.AsMap()
			if err != nil {
				return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected single-entry map, got %s", v.Kind()))
			}
			if len(m) != 1 {
				return nil, issueAt("/", CodeInvalidFormat, fmt.Sprintf(`expected a single "Left" or "Right" entry, got %d entries`, len(m)))
			}
			if e, ok := m["Left"]; ok {
				out, err := left(e)
				if err != nil {
					return nil, rebaseErr("/Left", err)
				}
				return mkLeft(out), nil
			}
			if e, ok := m["Right"]; ok {
				out, err := right(e)
				if err != nil {
					return nil, rebaseErr("/Right", err)
				}
				return mkRight(out), nil
			}
			var key string
			for k := range m {
				key = k
			}
			return nil, issueAt("/", CodeInvalidFormat, fmt.Sprintf(`unexpected key %q, want "Left" or "Right"`, key))
		}

	case *schema.RecordNode:
		type fieldDec struct {
			name string
			set  func(any, any)
			dec  decodeFunc
		}
		fields := make([]fieldDec, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = fieldDec{name: f.Name, set: f.Set, dec: compileDecoder(f.Schema)}
		}
		newBuilder, finish := t.New, t.Finish
		return func(v wire.Value) (any, error) {
			m, err := v.AsMap()
			if err != nil {
				return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected map, got %s", v.Kind()))
			}
			b := newBuilder()
			for _, f := range fields {
				e, ok := m[f.name]
				if !ok {
					return nil, issueAt("/"+f.name, CodeRequired, "")
				}
				out, err := f.dec(e)
				if err != nil {
					return nil, rebaseErr("/"+f.name, err)
				}
				f.set(b, out)
			}
			return finish(b), nil
		}

	case *schema.EnumNode:
		return enumDecoder(t)

	case *schema.TransformNode:
		inner := compileDecoder(t.Inner)
		into := t.Into
		return func(v wire.Value) (any, error) {
			mid, err := inner(v)
			if err != nil {
				return nil, err
			}
			out, err := into(mid)
			if err != nil {
				return nil, rebaseErr("/", err)
			}
			return out, nil
		}

	case *schema.LazyNode:
		var once sync.Once
		var dec decodeFunc
		return func(v wire.Value) (any, error) {
			once.Do(func() { dec = compileDecoder(t.Force()) })
			return dec(v)
		}

	case *schema.FailNode:
		msg := t.Message
		return func(wire.Value) (any, error) {
			return nil, issueAt("/", CodeSchemaFail, msg)
		}

	case *schema.MetaNode:
		return func(v wire.Value) (any, error) {
			node, err := decodeSchema(v)
			if err != nil {
				return nil, err
			}
			return node, nil
		}

	default:
		panic(fmt.Sprintf("attrcodec: unsupported schema node %T", n))
	}
}
