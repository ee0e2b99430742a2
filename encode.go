package attrcodec

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// compileEncoder lowers a schema node into its encode closure. Encoding
// is total for well-typed values except where the schema itself declares
// failure: a transform's From may reject, and a fail node rejects
// everything.
func compileEncoder(n schema.Node) encodeFunc {
	switch t := n.(type) {
	case *schema.PrimitiveNode:
		return primitiveEncoder(t)

	case *schema.OptionalNode:
		elem := compileEncoder(t.Elem)
		isNone, unwrap := t.IsNone, t.Unwrap
		return func(v any) (wire.Value, error) {
			if isNone(v) {
				return wire.Null(), nil
			}
			return elem(unwrap(v))
		}

	case *schema.TupleNode:
		left, right := compileEncoder(t.Left), compileEncoder(t.Right)
		first, second := t.First, t.Second
		return func(v any) (wire.Value, error) {
			lv, err := left(first(v))
			if err != nil {
				return wire.Value{}, rebaseErr("/0", err)
			}
			rv, err := right(second(v))
			if err != nil {
				return wire.Value{}, rebaseErr("/1", err)
			}
			return wire.List(lv, rv), nil
		}

	case *schema.SequenceNode:
		elem := compileEncoder(t.Elem)
		iterate := t.Iterate
		return func(v any) (wire.Value, error) {
			var items []wire.Value
			var firstErr error
			iterate(v, func(e any) {
				if firstErr != nil {
					return
				}
				av, err := elem(e)
				if err != nil {
					firstErr = rebaseErr("/"+strconv.Itoa(len(items)), err)
					return
				}
				items = append(items, av)
			})
			if firstErr != nil {
				return wire.Value{}, firstErr
			}
			return wire.List(items...), nil
		}

	case *schema.MapNode:
		if isStringKey(t.Key) {
			valEnc := compileEncoder(t.Value)
			iterate := t.Iterate
			return func(v any) (wire.Value, error) {
				entries := map[string]wire.Value{}
				var firstErr error
				iterate(v, func(k, val any) {
					if firstErr != nil {
						return
					}
					ks := k.(string)
					av, err := valEnc(val)
					if err != nil {
						firstErr = rebaseErr("/"+ks, err)
						return
					}
					entries[ks] = av
				})
				if firstErr != nil {
					return wire.Value{}, firstErr
				}
				return wire.Map(entries), nil
			}
		}
		keyEnc, valEnc := compileEncoder(t.Key), compileEncoder(t.Value)
		iterate := t.Iterate
		return func(v any) (wire.Value, error) {
			var pairs []wire.Value
			var firstErr error
			iterate(v, func(k, val any) {
				if firstErr != nil {
					return
				}
				pos := "/" + strconv.Itoa(len(pairs))
				kv, err := keyEnc(k)
				if err != nil {
					firstErr = rebaseErr(pos+"/0", err)
					return
				}
				av, err := valEnc(val)
				if err != nil {
					firstErr = rebaseErr(pos+"/1", err)
					return
				}
				pairs = append(pairs, wire.List(kv, av))
			})
			if firstErr != nil {
				return wire.Value{}, firstErr
			}
			// Map iteration order is randomized; sort the encoded pairs so
			// equal maps always encode to the same list.
			sort.SliceStable(pairs, func(i, j int) bool {
				return wire.Compare(pairs[i], pairs[j]) < 0
			})
			return wire.List(pairs...), nil
		}

	case *schema.EitherNode:
		left, right := compileEncoder(t.Left), compileEncoder(t.Right)
		decon := t.Deconstruct
		return func(v any) (wire.Value, error) {
			p, isRight := decon(v)
			if isRight {
				av, err := right(p)
				if err != nil {
					return wire.Value{}, rebaseErr("/Right", err)
				}
				return wire.Map(map[string]wire.Value{"Right": av}), nil
			}
			av, err := left(p)
			if err != nil {
				return wire.Value{}, rebaseErr("/Left", err)
			}
			return wire.Map(map[string]wire.Value{"Left": av}), nil
		}

	case *schema.RecordNode:
		type fieldEnc struct {
			name string
			get  func(any) any
			enc  encodeFunc
		}
		fields := make([]fieldEnc, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = fieldEnc{name: f.Name, get: f.Get, enc: compileEncoder(f.Schema)}
		}
		return func(v any) (wire.Value, error) {
			entries := make(map[string]wire.Value, len(fields))
			for _, f := range fields {
				av, err := f.enc(f.get(v))
				if err != nil {
					return wire.Value{}, rebaseErr("/"+f.name, err)
				}
				entries[f.name] = av
			}
			return wire.Map(entries), nil
		}

	case *schema.EnumNode:
		return enumEncoder(t)

	case *schema.TransformNode:
		inner := compileEncoder(t.Inner)
		from := t.From
		return func(v any) (wire.Value, error) {
			in, err := from(v)
			if err != nil {
				return wire.Value{}, rebaseErr("/", err)
			}
			return inner(in)
		}

	case *schema.LazyNode:
		var once sync.Once
		var enc encodeFunc
		return func(v any) (wire.Value, error) {
			once.Do(func() { enc = compileEncoder(t.Force()) })
			return enc(v)
		}

	case *schema.FailNode:
		// Fail rejects on decode only; encode degrades to Null so the
		// encoder stays total.
		return func(any) (wire.Value, error) { return wire.Null(), nil }

	case *schema.MetaNode:
		return func(v any) (wire.Value, error) {
			return encodeSchema(v.(schema.Node)), nil
		}

	default:
		panic(fmt.Sprintf("attrcodec: unsupported schema node %T", n))
	}
}

// isStringKey reports whether the key schema resolves to the bare string
// primitive, which is what allows the native map representation.
func isStringKey(n schema.Node) bool {
	p, ok := schema.Unlazy(n).(*schema.PrimitiveNode)
	return ok && p.Type == schema.PrimString
}
