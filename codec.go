package attrcodec

import (
	"github.com/attrkit/attrcodec/i18n"
	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// encodeFunc and decodeFunc are the compiled forms a schema node lowers
// into. Derivation happens once per codec; the closures do no schema
// inspection afterwards.
type (
	encodeFunc func(v any) (wire.Value, error)
	decodeFunc func(v wire.Value) (any, error)
)

// Codec is a compiled encoder/decoder pair for T. Both directions are
// pure: no I/O, no registries, no reflection at call time. A Codec is
// immutable and safe for concurrent use.
type Codec[T any] struct {
	node schema.Node
	enc  encodeFunc
	dec  decodeFunc
}

// Derive compiles a schema into its codec. The node tree is walked once
// up front; lazy nodes compile on first use, which is what lets
// recursive schemas terminate.
func Derive[T any](s schema.Schema[T]) Codec[T] {
	n := s.Node()
	if n == nil {
		panic("attrcodec: Derive requires a constructed schema")
	}
	return Codec[T]{node: n, enc: compileEncoder(n), dec: compileDecoder(n)}
}

// Encode maps a value onto the wire union. Encoding a well-typed value
// succeeds except when a transform's outward function rejects it.
func (c Codec[T]) Encode(v T) (wire.Value, error) { return c.enc(v) }

// Decode maps a wire value back into T. A non-nil error is an Issues
// value describing the failure closest to the input root; decoding stops
// at the first failure.
func (c Codec[T]) Decode(v wire.Value) (T, error) {
	out, err := c.dec(v)
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

// Node returns the schema node the codec was derived from.
func (c Codec[T]) Node() schema.Node { return c.node }

// AnyCodec is the untyped form of Codec. It serves schemas that exist
// only at runtime, such as ones materialized from a serialized AST; its
// value vocabulary is the generic one documented in package schema.
type AnyCodec struct {
	node schema.Node
	enc  encodeFunc
	dec  decodeFunc
}

// DeriveAny compiles a bare node into an untyped codec.
func DeriveAny(n schema.Node) AnyCodec {
	if n == nil {
		panic("attrcodec: DeriveAny requires a node")
	}
	return AnyCodec{node: n, enc: compileEncoder(n), dec: compileDecoder(n)}
}

// Encode maps an untyped value onto the wire union. Handing a value
// outside the schema's vocabulary is a programming error and panics.
func (c AnyCodec) Encode(v any) (wire.Value, error) { return c.enc(v) }

// Decode maps a wire value into the schema's generic vocabulary.
func (c AnyCodec) Decode(v wire.Value) (any, error) { return c.dec(v) }

// Node returns the schema node the codec was derived from.
func (c AnyCodec) Node() schema.Node { return c.node }

// issueAt builds the single-issue failure the engine reports at path.
func issueAt(path, code, hint string) Issues {
	return Issues{Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint}}
}
