package attrcodec_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/attrkit/attrcodec"
	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

func TestSchemaSerializationRoundTrip(t *testing.T) {
	typed := attrcodec.Derive(accountSchema())
	data, err := attrcodec.FormatSchema(typed.Node())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	node, err := attrcodec.ParseSchema(data)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	generic := attrcodec.DeriveAny(node)

	in := account{Name: "ann", Age: 41, Tags: []string{"admin"}, Addr: address{Street: "s", City: "c"}}
	av, err := typed.Encode(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// The materialized codec accepts the typed codec's output and speaks
	// the generic vocabulary.
	out, err := generic.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{
		"name": "ann",
		"age":  41,
		"tags": []any{"admin"},
		"addr": map[string]any{"street": "s", "city": "c"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("generic decode mismatch (-want +got):\n%s", diff)
	}

	// And encodes it back to the same wire value.
	back, err := generic.Encode(out)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !wire.Equal(av, back) {
		t.Fatalf("generic encode diverged: got %s want %s", back, av)
	}
}

func TestSchemaSerializedShape(t *testing.T) {
	mc := attrcodec.Derive(schema.Meta())
	av, err := mc.Encode(schema.Optional(schema.Int()).Node())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	kind, _ := av.Get("kind")
	if !wire.Equal(kind, wire.Str("optional")) {
		t.Fatalf("kind: got %s", av)
	}
	of, ok := av.Get("of")
	if !ok {
		t.Fatalf("missing of: %s", av)
	}
	ofKind, _ := of.Get("kind")
	ofName, _ := of.Get("of")
	if !wire.Equal(ofKind, wire.Str("primitive")) || !wire.Equal(ofName, wire.Str("int")) {
		t.Fatalf("inner: got %s", of)
	}
}

func TestMetaCodecRoundTrip(t *testing.T) {
	mc := attrcodec.Derive(schema.Meta())
	node := schema.MapOf(schema.String(), schema.Slice(schema.Float64())).Node()

	av, err := mc.Encode(node)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	back, err := mc.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	again, err := mc.Encode(back)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !wire.Equal(av, again) {
		t.Fatalf("reserialized form diverged: got %s want %s", again, av)
	}
}

func TestMetaEncodeDecodeMirrorTheMetaCodec(t *testing.T) {
	node := schema.Optional(schema.Tuple(schema.String(), schema.Int())).Node()

	av := attrcodec.MetaEncode(node)
	mc := attrcodec.Derive(schema.Meta())
	viaCodec, err := mc.Encode(node)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !wire.Equal(av, viaCodec) {
		t.Fatalf("MetaEncode diverged from the meta codec: %s vs %s", av, viaCodec)
	}

	back, err := attrcodec.MetaDecode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !wire.Equal(attrcodec.MetaEncode(back), av) {
		t.Fatalf("MetaDecode did not invert MetaEncode")
	}
}

func TestRecursiveSchemaSerialization(t *testing.T) {
	typed := attrcodec.Derive(treeSchema())
	data, err := attrcodec.FormatSchema(typed.Node())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"lazy"`) || !strings.Contains(text, `"ref"`) {
		t.Fatalf("recursive schema should serialize with a back-edge: %s", text)
	}

	node, err := attrcodec.ParseSchema(data)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	generic := attrcodec.DeriveAny(node)

	in := tree{Label: "root", Children: []tree{{Label: "leaf"}}}
	av, err := typed.Encode(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	out, err := generic.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	root, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("decode: got %T", out)
	}
	children, ok := root["children"].([]any)
	if !ok || len(children) != 1 {
		t.Fatalf("decode children: got %#v", root["children"])
	}
	leaf, ok := children[0].(map[string]any)
	if !ok || leaf["label"] != "leaf" {
		t.Fatalf("decode leaf: got %#v", children[0])
	}
}

func TestEnumSchemaSerializationKeepsConst(t *testing.T) {
	s := schema.Enum[shape](
		schema.Case[shape, circle]("circle", circleSchema(),
			func(s shape) (circle, bool) { c, ok := s.(circle); return c, ok },
			func(c circle) shape { return c }),
		schema.Case[shape, rect]("rectangle", rectSchema(),
			func(s shape) (rect, bool) { r, ok := s.(rect); return r, ok },
			func(r rect) shape { return r }).Const("rect"),
	)
	data, err := attrcodec.FormatSchema(s.Node())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	node, err := attrcodec.ParseSchema(data)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	generic := attrcodec.DeriveAny(node)

	// The declared id names the variant in the generic vocabulary; the
	// const overrides the tag on the wire.
	av, err := generic.Encode(schema.Tagged{Case: "rectangle", Value: map[string]any{"w": 1.0, "h": 2.0}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := av.Get("rect"); !ok {
		t.Fatalf("const tag should key the wire map, got %s", av)
	}
	out, err := generic.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	tagged, ok := out.(schema.Tagged)
	if !ok || tagged.Case != "rectangle" {
		t.Fatalf("decode: got %#v", out)
	}
}

func TestParseSchemaYAML(t *testing.T) {
	doc := `
kind: record
fields:
  - name: host
    schema: {kind: primitive, of: string}
  - name: port
    schema: {kind: primitive, of: uint16}
  - name: tls
    schema:
      kind: optional
      of: {kind: primitive, of: bool}
`
	node, err := attrcodec.ParseSchemaYAML([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := attrcodec.DeriveAny(node)
	av, err := c.Encode(map[string]any{"host": "db-1", "port": uint16(5432), "tls": nil})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := wire.Map(map[string]wire.Value{
		"host": wire.Str("db-1"),
		"port": wire.Uint(5432),
		"tls":  wire.Null(),
	})
	if !wire.Equal(av, want) {
		t.Fatalf("encode: got %s want %s", av, want)
	}

	out, err := attrcodec.FormatSchemaYAML(node)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	reparsed, err := attrcodec.ParseSchemaYAML(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if _, err := c.Decode(av); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if reparsed.Kind() != schema.KindRecord {
		t.Fatalf("reparsed kind: got %v", reparsed.Kind())
	}
}

func TestParseSchemaFailures(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		code string
		path string
	}{
		{"unknown kind", `{"M":{"kind":{"S":"cube"}}}`, attrcodec.CodeInvalidEnum, "/kind"},
		{"unknown primitive", `{"M":{"kind":{"S":"primitive"},"of":{"S":"quaternion"}}}`, attrcodec.CodeInvalidEnum, "/of"},
		{"missing kind", `{"M":{"of":{"S":"int"}}}`, attrcodec.CodeRequired, "/kind"},
		{"duplicate field", `{"M":{"kind":{"S":"record"},"fields":{"L":[
			{"M":{"name":{"S":"a"},"schema":{"M":{"kind":{"S":"primitive"},"of":{"S":"int"}}}}},
			{"M":{"name":{"S":"a"},"schema":{"M":{"kind":{"S":"primitive"},"of":{"S":"int"}}}}}
		]}}}`, attrcodec.CodeInvalidFormat, "/fields/1/name"},
		{"empty enum", `{"M":{"kind":{"S":"enum"},"cases":{"L":[]}}}`, attrcodec.CodeInvalidFormat, "/cases"},
		{"unresolved ref", `{"M":{"kind":{"S":"ref"},"id":{"N":"3"}}}`, attrcodec.CodeInvalidFormat, "/id"},
		{"nested bad child", `{"M":{"kind":{"S":"optional"},"of":{"M":{"kind":{"S":"nope"}}}}}`, attrcodec.CodeInvalidEnum, "/of/kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := attrcodec.ParseSchema([]byte(tc.doc))
			assertCode(t, err, tc.code, tc.path)
		})
	}
}
