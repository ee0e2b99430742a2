package attrcodec_test

import (
	"testing"

	"github.com/attrkit/attrcodec"
	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

type shape interface{ isShape() }

type circle struct{ Radius float64 }

type rect struct{ W, H float64 }

type blob struct{}

func (circle) isShape() {}
func (rect) isShape()   {}
func (blob) isShape()   {}

func circleSchema() schema.Schema[circle] {
	return schema.Record[circle](
		schema.Field("radius", schema.Float64(),
			func(c circle) float64 { return c.Radius },
			func(c *circle, v float64) { c.Radius = v }),
	)
}

func rectSchema() schema.Schema[rect] {
	return schema.Record[rect](
		schema.Field("w", schema.Float64(),
			func(r rect) float64 { return r.W },
			func(r *rect, v float64) { r.W = v }),
		schema.Field("h", schema.Float64(),
			func(r rect) float64 { return r.H },
			func(r *rect, v float64) { r.H = v }),
	)
}

func shapeSchema() schema.Schema[shape] {
	return schema.Enum[shape](
		schema.Case[shape, circle]("circle", circleSchema(),
			func(s shape) (circle, bool) { c, ok := s.(circle); return c, ok },
			func(c circle) shape { return c }),
		schema.Case[shape, rect]("rect", rectSchema(),
			func(s shape) (rect, bool) { r, ok := s.(rect); return r, ok },
			func(r rect) shape { return r }),
	)
}

func TestWrapperEnumRoundTrip(t *testing.T) {
	c := attrcodec.Derive(shapeSchema())
	av, err := c.Encode(circle{Radius: 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := wire.Map(map[string]wire.Value{
		"circle": wire.Map(map[string]wire.Value{"radius": wire.Num("2")}),
	})
	if !wire.Equal(av, want) {
		t.Fatalf("encode: got %s want %s", av, want)
	}
	back, err := c.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got, ok := back.(circle); !ok || got.Radius != 2 {
		t.Fatalf("decode: got %#v", back)
	}

	av, err = c.Encode(rect{W: 3, H: 4})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	back, err = c.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got, ok := back.(rect); !ok || got.W != 3 || got.H != 4 {
		t.Fatalf("decode: got %#v", back)
	}
}

func TestWrapperEnumDecodeFailures(t *testing.T) {
	c := attrcodec.Derive(shapeSchema())

	_, err := c.Decode(wire.Str("circle"))
	assertCode(t, err, attrcodec.CodeInvalidType, "/")

	_, err = c.Decode(wire.Map(map[string]wire.Value{}))
	assertCode(t, err, attrcodec.CodeInvalidFormat, "/")

	_, err = c.Decode(wire.Map(map[string]wire.Value{"hexagon": wire.Null()}))
	assertCode(t, err, attrcodec.CodeInvalidEnum, "/")

	bad := wire.Map(map[string]wire.Value{
		"circle": wire.Map(map[string]wire.Value{"radius": wire.Str("x")}),
	})
	_, err = c.Decode(bad)
	assertCode(t, err, attrcodec.CodeInvalidType, "/circle/radius")
}

func TestWrapperEnumSeveralEntriesHonorsDeclarationOrder(t *testing.T) {
	c := attrcodec.Derive(shapeSchema())
	av := wire.Map(map[string]wire.Value{
		"rect":   wire.Map(map[string]wire.Value{"w": wire.Num("1"), "h": wire.Num("1")}),
		"circle": wire.Map(map[string]wire.Value{"radius": wire.Num("9")}),
	})
	back, err := c.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got, ok := back.(circle); !ok || got.Radius != 9 {
		t.Fatalf("declared order should pick circle, got %#v", back)
	}

	unknownOnly := wire.Map(map[string]wire.Value{
		"hexagon": wire.Null(),
		"octagon": wire.Null(),
	})
	_, err = c.Decode(unknownOnly)
	assertCode(t, err, attrcodec.CodeInvalidEnum, "/")
}

func TestWrapperEnumUnmatchedValueEncodesNull(t *testing.T) {
	c := attrcodec.Derive(shapeSchema())
	av, err := c.Encode(blob{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !av.IsNull() {
		t.Fatalf("unmatched value should encode as null, got %s", av)
	}
}

func TestEnumConstOverridesWireTag(t *testing.T) {
	s := schema.Enum[shape](
		schema.Case[shape, circle]("circle", circleSchema(),
			func(s shape) (circle, bool) { c, ok := s.(circle); return c, ok },
			func(c circle) shape { return c }),
		schema.Case[shape, rect]("rectangle", rectSchema(),
			func(s shape) (rect, bool) { r, ok := s.(rect); return r, ok },
			func(r rect) shape { return r }).Const("rect"),
	)
	c := attrcodec.Derive(s)
	av, err := c.Encode(rect{W: 1, H: 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := av.Get("rect"); !ok {
		t.Fatalf("const tag should key the wire map, got %s", av)
	}
	back, err := c.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := back.(rect); !ok {
		t.Fatalf("decode: got %#v", back)
	}
	// The declared id is not a wire tag once overridden.
	_, err = c.Decode(wire.Map(map[string]wire.Value{
		"rectangle": wire.Map(map[string]wire.Value{"w": wire.Num("1"), "h": wire.Num("2")}),
	}))
	assertCode(t, err, attrcodec.CodeInvalidEnum, "/")
}

type event interface{ isEvent() }

type created struct{ ID string }

type deleted struct{ ID string }

type pinged struct{}

func (created) isEvent() {}
func (deleted) isEvent() {}
func (pinged) isEvent()  {}

func eventSchema() schema.Schema[event] {
	return schema.TaggedEnum[event]("type",
		schema.Case[event, created]("created",
			schema.Record[created](
				schema.Field("id", schema.String(),
					func(e created) string { return e.ID },
					func(e *created, v string) { e.ID = v }),
			),
			func(e event) (created, bool) { c, ok := e.(created); return c, ok },
			func(c created) event { return c }),
		schema.Case[event, deleted]("deleted",
			schema.Record[deleted](
				schema.Field("id", schema.String(),
					func(e deleted) string { return e.ID },
					func(e *deleted, v string) { e.ID = v }),
			),
			func(e event) (deleted, bool) { d, ok := e.(deleted); return d, ok },
			func(d deleted) event { return d }),
		schema.CaseObject[event]("pinged", pinged{},
			func(e event) bool { _, ok := e.(pinged); return ok }),
	)
}

func TestDiscriminatorEnumRoundTrip(t *testing.T) {
	c := attrcodec.Derive(eventSchema())
	av, err := c.Encode(created{ID: "a-1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := wire.Map(map[string]wire.Value{
		"type": wire.Str("created"),
		"id":   wire.Str("a-1"),
	})
	if !wire.Equal(av, want) {
		t.Fatalf("encode: got %s want %s", av, want)
	}
	back, err := c.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got, ok := back.(created); !ok || got.ID != "a-1" {
		t.Fatalf("decode: got %#v", back)
	}
}

func TestDiscriminatorEnumDatalessCaseInMixedEnum(t *testing.T) {
	c := attrcodec.Derive(eventSchema())
	// Not every case is data-less, so the tag still travels inside a map.
	av, err := c.Encode(pinged{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := wire.Map(map[string]wire.Value{"type": wire.Str("pinged")})
	if !wire.Equal(av, want) {
		t.Fatalf("encode: got %s want %s", av, want)
	}
	back, err := c.Decode(av)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := back.(pinged); !ok {
		t.Fatalf("decode: got %#v", back)
	}
	// The bare string form is reserved for all-data-less enums.
	_, err = c.Decode(wire.Str("pinged"))
	assertCode(t, err, attrcodec.CodeInvalidType, "/")
}

func TestDiscriminatorEnumDecodeFailures(t *testing.T) {
	c := attrcodec.Derive(eventSchema())

	_, err := c.Decode(wire.List())
	assertCode(t, err, attrcodec.CodeInvalidType, "/")

	_, err = c.Decode(wire.Map(map[string]wire.Value{"id": wire.Str("a")}))
	assertCode(t, err, attrcodec.CodeDiscriminatorMissing, "/type")

	_, err = c.Decode(wire.Map(map[string]wire.Value{"type": wire.Int(1)}))
	assertCode(t, err, attrcodec.CodeInvalidType, "/type")

	_, err = c.Decode(wire.Map(map[string]wire.Value{"type": wire.Str("renamed")}))
	assertCode(t, err, attrcodec.CodeDiscriminatorUnknown, "/type")

	// The payload is validated at the same map level as the tag.
	_, err = c.Decode(wire.Map(map[string]wire.Value{"type": wire.Str("created")}))
	assertCode(t, err, attrcodec.CodeRequired, "/id")
}

type phase int

const (
	phaseActive phase = iota
	phaseDone
	phaseFailed
)

func phaseSchema() schema.Schema[phase] {
	return schema.TaggedEnum[phase]("kind",
		schema.CaseValue("active", phaseActive),
		schema.CaseValue("done", phaseDone),
		schema.CaseValue("failed", phaseFailed),
	)
}

func TestDiscriminatorEnumAllDatalessUsesBareString(t *testing.T) {
	c := attrcodec.Derive(phaseSchema())
	av, err := c.Encode(phaseDone)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !wire.Equal(av, wire.Str("done")) {
		t.Fatalf("encode: got %s", av)
	}
	back, err := c.Decode(av)
	if err != nil || back != phaseDone {
		t.Fatalf("decode: got %v err %v", back, err)
	}
	// The map form stays accepted alongside the bare string.
	back, err = c.Decode(wire.Map(map[string]wire.Value{"kind": wire.Str("failed")}))
	if err != nil || back != phaseFailed {
		t.Fatalf("map form decode: got %v err %v", back, err)
	}
	_, err = c.Decode(wire.Str("paused"))
	assertCode(t, err, attrcodec.CodeDiscriminatorUnknown, "/")
}

func TestDiscriminatorEnumPanicsOnScalarCasePayload(t *testing.T) {
	// A scalar payload has no map to carry the discriminator entry.
	// Encoding through such a case is a schema bug, not bad input, so it
	// panics instead of returning an issue.
	c := attrcodec.Derive(schema.TaggedEnum[string]("kind",
		schema.Case[string, string]("raw", schema.String(),
			func(v string) (string, bool) { return v, true },
			func(v string) string { return v }),
	))
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for a scalar case payload")
		}
	}()
	_, _ = c.Encode("boom")
}
