package schema_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/attrkit/attrcodec/schema"
)

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	f()
}

type point struct {
	X int
	Y int
}

func pointSchema() schema.Schema[point] {
	return schema.Record[point](
		schema.Field("x", schema.Int(),
			func(p point) int { return p.X },
			func(p *point, v int) { p.X = v }),
		schema.Field("y", schema.Int(),
			func(p point) int { return p.Y },
			func(p *point, v int) { p.Y = v }),
	)
}

func TestRecordConstruction(t *testing.T) {
	n := pointSchema().Node()
	rec, ok := n.(*schema.RecordNode)
	if !ok {
		t.Fatalf("expected record node, got %s", n.Kind())
	}
	if len(rec.Fields) != 2 || rec.Fields[0].Name != "x" || rec.Fields[1].Name != "y" {
		t.Fatalf("field order not preserved: %+v", rec.Fields)
	}

	b := rec.New()
	rec.Fields[0].Set(b, 3)
	rec.Fields[1].Set(b, 4)
	got := rec.Finish(b).(point)
	if got != (point{X: 3, Y: 4}) {
		t.Fatalf("builder round trip: got %+v", got)
	}
	if rec.Fields[0].Get(got) != 3 {
		t.Fatalf("getter lost field value")
	}
}

func TestRecordPanics(t *testing.T) {
	expectPanic(t, "duplicate field", func() {
		schema.Record[point](
			schema.Field("x", schema.Int(), func(p point) int { return p.X }, func(p *point, v int) { p.X = v }),
			schema.Field("x", schema.Int(), func(p point) int { return p.Y }, func(p *point, v int) { p.Y = v }),
		)
	})
	expectPanic(t, "empty name", func() {
		schema.Record[point](
			schema.Field("", schema.Int(), func(p point) int { return p.X }, func(p *point, v int) { p.X = v }),
		)
	})
}

func TestEnumPanics(t *testing.T) {
	expectPanic(t, "no cases", func() { schema.Enum[string]() })
	expectPanic(t, "duplicate id", func() {
		schema.Enum[string](
			schema.CaseValue("a", "a"),
			schema.CaseValue("a", "b"),
		)
	})
	expectPanic(t, "duplicate wire tag", func() {
		schema.Enum[string](
			schema.CaseValue("a", "a").Const("t"),
			schema.CaseValue("b", "b").Const("t"),
		)
	})
	expectPanic(t, "empty discriminator", func() {
		schema.TaggedEnum[string]("", schema.CaseValue("a", "a"))
	})
}

func TestCaseTagOverride(t *testing.T) {
	n := schema.Enum[string](
		schema.CaseValue("internal", "v").Const("wire-name"),
	).Node()
	en := n.(*schema.EnumNode)
	if en.Cases[0].ID != "internal" {
		t.Fatalf("id changed: %q", en.Cases[0].ID)
	}
	if en.Cases[0].Tag() != "wire-name" {
		t.Fatalf("tag should honor const override, got %q", en.Cases[0].Tag())
	}
	plain := schema.Enum[string](schema.CaseValue("only", "v")).Node().(*schema.EnumNode)
	if plain.Cases[0].Tag() != "only" {
		t.Fatalf("tag should default to id, got %q", plain.Cases[0].Tag())
	}
}

func TestCaseValueMatching(t *testing.T) {
	en := schema.Enum[string](
		schema.CaseValue("mon", "monday"),
		schema.CaseValue("tue", "tuesday"),
	).Node().(*schema.EnumNode)

	if _, ok := en.Cases[0].Deconstruct("monday"); !ok {
		t.Fatalf("case should match its value")
	}
	if _, ok := en.Cases[0].Deconstruct("tuesday"); ok {
		t.Fatalf("case should not match another value")
	}
	if got := en.Cases[1].Construct(struct{}{}); got != "tuesday" {
		t.Fatalf("construct: got %v", got)
	}
}

func TestLazyMemoizes(t *testing.T) {
	var calls atomic.Int32
	l := schema.Defer(func() schema.Node {
		calls.Add(1)
		return schema.Int().Node()
	})
	if l.Force() != l.Force() {
		t.Fatalf("Force must return the same node")
	}
	if calls.Load() != 1 {
		t.Fatalf("thunk ran %d times", calls.Load())
	}
}

func TestLazyConcurrentFirstUse(t *testing.T) {
	var calls atomic.Int32
	l := schema.Defer(func() schema.Node {
		calls.Add(1)
		return schema.String().Node()
	})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Force()
		}()
	}
	wg.Wait()
	if calls.Load() != 1 {
		t.Fatalf("thunk ran %d times under concurrent forcing", calls.Load())
	}
}

func TestUnlazy(t *testing.T) {
	inner := schema.Int().Node()
	nested := schema.Defer(func() schema.Node {
		return schema.Defer(func() schema.Node { return inner })
	})
	if schema.Unlazy(nested) != inner {
		t.Fatalf("Unlazy should unwrap nested lazies")
	}
	if schema.Unlazy(inner) != inner {
		t.Fatalf("Unlazy should pass plain nodes through")
	}
}

func TestEitherValues(t *testing.T) {
	l := schema.Left[int, string](3)
	if !l.IsLeft() || l.IsRight() {
		t.Fatalf("Left should report left")
	}
	if v, ok := l.Left(); !ok || v != 3 {
		t.Fatalf("Left payload: got %v ok=%v", v, ok)
	}
	if _, ok := l.Right(); ok {
		t.Fatalf("Left should not hold a right payload")
	}
	r := schema.Right[int, string]("s")
	if v, ok := r.Right(); !ok || v != "s" {
		t.Fatalf("Right payload: got %v ok=%v", v, ok)
	}
	var zero schema.Either[int, string]
	if !zero.IsLeft() {
		t.Fatalf("zero Either should hold the zero left value")
	}
}

func TestPrimitiveNames(t *testing.T) {
	for _, name := range []string{"bool", "string", "binary", "unit", "char", "int64", "uint32", "float64", "bigint", "number", "time", "duration", "weekday", "month", "year", "zone-offset", "location", "uuid"} {
		p, ok := schema.PrimitiveTypeByName(name)
		if !ok {
			t.Fatalf("unknown primitive name %q", name)
		}
		if p.String() != name {
			t.Fatalf("name round trip: %q became %q", name, p.String())
		}
	}
	if _, ok := schema.PrimitiveTypeByName("complex128"); ok {
		t.Fatalf("unsupported name should not resolve")
	}
}
