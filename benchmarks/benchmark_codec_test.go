package attrcodec_test

import (
	"fmt"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/attrkit/attrcodec"
	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// ---- Helpers ----

type benchRow struct {
	ID     string
	Name   string
	Count  int
	Active bool
	Score  float64
	Tags   []string
}

func benchRowSchema() schema.Schema[benchRow] {
	return schema.Record[benchRow](
		schema.Field("id", schema.String(),
			func(r benchRow) string { return r.ID },
			func(r *benchRow, v string) { r.ID = v }),
		schema.Field("name", schema.String(),
			func(r benchRow) string { return r.Name },
			func(r *benchRow, v string) { r.Name = v }),
		schema.Field("count", schema.Int(),
			func(r benchRow) int { return r.Count },
			func(r *benchRow, v int) { r.Count = v }),
		schema.Field("active", schema.Bool(),
			func(r benchRow) bool { return r.Active },
			func(r *benchRow, v bool) { r.Active = v }),
		schema.Field("score", schema.Float64(),
			func(r benchRow) float64 { return r.Score },
			func(r *benchRow, v float64) { r.Score = v }),
		schema.Field("tags", schema.Slice(schema.String()),
			func(r benchRow) []string { return r.Tags },
			func(r *benchRow, v []string) { r.Tags = v }),
	)
}

func benchRows(n int) []benchRow {
	rows := make([]benchRow, n)
	for i := range rows {
		rows[i] = benchRow{
			ID:     fmt.Sprintf("row_%d", i),
			Name:   fmt.Sprintf("n%d", i),
			Count:  i,
			Active: i%2 == 0,
			Score:  float64(i) / 3,
			Tags:   []string{"a", "b"},
		}
	}
	return rows
}

func encodedRows(tb testing.TB, n int) wire.Value {
	tb.Helper()
	c := attrcodec.Derive(schema.Slice(benchRowSchema()))
	av, err := c.Encode(benchRows(n))
	if err != nil {
		tb.Fatalf("encode failed: %v", err)
	}
	return av
}

const hugeRows = 10000

// ---- Micro benchmarks (single row) ----

func Benchmark_Encode_Row_Small(b *testing.B) {
	c := attrcodec.Derive(benchRowSchema())
	row := benchRows(1)[0]
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Encode(row); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Decode_Row_Small(b *testing.B) {
	c := attrcodec.Derive(benchRowSchema())
	av, err := c.Encode(benchRows(1)[0])
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Decode(av); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Macro benchmarks (10k rows) ----

func Benchmark_Encode_Rows_Huge(b *testing.B) {
	c := attrcodec.Derive(schema.Slice(benchRowSchema()))
	rows := benchRows(hugeRows)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Encode(rows); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Decode_Rows_Huge(b *testing.B) {
	c := attrcodec.Derive(schema.Slice(benchRowSchema()))
	av := encodedRows(b, hugeRows)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Decode(av); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Serialization bridges ----

func Benchmark_ToJSON_Rows_Huge(b *testing.B) {
	av := encodedRows(b, hugeRows)
	data, err := wire.ToJSON(av)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := wire.ToJSON(av); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_FromJSON_Rows_Huge(b *testing.B) {
	data, err := wire.ToJSON(encodedRows(b, hugeRows))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := wire.FromJSON(data); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_ToCBOR_Rows_Huge(b *testing.B) {
	av := encodedRows(b, hugeRows)
	data, err := wire.ToCBOR(av)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := wire.ToCBOR(av); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_FromCBOR_Rows_Huge(b *testing.B) {
	data, err := wire.ToCBOR(encodedRows(b, hugeRows))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := wire.FromCBOR(data); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Baseline: raw goccy unmarshal of the same document ----

func Benchmark_goccyJSON_Unmarshal_Rows_Huge(b *testing.B) {
	data, err := wire.ToJSON(encodedRows(b, hugeRows))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}
