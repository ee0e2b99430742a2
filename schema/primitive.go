package schema

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/attrkit/attrcodec/wire"
)

// PrimitiveType enumerates the scalar vocabulary. Each entry fixes both
// the Go value type and the wire kind it maps onto.
type PrimitiveType uint8

const (
	PrimBool PrimitiveType = iota
	PrimString
	PrimBinary
	PrimUnit
	PrimChar
	PrimInt
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimBigInt
	PrimNumber
	PrimTime
	PrimDuration
	PrimWeekday
	PrimMonth
	PrimYear
	PrimZoneOffset
	PrimLocation
	PrimUUID
)

// String returns the primitive name used by the serialized schema form.
func (p PrimitiveType) String() string {
	switch p {
	case PrimBool:
		return "bool"
	case PrimString:
		return "string"
	case PrimBinary:
		return "binary"
	case PrimUnit:
		return "unit"
	case PrimChar:
		return "char"
	case PrimInt:
		return "int"
	case PrimInt8:
		return "int8"
	case PrimInt16:
		return "int16"
	case PrimInt32:
		return "int32"
	case PrimInt64:
		return "int64"
	case PrimUint:
		return "uint"
	case PrimUint8:
		return "uint8"
	case PrimUint16:
		return "uint16"
	case PrimUint32:
		return "uint32"
	case PrimUint64:
		return "uint64"
	case PrimFloat32:
		return "float32"
	case PrimFloat64:
		return "float64"
	case PrimBigInt:
		return "bigint"
	case PrimNumber:
		return "number"
	case PrimTime:
		return "time"
	case PrimDuration:
		return "duration"
	case PrimWeekday:
		return "weekday"
	case PrimMonth:
		return "month"
	case PrimYear:
		return "year"
	case PrimZoneOffset:
		return "zone-offset"
	case PrimLocation:
		return "location"
	case PrimUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// PrimitiveTypeByName is the inverse of PrimitiveType.String, used when
// materializing a schema from its serialized form.
func PrimitiveTypeByName(name string) (PrimitiveType, bool) {
	for p := PrimBool; p <= PrimUUID; p++ {
		if p.String() == name {
			return p, true
		}
	}
	return 0, false
}

func primitive[T any](p PrimitiveType) Schema[T] {
	return fromNode[T](&PrimitiveNode{Type: p})
}

// Bool maps bool onto the wire boolean.
func Bool() Schema[bool] { return primitive[bool](PrimBool) }

// String maps string onto the wire string.
func String() Schema[string] { return primitive[string](PrimString) }

// Binary maps a byte slice onto the wire binary kind.
func Binary() Schema[[]byte] { return primitive[[]byte](PrimBinary) }

// Unit maps struct{} onto the wire null. It is the payload of data-less
// enum cases.
func Unit() Schema[struct{}] { return primitive[struct{}](PrimUnit) }

// Char maps a single rune onto a one-character wire string.
func Char() Schema[rune] { return primitive[rune](PrimChar) }

// Int maps int onto the wire number.
func Int() Schema[int] { return primitive[int](PrimInt) }

// Int8 maps int8 onto the wire number.
func Int8() Schema[int8] { return primitive[int8](PrimInt8) }

// Int16 maps int16 onto the wire number.
func Int16() Schema[int16] { return primitive[int16](PrimInt16) }

// Int32 maps int32 onto the wire number.
func Int32() Schema[int32] { return primitive[int32](PrimInt32) }

// Int64 maps int64 onto the wire number.
func Int64() Schema[int64] { return primitive[int64](PrimInt64) }

// Uint maps uint onto the wire number.
func Uint() Schema[uint] { return primitive[uint](PrimUint) }

// Uint8 maps uint8 onto the wire number.
func Uint8() Schema[uint8] { return primitive[uint8](PrimUint8) }

// Uint16 maps uint16 onto the wire number.
func Uint16() Schema[uint16] { return primitive[uint16](PrimUint16) }

// Uint32 maps uint32 onto the wire number.
func Uint32() Schema[uint32] { return primitive[uint32](PrimUint32) }

// Uint64 maps uint64 onto the wire number.
func Uint64() Schema[uint64] { return primitive[uint64](PrimUint64) }

// Float32 maps float32 onto the wire number using the shortest decimal
// text that round-trips the value.
func Float32() Schema[float32] { return primitive[float32](PrimFloat32) }

// Float64 maps float64 onto the wire number using the shortest decimal
// text that round-trips the value.
func Float64() Schema[float64] { return primitive[float64](PrimFloat64) }

// BigInt maps *big.Int onto the wire number without precision loss.
func BigInt() Schema[*big.Int] { return primitive[*big.Int](PrimBigInt) }

// Number passes wire number text through untouched, for callers that
// keep store decimals in their native form.
func Number() Schema[wire.Number] { return primitive[wire.Number](PrimNumber) }

// Time maps time.Time onto a wire string in the given layout. Decoding
// parses with the same layout.
func Time(layout string) Schema[time.Time] {
	return fromNode[time.Time](&PrimitiveNode{Type: PrimTime, Layout: layout})
}

// TimeRFC3339 maps time.Time onto its canonical RFC 3339 form:
// normalized to UTC and formatted with nanosecond precision. Decoding
// accepts both fractional and whole-second RFC 3339 text.
func TimeRFC3339() Schema[time.Time] {
	return fromNode[time.Time](&PrimitiveNode{Type: PrimTime, Layout: time.RFC3339Nano, UTC: true})
}

// Duration maps time.Duration onto its String form ("1m30s"); decoding
// parses with time.ParseDuration.
func Duration() Schema[time.Duration] { return primitive[time.Duration](PrimDuration) }

// Weekday maps time.Weekday onto its English name.
func Weekday() Schema[time.Weekday] { return primitive[time.Weekday](PrimWeekday) }

// Month maps time.Month onto its English name.
func Month() Schema[time.Month] { return primitive[time.Month](PrimMonth) }

// Year maps a proleptic ISO year onto a wire string of at least four
// digits, with an explicit sign outside 0000 through 9999.
func Year() Schema[int] { return primitive[int](PrimYear) }

// ZoneOffset maps a UTC offset in seconds onto its ISO 8601 id: "Z" for
// zero, otherwise a signed HH:MM or HH:MM:SS. Offsets beyond 18 hours
// are out of range.
func ZoneOffset() Schema[int] { return primitive[int](PrimZoneOffset) }

// Location maps *time.Location onto its IANA name. Decoding resolves the
// name through the platform zone database.
func Location() Schema[*time.Location] { return primitive[*time.Location](PrimLocation) }

// UUID maps uuid.UUID onto its canonical hyphenated string form.
func UUID() Schema[uuid.UUID] { return primitive[uuid.UUID](PrimUUID) }
