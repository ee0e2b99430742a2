package attrcodec

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/attrkit/attrcodec/i18n"
	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

// primitiveEncoder lowers a scalar schema into its encode closure. The
// Go-side type of v is fixed by the primitive, so the assertions here
// only fail on contract misuse.
func primitiveEncoder(p *schema.PrimitiveNode) encodeFunc {
	switch p.Type {
	case schema.PrimBool:
		return func(v any) (wire.Value, error) { return wire.Bool(v.(bool)), nil }
	case schema.PrimString:
		return func(v any) (wire.Value, error) { return wire.Str(v.(string)), nil }
	case schema.PrimBinary:
		return func(v any) (wire.Value, error) { return wire.Bin(v.([]byte)), nil }
	case schema.PrimUnit:
		return func(v any) (wire.Value, error) { return wire.Null(), nil }
	case schema.PrimChar:
		return func(v any) (wire.Value, error) {
			r := v.(rune)
			if !utf8.ValidRune(r) {
				return wire.Value{}, issueAt("/", CodeOverflow, fmt.Sprintf("invalid rune %d", r))
			}
			return wire.Str(string(r)), nil
		}
	case schema.PrimInt:
		return func(v any) (wire.Value, error) { return wire.Int(int64(v.(int))), nil }
	case schema.PrimInt8:
		return func(v any) (wire.Value, error) { return wire.Int(int64(v.(int8))), nil }
	case schema.PrimInt16:
		return func(v any) (wire.Value, error) { return wire.Int(int64(v.(int16))), nil }
	case schema.PrimInt32:
		return func(v any) (wire.Value, error) { return wire.Int(int64(v.(int32))), nil }
	case schema.PrimInt64:
		return func(v any) (wire.Value, error) { return wire.Int(v.(int64)), nil }
	case schema.PrimUint:
		return func(v any) (wire.Value, error) { return wire.Uint(uint64(v.(uint))), nil }
	case schema.PrimUint8:
		return func(v any) (wire.Value, error) { return wire.Uint(uint64(v.(uint8))), nil }
	case schema.PrimUint16:
		return func(v any) (wire.Value, error) { return wire.Uint(uint64(v.(uint16))), nil }
	case schema.PrimUint32:
		return func(v any) (wire.Value, error) { return wire.Uint(uint64(v.(uint32))), nil }
	case schema.PrimUint64:
		return func(v any) (wire.Value, error) { return wire.Uint(v.(uint64)), nil }
	case schema.PrimFloat32:
		return func(v any) (wire.Value, error) {
			f := float64(v.(float32))
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return wire.Value{}, issueAt("/", CodeOverflow, "non-finite float")
			}
			return wire.Num(wire.Number(strconv.FormatFloat(f, 'f', -1, 32))), nil
		}
	case schema.PrimFloat64:
		return func(v any) (wire.Value, error) {
			f := v.(float64)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return wire.Value{}, issueAt("/", CodeOverflow, "non-finite float")
			}
			return wire.Float(f), nil
		}
	case schema.PrimBigInt:
		return func(v any) (wire.Value, error) {
			b := v.(*big.Int)
			if b == nil {
				panic("attrcodec: cannot encode a nil *big.Int")
			}
			return wire.Num(wire.Number(b.String())), nil
		}
	case schema.PrimNumber:
		return func(v any) (wire.Value, error) { return wire.Num(v.(wire.Number)), nil }
	case schema.PrimTime:
		layout, utc := p.Layout, p.UTC
		return func(v any) (wire.Value, error) {
			t := v.(time.Time)
			if utc {
				t = t.UTC()
			}
			return wire.Str(t.Format(layout)), nil
		}
	case schema.PrimDuration:
		return func(v any) (wire.Value, error) { return wire.Str(v.(time.Duration).String()), nil }
	case schema.PrimWeekday:
		return func(v any) (wire.Value, error) {
			d := v.(time.Weekday)
			if d < time.Sunday || d > time.Saturday {
				return wire.Value{}, issueAt("/", CodeOverflow, fmt.Sprintf("invalid weekday %d", int(d)))
			}
			return wire.Str(d.String()), nil
		}
	case schema.PrimMonth:
		return func(v any) (wire.Value, error) {
			m := v.(time.Month)
			if m < time.January || m > time.December {
				return wire.Value{}, issueAt("/", CodeOverflow, fmt.Sprintf("invalid month %d", int(m)))
			}
			return wire.Str(m.String()), nil
		}
	case schema.PrimYear:
		return func(v any) (wire.Value, error) { return wire.Str(formatYear(v.(int))), nil }
	case schema.PrimZoneOffset:
		return func(v any) (wire.Value, error) {
			id, ok := formatZoneOffset(v.(int))
			if !ok {
				return wire.Value{}, issueAt("/", CodeOverflow, "zone offset beyond +/-18:00")
			}
			return wire.Str(id), nil
		}
	case schema.PrimLocation:
		return func(v any) (wire.Value, error) { return wire.Str(v.(*time.Location).String()), nil }
	case schema.PrimUUID:
		return func(v any) (wire.Value, error) { return wire.Str(v.(uuid.UUID).String()), nil }
	default:
		panic(fmt.Sprintf("attrcodec: unsupported primitive %d", p.Type))
	}
}

// primitiveDecoder lowers a scalar schema into its decode closure.
// Failures split three ways: a wrong wire kind is invalid_type, text
// that does not parse is parse_error, and a parsed value outside the
// target range is overflow.
func primitiveDecoder(p *schema.PrimitiveNode) decodeFunc {
	switch p.Type {
	case schema.PrimBool:
		return func(v wire.Value) (any, error) {
			b, err := v.AsBool()
			if err != nil {
				return nil, kindIssue("bool", v)
			}
			return b, nil
		}
	case schema.PrimString:
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			return s, nil
		}
	case schema.PrimBinary:
		return func(v wire.Value) (any, error) {
			b, err := v.AsBin()
			if err != nil {
				return nil, kindIssue("binary", v)
			}
			return b, nil
		}
	case schema.PrimUnit:
		return func(v wire.Value) (any, error) {
			if !v.IsNull() {
				return nil, kindIssue("null", v)
			}
			return struct{}{}, nil
		}
	case schema.PrimChar:
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			r, size := utf8.DecodeRuneInString(s)
			if size == 0 || size != len(s) || r == utf8.RuneError && size == 1 {
				return nil, issueAt("/", CodeInvalidFormat, fmt.Sprintf("expected a single character, got %q", s))
			}
			return r, nil
		}
	case schema.PrimInt:
		return intDecoder(func(i int64) (any, bool) {
			out := int(i)
			return out, int64(out) == i
		})
	case schema.PrimInt8:
		return intDecoder(func(i int64) (any, bool) { return int8(i), i >= math.MinInt8 && i <= math.MaxInt8 })
	case schema.PrimInt16:
		return intDecoder(func(i int64) (any, bool) { return int16(i), i >= math.MinInt16 && i <= math.MaxInt16 })
	case schema.PrimInt32:
		return intDecoder(func(i int64) (any, bool) { return int32(i), i >= math.MinInt32 && i <= math.MaxInt32 })
	case schema.PrimInt64:
		return intDecoder(func(i int64) (any, bool) { return i, true })
	case schema.PrimUint:
		return uintDecoder(func(u uint64) (any, bool) {
			out := uint(u)
			return out, uint64(out) == u
		})
	case schema.PrimUint8:
		return uintDecoder(func(u uint64) (any, bool) { return uint8(u), u <= math.MaxUint8 })
	case schema.PrimUint16:
		return uintDecoder(func(u uint64) (any, bool) { return uint16(u), u <= math.MaxUint16 })
	case schema.PrimUint32:
		return uintDecoder(func(u uint64) (any, bool) { return uint32(u), u <= math.MaxUint32 })
	case schema.PrimUint64:
		return uintDecoder(func(u uint64) (any, bool) { return u, true })
	case schema.PrimFloat32:
		return floatDecoder(32, func(f float64) any { return float32(f) })
	case schema.PrimFloat64:
		return floatDecoder(64, func(f float64) any { return f })
	case schema.PrimBigInt:
		return func(v wire.Value) (any, error) {
			n, err := v.AsNum()
			if err != nil {
				return nil, kindIssue("number", v)
			}
			b, err := n.BigInt()
			if err != nil {
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("not an integer: %q", n), Cause: err}}
			}
			return b, nil
		}
	case schema.PrimNumber:
		return func(v wire.Value) (any, error) {
			n, err := v.AsNum()
			if err != nil {
				return nil, kindIssue("number", v)
			}
			if err := n.Check(); err != nil {
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: err.Error(), Cause: err}}
			}
			return n, nil
		}
	case schema.PrimTime:
		layout := p.Layout
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			t, err := parseTime(layout, s)
			if err != nil {
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("bad timestamp %q", s), Cause: err}}
			}
			return t, nil
		}
	case schema.PrimDuration:
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("bad duration %q", s), Cause: err}}
			}
			return d, nil
		}
	case schema.PrimWeekday:
		return nameDecoder("weekday", func(s string) (any, bool) {
			for d := time.Sunday; d <= time.Saturday; d++ {
				if d.String() == s {
					return d, true
				}
			}
			return nil, false
		})
	case schema.PrimMonth:
		return nameDecoder("month", func(s string) (any, bool) {
			for m := time.January; m <= time.December; m++ {
				if m.String() == s {
					return m, true
				}
			}
			return nil, false
		})
	case schema.PrimYear:
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			y, err := strconv.Atoi(s)
			if err != nil {
				if errors.Is(err, strconv.ErrRange) {
					return nil, issueAt("/", CodeOverflow, fmt.Sprintf("year %q out of range", s))
				}
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("bad year %q", s), Cause: err}}
			}
			return y, nil
		}
	case schema.PrimZoneOffset:
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			sec, ok := parseZoneOffset(s)
			if !ok {
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("bad zone offset %q", s)}}
			}
			if sec < -maxZoneOffset || sec > maxZoneOffset {
				return nil, issueAt("/", CodeOverflow, "zone offset beyond +/-18:00")
			}
			return sec, nil
		}
	case schema.PrimLocation:
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			loc, err := time.LoadLocation(s)
			if err != nil {
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("unknown zone %q", s), Cause: err}}
			}
			return loc, nil
		}
	case schema.PrimUUID:
		return func(v wire.Value) (any, error) {
			s, err := v.AsStr()
			if err != nil {
				return nil, kindIssue("string", v)
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("bad uuid %q", s), Cause: err}}
			}
			return id, nil
		}
	default:
		panic(fmt.Sprintf("attrcodec: unsupported primitive %d", p.Type))
	}
}

// kindIssue reports a wire kind mismatch at the current position.
func kindIssue(want string, v wire.Value) Issues {
	return issueAt("/", CodeInvalidType, fmt.Sprintf("expected %s, got %s", want, v.Kind()))
}

// intDecoder handles the signed integer family: number text to int64,
// then a width check narrowing to the target type.
func intDecoder(narrow func(int64) (any, bool)) decodeFunc {
	return func(v wire.Value) (any, error) {
		n, err := v.AsNum()
		if err != nil {
			return nil, kindIssue("number", v)
		}
		i, err := n.Int64()
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, issueAt("/", CodeOverflow, fmt.Sprintf("number %q out of range", n))
			}
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("not an integer: %q", n), Cause: err}}
		}
		out, ok := narrow(i)
		if !ok {
			return nil, issueAt("/", CodeOverflow, fmt.Sprintf("number %q out of range", n))
		}
		return out, nil
	}
}

// uintDecoder is intDecoder for the unsigned family.
func uintDecoder(narrow func(uint64) (any, bool)) decodeFunc {
	return func(v wire.Value) (any, error) {
		n, err := v.AsNum()
		if err != nil {
			return nil, kindIssue("number", v)
		}
		u, err := n.Uint64()
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, issueAt("/", CodeOverflow, fmt.Sprintf("number %q out of range", n))
			}
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("not an unsigned integer: %q", n), Cause: err}}
		}
		out, ok := narrow(u)
		if !ok {
			return nil, issueAt("/", CodeOverflow, fmt.Sprintf("number %q out of range", n))
		}
		return out, nil
	}
}

// floatDecoder parses at the given bit size so narrowing and range
// errors surface the same way for float32 and float64.
func floatDecoder(bits int, convert func(float64) any) decodeFunc {
	return func(v wire.Value) (any, error) {
		n, err := v.AsNum()
		if err != nil {
			return nil, kindIssue("number", v)
		}
		f, err := strconv.ParseFloat(string(n), bits)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, issueAt("/", CodeOverflow, fmt.Sprintf("number %q out of range", n))
			}
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("not a decimal: %q", n), Cause: err}}
		}
		return convert(f), nil
	}
}

// nameDecoder resolves a closed set of names, such as weekdays and
// months.
func nameDecoder(what string, resolve func(string) (any, bool)) decodeFunc {
	return func(v wire.Value) (any, error) {
		s, err := v.AsStr()
		if err != nil {
			return nil, kindIssue("string", v)
		}
		out, ok := resolve(s)
		if !ok {
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: fmt.Sprintf("unknown %s %q", what, s)}}
		}
		return out, nil
	}
}

// parseTime parses with the schema layout. The RFC 3339 layouts accept
// both fractional and whole-second text, mirroring the canonical
// formatter which drops a zero fraction.
func parseTime(layout, s string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil && layout == time.RFC3339Nano {
		t, err = time.Parse(time.RFC3339, s)
	}
	return t, err
}

// formatYear renders a proleptic ISO year: zero-padded to four digits,
// with an explicit sign outside 0000 through 9999.
func formatYear(y int) string {
	a := int64(y)
	u := uint64(a)
	if a < 0 {
		u = -u
	}
	digits := strconv.FormatUint(u, 10)
	for len(digits) < 4 {
		digits = "0" + digits
	}
	switch {
	case a < 0:
		return "-" + digits
	case u > 9999:
		return "+" + digits
	default:
		return digits
	}
}

// maxZoneOffset is eighteen hours in seconds, the widest offset the ISO
// zone model admits.
const maxZoneOffset = 18 * 3600

// formatZoneOffset renders a UTC offset id: "Z" at zero, otherwise a
// signed HH:MM with a :SS tail only when seconds are present.
func formatZoneOffset(sec int) (string, bool) {
	if sec < -maxZoneOffset || sec > maxZoneOffset {
		return "", false
	}
	if sec == 0 {
		return "Z", true
	}
	sign := "+"
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	h, rem := sec/3600, sec%3600
	m, s := rem/60, rem%60
	if s == 0 {
		return fmt.Sprintf("%s%02d:%02d", sign, h, m), true
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s), true
}

var zoneOffsetPattern = regexp.MustCompile(`^([+-])(\d{2})(?::(\d{2})(?::(\d{2}))?)?$`)

// parseZoneOffset inverts formatZoneOffset, additionally accepting the
// bare hour form.
func parseZoneOffset(s string) (int, bool) {
	if s == "Z" {
		return 0, true
	}
	m := zoneOffsetPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[2])
	min, ss := 0, 0
	if m[3] != "" {
		min, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		ss, _ = strconv.Atoi(m[4])
	}
	if min > 59 || ss > 59 {
		return 0, false
	}
	total := h*3600 + min*60 + ss
	if m[1] == "-" {
		total = -total
	}
	return total, true
}
