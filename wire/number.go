package wire

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
)

// Number carries an arbitrary-precision decimal as text, the way the
// store itself does. The text is preserved exactly through encode,
// serialize and decode; conversion to a machine type happens only at the
// edges, where it can fail with a range or syntax error.
type Number string

// numberPattern accepts an optional sign, an integer part and/or a
// fraction, and an optional base-10 exponent. It intentionally rejects
// "inf", "nan" and hex forms: the store has no representation for them.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?$`)

// Check reports whether the text is a well-formed decimal number.
func (n Number) Check() error {
	if !numberPattern.MatchString(string(n)) {
		return fmt.Errorf("wire: malformed number %q", string(n))
	}
	return nil
}

func (n Number) String() string { return string(n) }

// Int64 converts the text to an int64. Fractional or out-of-range text
// fails.
func (n Number) Int64() (int64, error) {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: number %q is not an int64: %w", string(n), err)
	}
	return v, nil
}

// Uint64 converts the text to a uint64.
func (n Number) Uint64() (uint64, error) {
	v, err := strconv.ParseUint(string(n), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: number %q is not a uint64: %w", string(n), err)
	}
	return v, nil
}

// Float64 converts the text to a float64, rounding if the decimal does
// not fit exactly.
func (n Number) Float64() (float64, error) {
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, fmt.Errorf("wire: number %q is not a float64: %w", string(n), err)
	}
	return v, nil
}

// BigInt converts the text to a big.Int. The text must be an integer
// literal without fraction or exponent.
func (n Number) BigInt() (*big.Int, error) {
	v, ok := new(big.Int).SetString(string(n), 10)
	if !ok {
		return nil, fmt.Errorf("wire: number %q is not an integer", string(n))
	}
	return v, nil
}

// BigFloat converts the text to a big.Float with enough precision to hold
// the decimal exactly for typical store payloads.
func (n Number) BigFloat() (*big.Float, error) {
	v, _, err := big.ParseFloat(string(n), 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("wire: number %q is not a decimal: %w", string(n), err)
	}
	return v, nil
}

// Cmp compares two numbers numerically when both carry valid decimal
// text, so "1.50" equals "1.5" and "9" sorts below "10". When either text
// is malformed the comparison falls back to plain text order, which keeps
// Cmp total and deterministic.
func (n Number) Cmp(o Number) int {
	a, aok := new(big.Rat).SetString(string(n))
	b, bok := new(big.Rat).SetString(string(o))
	if aok && bok {
		return a.Cmp(b)
	}
	switch {
	case n == o:
		return 0
	case n < o:
		return -1
	default:
		return 1
	}
}
