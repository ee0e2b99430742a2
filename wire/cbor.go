package wire

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// The CBOR bridge carries the same tagged tree as the JSON bridge, in
// deterministic core encoding: map keys are sorted, so equal values
// always serialize to identical bytes. Binary payloads travel as native
// byte strings rather than base64.

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR encoder mode: %v", err))
	}
	cborEnc = em

	decOpts := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}
	dm, err := decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR decoder mode: %v", err))
	}
	cborDec = dm
}

// ToCBOR serializes a value into deterministic tagged CBOR.
func ToCBOR(v Value) ([]byte, error) {
	t, err := toTagged(v)
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(t)
}

// FromCBOR parses tagged CBOR back into a value.
func FromCBOR(data []byte) (Value, error) {
	var raw any
	if err := cborDec.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("wire: invalid CBOR: %w", err)
	}
	return fromTagged(raw)
}
