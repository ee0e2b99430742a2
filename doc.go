package attrcodec

// Package attrcodec derives encoder/decoder pairs between Go values and
// the dynamic attribute values of an item store:
//
// - A closed schema model under schema/ (primitives, optional, tuple,
//   sequence, map, either, record, enum, transform, lazy, fail, meta)
// - One-time derivation via Derive/DeriveAny; the resulting Codec is a
//   pure encode/decode pair with no reflection at call time
// - A stable error model via Issues (JSON Pointer, code, message)
// - The wire value union and its JSON/CBOR/YAML bridges under wire/
// - Schemas as data: serialize with FormatSchema, materialize with
//   ParseSchema, and drive the result through DeriveAny
//
// Design policy:
// - Keep only public APIs in the root package; schema construction lives
//   in schema/, the wire model in wire/, and the CLI under cmd/attrcodec.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  s := buildSchema()
//  codec := attrcodec.Derive(s)
//
//  av, err := codec.Encode(domain)
//  data, err := wire.ToJSON(av)
//
//  back, err := codec.Decode(av)
//
