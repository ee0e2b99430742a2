package jsonschema

// Schema is a minimal JSON Schema representation used for export.
// It carries only the vocabulary the exporter emits; extend
// incrementally as the mapping grows.
type Schema struct {
	// Core
	Type            string   `json:"type,omitempty"`
	Format          string   `json:"format,omitempty"`
	Pattern         string   `json:"pattern,omitempty"`
	Enum            []string `json:"enum,omitempty"`
	ContentEncoding string   `json:"contentEncoding,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items       *Schema   `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`

	// Negation; {"not": {}} admits nothing.
	Not *Schema `json:"not,omitempty"`

	// Recursion
	Ref  string             `json:"$ref,omitempty"`
	Defs map[string]*Schema `json:"$defs,omitempty"`
}
