package jsonschema

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Schema is the JSON Schema document representation produced by the engine.
// One struct covers every supported dialect; dialect-specific keys (nullable,
// discriminator, x-* extensions) are simply left unset where a dialect does
// not use them.
type Schema struct {
	// Core
	SchemaURI string `json:"$schema,omitempty"`
	Ref       string `json:"$ref,omitempty"`
	// Type holds a string, or a []any of strings for draft-style nullable
	// types.
	Type       any     `json:"type,omitempty"`
	Format     string  `json:"format,omitempty"`
	Pattern    string  `json:"pattern,omitempty"`
	Default    any     `json:"default,omitempty"`
	Enum       []any   `json:"enum,omitempty"`
	MultipleOf float64 `json:"multipleOf,omitempty"`

	// Annotations
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Examples    []any  `json:"examples,omitempty"`
	// Example carries the single-example form used by Swagger 2.0.
	Example   any   `json:"example,omitempty"`
	ReadOnly  *bool `json:"readOnly,omitempty"`
	WriteOnly *bool `json:"writeOnly,omitempty"`
	Nullable  bool  `json:"nullable,omitempty"`

	// String
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`

	// Object. Properties preserve insertion order; Required lists names in
	// the order their properties were added.
	Properties           *Properties `json:"properties,omitempty"`
	Required             []string    `json:"required,omitempty"`
	AdditionalProperties any         `json:"additionalProperties,omitempty"` // *Schema or false

	// Array. Items holds a *Schema, or a []*Schema for fixed tuples.
	Items       any  `json:"items,omitempty"`
	MinItems    *int `json:"minItems,omitempty"`
	MaxItems    *int `json:"maxItems,omitempty"`
	UniqueItems bool `json:"uniqueItems,omitempty"`

	// Composition
	OneOf []*Schema `json:"oneOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`

	Definitions   Definitions    `json:"definitions,omitempty"`
	Discriminator *Discriminator `json:"discriminator,omitempty"`

	// Extra carries dialect extensions (x-enum-name, x-*). Keys are merged
	// into the document on marshal, after the struct's own fields.
	Extra map[string]any `json:"-"`
}

// Definitions maps a record name to its embeddable schema fragment.
type Definitions map[string]*Schema

// Properties is an insertion-ordered properties map. Generated documents keep
// field declaration order.
type Properties struct {
	keys []string
	m    map[string]*Schema
}

// NewProperties returns an empty ordered properties map.
func NewProperties() *Properties {
	return &Properties{m: make(map[string]*Schema)}
}

// Set adds or replaces a property. A replaced property keeps its original
// position.
func (p *Properties) Set(name string, s *Schema) *Properties {
	if _, ok := p.m[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.m[name] = s
	return p
}

// Get returns the schema for name, or nil.
func (p *Properties) Get(name string) *Schema {
	if p == nil {
		return nil
	}
	return p.m[name]
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Clone returns a copy sharing the property schemas.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	out := &Properties{
		keys: append([]string(nil), p.keys...),
		m:    make(map[string]*Schema, len(p.m)),
	}
	for k, v := range p.m {
		out.m[k] = v
	}
	return out
}

// MarshalJSON writes the properties in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Discriminator is the OpenAPI 3 discriminator object.
type Discriminator struct {
	PropertyName string `json:"propertyName"`
}

// MarshalJSON merges Extra keys into the serialized document.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type plain Schema
	b, err := json.Marshal((*plain)(s))
	if err != nil || len(s.Extra) == 0 {
		return b, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		m[k] = v
	}
	return json.Marshal(m)
}

// Clone returns a copy of s with fresh containers, so the copy can be
// annotated without mutating shared fragments (codec schemas are shared
// across every field that uses the codec).
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Enum != nil {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if s.Examples != nil {
		out.Examples = append([]any(nil), s.Examples...)
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	out.Properties = s.Properties.Clone()
	if s.OneOf != nil {
		out.OneOf = append([]*Schema(nil), s.OneOf...)
	}
	if s.AllOf != nil {
		out.AllOf = append([]*Schema(nil), s.AllOf...)
	}
	if s.Definitions != nil {
		out.Definitions = make(Definitions, len(s.Definitions))
		for k, v := range s.Definitions {
			out.Definitions[k] = v
		}
	}
	if s.Extra != nil {
		out.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

// IntPtr returns a pointer to n, for MinItems/MaxItems style fields.
func IntPtr(n int) *int { return &n }

// BoolPtr returns a pointer to b, for ReadOnly/WriteOnly style fields.
func BoolPtr(b bool) *bool { return &b }
