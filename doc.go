package recwire

// Package recwire provides:
//
// - Type-driven JSON Schema generation for registered Go structs across four
//   dialects (Draft 4, Draft 6, Swagger 2.0, OpenAPI 3)
// - A bidirectional wire codec (ToWire/FromWire/ToJSON/FromJSON) derived from
//   the same type registrations
// - A stable error model via Issues (JSON Pointer, code, message)
// - Extensible scalar codecs, enums, unions and discriminated subtypes
//
// Design policy:
// - Keep only public APIs in the root package; put add-on codecs under codec/,
//   the validator adapter under validate/, and the CLI under cmd/recwire.
// - Registries fill at program initialization; all derived artifacts (shapes,
//   schemas, codec closures) are cached lazily.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  recwire.MustRegister[Product](recwire.Default(), recwire.Doc("A product in the catalog"))
//
//  schema, err := recwire.JSONSchema[Product](recwire.WithDialect(recwire.OpenAPI3))
//
//  wire, err := recwire.ToWire(product)
//  back, err := recwire.FromWire[Product](wire)
//
