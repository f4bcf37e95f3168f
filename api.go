package recwire

import (
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"

	js "github.com/recwire/recwire/jsonschema"
)

// ToWire converts a registered record value to its wire object. Field order
// follows declaration order. Accepts a struct or pointer to struct.
func (e *Engine) ToWire(v any, opts ...EncodeOption) (*Object, error) {
	opt := applyEncodeOptions(opts)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected a registered record value, got %T", v))
	}
	rd, err := e.descriptorOf(rv.Type())
	if err != nil {
		return nil, err
	}
	out, err := e.encodeRecordValue(rd, "", rv.Interface(), opt)
	if err != nil {
		return nil, err
	}
	if opt.validate {
		if err := e.validateWire(rd, out, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ToWire converts a record value using the default engine.
func ToWire(v any, opts ...EncodeOption) (*Object, error) {
	return Default().ToWire(v, opts...)
}

// FromWireValue reconstructs a record from a decoded wire tree (map[string]any
// or *Object), keyed by the record's struct type.
func (e *Engine) FromWireValue(t reflect.Type, data any, opts ...DecodeOption) (any, error) {
	opt := applyDecodeOptions(opts)
	rd, err := e.descriptorOf(t)
	if err != nil {
		return nil, err
	}
	m, ok := asWireMap(data)
	if !ok {
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected object, got %T", data))
	}
	if opt.validate {
		if err := e.validateWire(rd, data, !opt.lenientEnums); err != nil {
			return nil, err
		}
	}
	return e.decodeRecordValue(rd, "", m, opt)
}

// FromWire reconstructs a T from a wire tree. When T carries a discriminator
// and the tree names a subtype, the decoded value is the subtype instance;
// use FromWireDynamic to receive it as any.
func FromWire[T any](data any, opts ...DecodeOption) (T, error) {
	return EngineFromWire[T](Default(), data, opts...)
}

// EngineFromWire is FromWire against a specific engine.
func EngineFromWire[T any](e *Engine, data any, opts ...DecodeOption) (T, error) {
	var zero T
	out, err := e.FromWireValue(typeOf[T](), data, opts...)
	if err != nil {
		return zero, err
	}
	typed, ok := out.(T)
	if !ok {
		return zero, issueAt("/", CodeInvalidType,
			fmt.Sprintf("decoded %T, expected %T; use FromWireDynamic for discriminated subtypes", out, zero))
	}
	return typed, nil
}

// FromWireDynamic decodes against T's descriptor but keeps the result as any,
// so discriminated wire objects come back as their concrete subtype.
func FromWireDynamic[T any](data any, opts ...DecodeOption) (any, error) {
	return Default().FromWireValue(typeOf[T](), data, opts...)
}

// ToJSON marshals a record value straight to JSON bytes.
func ToJSON(v any, opts ...EncodeOption) ([]byte, error) {
	return Default().ToJSON(v, opts...)
}

// ToJSON marshals a record value straight to JSON bytes.
func (e *Engine) ToJSON(v any, opts ...EncodeOption) ([]byte, error) {
	obj, err := e.ToWire(v, opts...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// FromJSON unmarshals JSON bytes and reconstructs a T.
func FromJSON[T any](data []byte, opts ...DecodeOption) (T, error) {
	return EngineFromJSON[T](Default(), data, opts...)
}

// EngineFromJSON is FromJSON against a specific engine.
func EngineFromJSON[T any](e *Engine, data []byte, opts ...DecodeOption) (T, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		var zero T
		return zero, issueAt("/", CodeParseError, err.Error())
	}
	return EngineFromWire[T](e, tree, opts...)
}

// JSONSchema renders the standalone schema document for T.
func JSONSchema[T any](opts ...SchemaOption) (*js.Schema, error) {
	return Default().JSONSchemaFor(typeOf[T](), opts...)
}

// JSONSchemaFor renders the standalone schema document for a struct type.
func (e *Engine) JSONSchemaFor(t reflect.Type, opts ...SchemaOption) (*js.Schema, error) {
	opt := applySchemaOptions(opts)
	rd, err := e.descriptorOf(t)
	if err != nil {
		return nil, err
	}
	return e.standaloneSchema(rd, opt)
}

// EmbeddableJSONSchema renders T and every record it references as a
// definitions map for embedding in an API document.
func EmbeddableJSONSchema[T any](opts ...SchemaOption) (js.Definitions, error) {
	return Default().EmbeddableJSONSchemaFor(typeOf[T](), opts...)
}

// EmbeddableJSONSchemaFor is EmbeddableJSONSchema for a struct type.
func (e *Engine) EmbeddableJSONSchemaFor(t reflect.Type, opts ...SchemaOption) (js.Definitions, error) {
	opt := applySchemaOptions(opts)
	rd, err := e.descriptorOf(t)
	if err != nil {
		return nil, err
	}
	return e.embeddableSchema(rd, opt)
}

// AllJSONSchemas renders every record registered on the engine into one
// definitions map.
func (e *Engine) AllJSONSchemas(opts ...SchemaOption) (js.Definitions, error) {
	return e.allSchemas(applySchemaOptions(opts))
}

// AllJSONSchemas renders every record registered on the default engine.
func AllJSONSchemas(opts ...SchemaOption) (js.Definitions, error) {
	return Default().AllJSONSchemas(opts...)
}

// JSONSchemaByName renders the standalone schema for a record by its wire
// name.
func (e *Engine) JSONSchemaByName(name string, opts ...SchemaOption) (*js.Schema, error) {
	rd, ok := e.byName[name]
	if !ok {
		return nil, issueAt("/", CodeUnknownRecord, "no record registered under name "+name)
	}
	return e.standaloneSchema(rd, applySchemaOptions(opts))
}

// JSONSchemaByName renders a named record's schema from the default engine.
func JSONSchemaByName(name string, opts ...SchemaOption) (*js.Schema, error) {
	return Default().JSONSchemaByName(name, opts...)
}

// validateWire runs the configured validator against the record's draft
// schema. Validation is opt-in because it needs an adapter wired in.
func (e *Engine) validateWire(rd *RecordDescriptor, data any, enumConstraints bool) error {
	v := e.activeValidator()
	if v == nil {
		return Issues{Issue{
			Path:    "/",
			Code:    CodeConfig,
			Message: "validation requested but no validator is registered",
			Hint:    "blank-import github.com/recwire/recwire/validate or call RegisterValidator",
		}}
	}
	schema, err := e.standaloneSchema(rd, schemaOptions{dialect: Draft06, enumConstraints: enumConstraints})
	if err != nil {
		return err
	}
	plain, err := toPlainTree(data)
	if err != nil {
		return err
	}
	if err := v.Validate(plain, schema); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// toPlainTree normalizes *Object wrappers into plain maps for validators.
func toPlainTree(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, issueAt("/", CodeParseError, err.Error())
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, issueAt("/", CodeParseError, err.Error())
	}
	return out, nil
}
