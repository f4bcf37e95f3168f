package recwire

import (
	"reflect"

	js "github.com/recwire/recwire/jsonschema"
)

// FieldCodec converts one scalar Go type to and from its wire form and
// contributes the matching schema fragment. A codec handed a value of the
// wrong type must return a typed issue, never pass it through: union dispatch
// depends on the mismatch being reported.
type FieldCodec interface {
	// ToWire converts a value of the registered type to a JSON-compatible
	// value.
	ToWire(v any) (any, error)
	// FromWire converts a wire value back to the registered type.
	FromWire(v any) (any, error)
	// JSONSchema returns the schema fragment for the wire form. The engine
	// clones the fragment before annotating it.
	JSONSchema() *js.Schema
}

// RegisterCodec binds a codec to type T on this engine. Registration is
// additive; re-registering the same type replaces the codec (last writer
// wins), which is how default scalar handling is customized. Registering
// concurrently with active encode/decode calls is unsupported.
func RegisterCodec[T any](e *Engine, c FieldCodec) {
	e.scalars[typeOf[T]()] = c
}

// LookupCodec returns the codec registered for T, if any.
func LookupCodec[T any](e *Engine) (FieldCodec, bool) {
	c, ok := e.scalars[typeOf[T]()]
	return c, ok
}

// RegisterEnum registers the members of enumeration type T in declaration
// order. Member values must share one underlying primitive kind.
func RegisterEnum[T any](e *Engine, members Members) (*EnumShape, error) {
	t := typeOf[T]()
	prim, ok := primitiveOf(t)
	if !ok {
		return nil, issueAt("/", CodeConfig, "enum underlying type must be a JSON primitive: "+t.String())
	}
	if len(members) == 0 {
		return nil, issueAt("/", CodeConfig, "enum requires at least one member: "+t.String())
	}
	es := &EnumShape{
		Name:    t.Name(),
		Members: append(Members(nil), members...),
		Prim:    prim,
		goType:  t,
	}
	e.enums[t] = es
	return es, nil
}

// MustRegisterEnum is RegisterEnum panicking on configuration errors.
func MustRegisterEnum[T any](e *Engine, members Members) *EnumShape {
	es, err := RegisterEnum[T](e, members)
	if err != nil {
		panic(err)
	}
	return es
}

// primitiveOf maps a reflect kind to its JSON primitive, when it has one.
func primitiveOf(t reflect.Type) (Primitive, bool) {
	switch t.Kind() {
	case reflect.String:
		return PrimString, true
	case reflect.Bool:
		return PrimBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return PrimInt, true
	case reflect.Float32, reflect.Float64:
		return PrimFloat, true
	default:
		return 0, false
	}
}
