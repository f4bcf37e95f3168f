package recwire

import (
	"reflect"
)

// Kind identifies the classified structural form of a type expression.
type Kind int

const (
	KindPrimitive Kind = iota
	KindOptional
	KindNullable
	KindUnion
	KindLiteral
	KindEnum
	KindMapping
	KindSequence
	KindFixedTuple
	KindVariadicTuple
	KindSet
	KindRecord
	KindWrapped
	KindScalar
	KindAny
	KindOpaque
	// kindDeferred marks a Go type reference produced by Of[T]; the engine
	// resolves it during registration.
	kindDeferred
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindOptional:
		return "optional"
	case KindNullable:
		return "nullable"
	case KindUnion:
		return "union"
	case KindLiteral:
		return "literal"
	case KindEnum:
		return "enum"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindFixedTuple:
		return "tuple"
	case KindVariadicTuple:
		return "variadic tuple"
	case KindSet:
		return "set"
	case KindRecord:
		return "record"
	case KindWrapped:
		return "wrapped"
	case KindScalar:
		return "scalar"
	case KindAny:
		return "any"
	case KindOpaque:
		return "opaque"
	default:
		return "deferred"
	}
}

// Primitive is the JSON-encodable base kind of a primitive shape.
type Primitive int

const (
	PrimString Primitive = iota
	PrimInt
	PrimBool
	PrimFloat
)

func (p Primitive) schemaType() string {
	switch p {
	case PrimInt:
		return "integer"
	case PrimBool:
		return "boolean"
	case PrimFloat:
		return "number"
	default:
		return "string"
	}
}

// Shape is the classified form of a type expression. Exactly the fields
// relevant to Kind are populated; the rest stay zero.
type Shape struct {
	Kind Kind
	Prim Primitive

	// Elem is the inner shape for Optional, Nullable, Sequence,
	// VariadicTuple, Set and Wrapped.
	Elem *Shape
	// Key and Value describe Mapping shapes.
	Key   *Shape
	Value *Shape
	// Elems lists a FixedTuple's element shapes in order.
	Elems []*Shape
	// Variants lists a Union's variants in declaration order.
	Variants []*Shape
	// Values holds Literal values verbatim.
	Values []any
	// Enum describes Enum shapes.
	Enum *EnumShape

	// goType is the identity key: the record's struct type for KindRecord,
	// the registered scalar type for KindScalar, the unresolved Go type for
	// kindDeferred.
	goType reflect.Type
}

// EnumShape is a registered enumeration: an ordered member list plus the
// members' shared underlying primitive.
type EnumShape struct {
	Name    string
	Members []EnumMember
	Prim    Primitive
	goType  reflect.Type
}

// EnumMember pairs a member name with its underlying wire value.
type EnumMember struct {
	Name  string
	Value any
}

// Members is a declaration-ordered enum member list.
type Members []EnumMember

// Of references the Go type T; the engine classifies it when the shape is
// used in a registration.
func Of[T any]() *Shape {
	return &Shape{Kind: kindDeferred, goType: reflect.TypeOf((*T)(nil)).Elem()}
}

// String returns the string primitive shape.
func String() *Shape { return &Shape{Kind: KindPrimitive, Prim: PrimString} }

// Int returns the integer primitive shape.
func Int() *Shape { return &Shape{Kind: KindPrimitive, Prim: PrimInt} }

// Bool returns the boolean primitive shape.
func Bool() *Shape { return &Shape{Kind: KindPrimitive, Prim: PrimBool} }

// Float returns the number primitive shape.
func Float() *Shape { return &Shape{Kind: KindPrimitive, Prim: PrimFloat} }

// Any returns the unconstrained shape ({} in schema output).
func Any() *Shape { return &Shape{Kind: KindAny} }

// Optional wraps inner so that absence is allowed. The enclosing field
// becomes non-required; absence does not encode as schema nullability.
func Optional(inner *Shape) *Shape { return &Shape{Kind: KindOptional, Elem: inner} }

// Nullable wraps inner so that an explicit JSON null is allowed on the wire.
// OpenAPI-family dialects emit their nullable markers; other dialects emit
// oneOf [inner, null].
func Nullable(inner *Shape) *Shape { return &Shape{Kind: KindNullable, Elem: inner} }

// Union declares an ordered variant list. Encode and decode try variants in
// declaration order and accept the first structural match.
func Union(variants ...*Shape) *Shape { return &Shape{Kind: KindUnion, Variants: variants} }

// Literal declares a fixed set of allowed JSON-primitive values, nil included.
func Literal(values ...any) *Shape { return &Shape{Kind: KindLiteral, Values: values} }

// SeqOf declares a homogeneous sequence of elem.
func SeqOf(elem *Shape) *Shape { return &Shape{Kind: KindSequence, Elem: elem} }

// SetOf declares an unordered collection of unique elements.
func SetOf(elem *Shape) *Shape { return &Shape{Kind: KindSet, Elem: elem} }

// MapOf declares a mapping. Keys round-trip through their scalar string form.
func MapOf(key, value *Shape) *Shape { return &Shape{Kind: KindMapping, Key: key, Value: value} }

// Tuple declares a fixed-length heterogeneous array.
func Tuple(elems ...*Shape) *Shape { return &Shape{Kind: KindFixedTuple, Elems: elems} }

// Variadic declares an any-length tuple of elem (array on the wire).
func Variadic(elem *Shape) *Shape { return &Shape{Kind: KindVariadicTuple, Elem: elem} }

// typeOf is a shorthand for reflect.TypeOf over a type parameter.
func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }
