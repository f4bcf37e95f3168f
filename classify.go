package recwire

import (
	"reflect"

	"go.uber.org/zap"
)

// classify maps a Go type to its Shape, memoized per type so shape pointers
// are stable cache keys. Struct types classify to record references without
// consulting the record registry; resolution happens at use, which is what
// lets self- and mutually-referential records register in any order.
func (e *Engine) classify(t reflect.Type) *Shape {
	if cached, ok := e.classifyCache.Load(t); ok {
		return cached.(*Shape)
	}
	s := e.classifyUncached(t)
	actual, _ := e.classifyCache.LoadOrStore(t, s)
	return actual.(*Shape)
}

func (e *Engine) classifyUncached(t reflect.Type) *Shape {
	// Registered scalars win over structural classification: time.Time is a
	// struct and uuid.UUID an array, but both are wire scalars.
	if _, ok := e.scalars[t]; ok {
		return &Shape{Kind: KindScalar, goType: t}
	}
	if es, ok := e.enums[t]; ok {
		return &Shape{Kind: KindEnum, Enum: es, goType: t}
	}

	if prim, ok := primitiveOf(t); ok {
		if t.PkgPath() != "" {
			// Defined type over a primitive: a newtype wrapper, transparent
			// for schema and codec purposes.
			return &Shape{Kind: KindWrapped, Elem: &Shape{Kind: KindPrimitive, Prim: prim}, goType: t}
		}
		return &Shape{Kind: KindPrimitive, Prim: prim, goType: t}
	}

	switch t.Kind() {
	case reflect.Pointer:
		return &Shape{Kind: KindOptional, Elem: e.classify(t.Elem()), goType: t}
	case reflect.Slice, reflect.Array:
		return &Shape{Kind: KindSequence, Elem: e.classify(t.Elem()), goType: t}
	case reflect.Map:
		if t.Elem() == emptyStructType {
			return &Shape{Kind: KindSet, Elem: e.classify(t.Key()), goType: t}
		}
		return &Shape{Kind: KindMapping, Key: e.classify(t.Key()), Value: e.classify(t.Elem()), goType: t}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return &Shape{Kind: KindAny, goType: t}
		}
	case reflect.Struct:
		return &Shape{Kind: KindRecord, goType: t}
	}

	e.warnOnce("classify:"+t.String(),
		"unable to classify type, treating as opaque object",
		zap.String("type", t.String()))
	return &Shape{Kind: KindOpaque, goType: t}
}

var emptyStructType = reflect.TypeOf(struct{}{})

// resolveShape rewrites Of[T] references inside a declared shape expression
// into classified shapes. Nodes without deferred references are returned
// unchanged so pointer identity (and with it codec memoization) is preserved.
func (e *Engine) resolveShape(s *Shape) *Shape {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case kindDeferred:
		return e.classify(s.goType)
	case KindOptional, KindNullable, KindSequence, KindVariadicTuple, KindSet, KindWrapped:
		elem := e.resolveShape(s.Elem)
		if elem == s.Elem {
			return s
		}
		out := *s
		out.Elem = elem
		return &out
	case KindMapping:
		k, v := e.resolveShape(s.Key), e.resolveShape(s.Value)
		if k == s.Key && v == s.Value {
			return s
		}
		out := *s
		out.Key, out.Value = k, v
		return &out
	case KindFixedTuple:
		return e.resolveShapeList(s, s.Elems, func(out *Shape, elems []*Shape) { out.Elems = elems })
	case KindUnion:
		return e.resolveShapeList(s, s.Variants, func(out *Shape, elems []*Shape) { out.Variants = elems })
	default:
		return s
	}
}

func (e *Engine) resolveShapeList(s *Shape, list []*Shape, set func(*Shape, []*Shape)) *Shape {
	changed := false
	resolved := make([]*Shape, len(list))
	for i, el := range list {
		resolved[i] = e.resolveShape(el)
		if resolved[i] != el {
			changed = true
		}
	}
	if !changed {
		return s
	}
	out := *s
	set(&out, resolved)
	return &out
}
