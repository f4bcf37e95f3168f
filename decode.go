package recwire

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type decodeFunc func(e *Engine, path string, v any, opt decodeOptions) (any, error)

// decoderFor returns the memoized decoder closure for a shape, mirroring
// encoderFor.
func (e *Engine) decoderFor(s *Shape) decodeFunc {
	if f, ok := e.decodeCache.Load(s); ok {
		return f.(decodeFunc)
	}
	f := e.buildDecoder(s)
	actual, _ := e.decodeCache.LoadOrStore(s, f)
	return actual.(decodeFunc)
}

func (e *Engine) decodeShape(s *Shape, path string, v any, opt decodeOptions) (any, error) {
	if v == nil && s.Kind != KindOptional && s.Kind != KindNullable {
		return nil, nil
	}
	return e.decoderFor(s)(e, path, v, opt)
}

func (e *Engine) buildDecoder(s *Shape) decodeFunc {
	switch s.Kind {
	case KindPrimitive:
		prim := s.Prim
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			return decodePrimitive(prim, path, v)
		}
	case KindOptional, KindNullable:
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			if v == nil {
				return nil, nil
			}
			return e.decodeShape(s.Elem, path, v, opt)
		}
	case KindUnion:
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			// First variant that accepts the wire value wins, in declaration
			// order. Variants with identical wire structure are not
			// disambiguated here; that is what discriminators are for.
			for _, variant := range s.Variants {
				out, err := e.decodeShape(variant, path, v, opt)
				if err == nil {
					return out, nil
				}
			}
			return nil, issueAt(path, CodeUnionExhausted,
				fmt.Sprintf("no union variant accepted value of type %T", v))
		}
	case KindLiteral:
		values := s.Values
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			for _, lv := range values {
				if literalEqual(lv, v) {
					return lv, nil
				}
			}
			return nil, issueAt(path, CodeInvalidEnum,
				fmt.Sprintf("%v is not an allowed literal value", v))
		}
	case KindEnum:
		es := s.Enum
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			for _, m := range es.Members {
				if wireValueEqual(es.Prim, m.Value, v) {
					return m.Value, nil
				}
			}
			return nil, issueAt(path, CodeInvalidEnum,
				fmt.Sprintf("%v is not a member of %s", v, es.Name))
		}
	case KindMapping:
		return e.buildMappingDecoder(s)
	case KindSequence, KindVariadicTuple:
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			items, ok := v.([]any)
			if !ok {
				return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected array, got %T", v))
			}
			out := make([]any, len(items))
			for i, item := range items {
				dv, err := e.decodeShape(s.Elem, path+"/"+strconv.Itoa(i), item, opt)
				if err != nil {
					return nil, err
				}
				out[i] = dv
			}
			if s.goType != nil && s.goType.Kind() == reflect.Slice {
				return buildTypedSlice(s.goType, out, path)
			}
			return out, nil
		}
	case KindFixedTuple:
		elems := s.Elems
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			items, ok := v.([]any)
			if !ok {
				return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected array, got %T", v))
			}
			if len(items) != len(elems) {
				return nil, issueAt(path, CodeInvalidType,
					fmt.Sprintf("tuple length %d, expected %d", len(items), len(elems)))
			}
			out := make([]any, len(items))
			for i, item := range items {
				dv, err := e.decodeShape(elems[i], path+"/"+strconv.Itoa(i), item, opt)
				if err != nil {
					return nil, err
				}
				out[i] = dv
			}
			return out, nil
		}
	case KindSet:
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			items, ok := v.([]any)
			if !ok {
				return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected array, got %T", v))
			}
			if s.goType == nil || s.goType.Kind() != reflect.Map {
				out := make([]any, 0, len(items))
				for i, item := range items {
					dv, err := e.decodeShape(s.Elem, path+"/"+strconv.Itoa(i), item, opt)
					if err != nil {
						return nil, err
					}
					out = append(out, dv)
				}
				return out, nil
			}
			set := reflect.MakeMapWithSize(s.goType, len(items))
			for i, item := range items {
				dv, err := e.decodeShape(s.Elem, path+"/"+strconv.Itoa(i), item, opt)
				if err != nil {
					return nil, err
				}
				key := reflect.New(s.goType.Key()).Elem()
				if err := convertAssign(key, dv, path); err != nil {
					return nil, err
				}
				set.SetMapIndex(key, reflect.ValueOf(struct{}{}))
			}
			return set.Interface(), nil
		}
	case KindRecord:
		declared := s.goType
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			rd, err := e.descriptorOf(declared)
			if err != nil {
				return nil, err
			}
			m, ok := asWireMap(v)
			if !ok {
				return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected object, got %T", v))
			}
			out, err := e.decodeRecordValue(rd, path, m, opt)
			if err != nil {
				return nil, err
			}
			// Discriminated input decodes to its concrete subtype, which a
			// field declared as the base type cannot hold. Keep the base's
			// view of the object; subtype-only keys fall away.
			if out != nil && reflect.TypeOf(out) != declared {
				return e.decodeRecordFields(rd, path, m, opt)
			}
			return out, nil
		}
	case KindWrapped:
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			dv, err := e.decodeShape(s.Elem, path, v, opt)
			if err != nil || s.goType == nil || dv == nil {
				return dv, err
			}
			rv := reflect.ValueOf(dv)
			if rv.Type().ConvertibleTo(s.goType) {
				return rv.Convert(s.goType).Interface(), nil
			}
			return dv, nil
		}
	case KindScalar:
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			codec, ok := e.scalars[s.goType]
			if !ok {
				return nil, issueAt(path, CodeUnknownShape, "no codec registered for "+s.goType.String())
			}
			out, err := codec.FromWire(v)
			if err != nil {
				return nil, prefixIssuePaths(err, path)
			}
			return out, nil
		}
	default: // KindAny, KindOpaque
		return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
			return v, nil
		}
	}
}

func (e *Engine) buildMappingDecoder(s *Shape) decodeFunc {
	return func(e *Engine, path string, v any, opt decodeOptions) (any, error) {
		m, ok := asWireMap(v)
		if !ok {
			return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected object, got %T", v))
		}
		if s.goType == nil || s.goType.Kind() != reflect.Map {
			out := make(map[string]any, len(m))
			for k, item := range m {
				dv, err := e.decodeShape(s.Value, path+"/"+k, item, opt)
				if err != nil {
					return nil, err
				}
				out[k] = dv
			}
			return out, nil
		}
		out := reflect.MakeMapWithSize(s.goType, len(m))
		for k, item := range m {
			// Keys round-trip through their scalar string wire form.
			dk, err := e.decodeShape(s.Key, path, k, opt)
			if err != nil {
				return nil, err
			}
			key := reflect.New(s.goType.Key()).Elem()
			if err := convertAssign(key, dk, path); err != nil {
				return nil, err
			}
			dv, err := e.decodeShape(s.Value, path+"/"+k, item, opt)
			if err != nil {
				return nil, err
			}
			val := reflect.New(s.goType.Elem()).Elem()
			if err := convertAssign(val, dv, path+"/"+k); err != nil {
				return nil, err
			}
			out.SetMapIndex(key, val)
		}
		return out.Interface(), nil
	}
}

// decodeRecordValue constructs a record instance from a wire object. Records
// participating in discriminated inheritance require the tag; it selects the
// concrete subtype decoder.
func (e *Engine) decodeRecordValue(rd *RecordDescriptor, path string, m map[string]any, opt decodeOptions) (any, error) {
	if rd.discriminator != "" {
		raw, present := m[rd.discriminator]
		if !present {
			return nil, issueAt(path+"/"+rd.discriminator, CodeDiscriminatorMissing,
				"missing discriminator property "+rd.discriminator)
		}
		tag, ok := raw.(string)
		if !ok {
			return nil, issueAt(path+"/"+rd.discriminator, CodeInvalidType,
				fmt.Sprintf("discriminator must be a string, got %T", raw))
		}
		if tag != rd.Name {
			sub := rd.findSubtype(tag)
			if sub == nil {
				return nil, issueAt(path+"/"+rd.discriminator, CodeDiscriminatorUnknown,
					"unknown subtype tag: "+tag)
			}
			rd = sub
		}
	}
	return e.decodeRecordFields(rd, path, m, opt)
}

// decodeRecordFields fills a fresh rd instance from the wire object, without
// discriminator dispatch.
func (e *Engine) decodeRecordFields(rd *RecordDescriptor, path string, m map[string]any, opt decodeOptions) (any, error) {
	rv := reflect.New(rd.goType).Elem()
	for _, f := range rd.all {
		if f.Property {
			continue
		}
		raw, present := m[f.WireName]
		if !present {
			if dv, ok := f.fieldDefault(); ok {
				if err := convertAssign(rv.FieldByIndex(f.index), dv, path+"/"+f.WireName); err != nil {
					return nil, err
				}
				continue
			}
			if f.Required() {
				return nil, issueAt(path+"/"+f.WireName, CodeRequired, "missing required field "+f.WireName)
			}
			continue
		}
		dv, err := e.decodeShape(f.Shape, path+"/"+f.WireName, raw, opt)
		if err != nil {
			if opt.lenientEnums && hasCode(err, CodeInvalidEnum) {
				e.log.Warn("unrecognized enum value passed through",
					zap.String("record", rd.Name),
					zap.String("field", f.WireName),
					zap.Any("value", raw))
				dv = raw
			} else {
				return nil, err
			}
		}
		if err := convertAssign(rv.FieldByIndex(f.index), dv, path+"/"+f.WireName); err != nil {
			return nil, err
		}
	}
	return rv.Interface(), nil
}

func decodePrimitive(prim Primitive, path string, v any) (any, error) {
	switch prim {
	case PrimString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case PrimBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case PrimInt:
		if n, ok := asInt64(v); ok {
			return n, nil
		}
	case PrimFloat:
		if f, ok := asFloat64(v); ok {
			return f, nil
		}
	}
	return nil, issueAt(path, CodeInvalidType,
		fmt.Sprintf("expected %s, got %T", prim.schemaType(), v))
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// literalEqual compares a declared literal value with a wire value, treating
// numeric forms as interchangeable.
func literalEqual(lit, wire any) bool {
	if lit == nil || wire == nil {
		return lit == nil && wire == nil
	}
	if lit == wire {
		return true
	}
	lf, lok := asFloat64(lit)
	wf, wok := asFloat64(wire)
	return lok && wok && lf == wf
}

// wireValueEqual compares an enum member's underlying value with a wire value.
func wireValueEqual(prim Primitive, member, wire any) bool {
	mv := reflect.ValueOf(member)
	switch prim {
	case PrimString:
		s, ok := wire.(string)
		return ok && mv.String() == s
	case PrimBool:
		b, ok := wire.(bool)
		return ok && mv.Bool() == b
	case PrimInt:
		n, ok := asInt64(wire)
		return ok && mv.Int() == n
	default:
		f, ok := asFloat64(wire)
		return ok && mv.Float() == f
	}
}

// convertAssign stores a decoded value into dst, bridging the gap between
// generic decode output and concrete field types.
func convertAssign(dst reflect.Value, v any, path string) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		p := reflect.New(dst.Type().Elem())
		if err := convertAssign(p.Elem(), v, path); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case reflect.Interface:
		if dst.NumMethod() == 0 {
			dst.Set(rv)
			return nil
		}
	case reflect.Slice:
		if items, ok := v.([]any); ok {
			out := reflect.MakeSlice(dst.Type(), len(items), len(items))
			for i, item := range items {
				if err := convertAssign(out.Index(i), item, path); err != nil {
					return err
				}
			}
			dst.Set(out)
			return nil
		}
	case reflect.Map:
		if m, ok := v.(map[string]any); ok && dst.Type().Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(dst.Type(), len(m))
			for k, item := range m {
				val := reflect.New(dst.Type().Elem()).Elem()
				if err := convertAssign(val, item, path); err != nil {
					return err
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), val)
			}
			dst.Set(out)
			return nil
		}
	}
	if rv.Type().ConvertibleTo(dst.Type()) && compatibleKinds(rv.Kind(), dst.Kind()) {
		dst.Set(rv.Convert(dst.Type()))
		return nil
	}
	return issueAt(path, CodeInvalidType,
		fmt.Sprintf("cannot assign %T to %s", v, dst.Type().String()))
}

// compatibleKinds guards reflect conversion against lossy cross-kind
// conversions (e.g. int -> string).
func compatibleKinds(src, dst reflect.Kind) bool {
	group := func(k reflect.Kind) int {
		switch k {
		case reflect.String:
			return 1
		case reflect.Bool:
			return 2
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return 3
		default:
			return 0
		}
	}
	gs, gd := group(src), group(dst)
	return gs != 0 && gs == gd
}

func buildTypedSlice(t reflect.Type, items []any, path string) (any, error) {
	out := reflect.MakeSlice(t, len(items), len(items))
	for i, item := range items {
		if err := convertAssign(out.Index(i), item, path); err != nil {
			return nil, err
		}
	}
	return out.Interface(), nil
}
