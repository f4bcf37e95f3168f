package recwire

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// explicitNull marks a nullability opt-in that must emit a JSON null even
// when nil values are otherwise omitted.
type explicitNull struct{}

func isExplicitNull(v any) bool {
	_, ok := v.(explicitNull)
	return ok
}

type encodeFunc func(e *Engine, path string, v any, opt encodeOptions) (any, error)

// encoderFor returns the memoized encoder closure for a shape. Built lazily
// on first use; concurrent first-use races recompute idempotently and the
// last writer wins.
func (e *Engine) encoderFor(s *Shape) encodeFunc {
	if f, ok := e.encodeCache.Load(s); ok {
		return f.(encodeFunc)
	}
	f := e.buildEncoder(s)
	actual, _ := e.encodeCache.LoadOrStore(s, f)
	return actual.(encodeFunc)
}

func (e *Engine) encodeShape(s *Shape, path string, v any, opt encodeOptions) (any, error) {
	if isNilValue(v) && s.Kind != KindNullable && s.Kind != KindOptional {
		return nil, nil
	}
	return e.encoderFor(s)(e, path, v, opt)
}

func (e *Engine) buildEncoder(s *Shape) encodeFunc {
	switch s.Kind {
	case KindPrimitive:
		prim := s.Prim
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			return encodePrimitive(prim, path, v)
		}
	case KindOptional:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			if isNilValue(v) {
				return nil, nil
			}
			return e.encodeShape(s.Elem, path, derefValue(v), opt)
		}
	case KindNullable:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			if isNilValue(v) {
				return explicitNull{}, nil
			}
			return e.encodeShape(s.Elem, path, derefValue(v), opt)
		}
	case KindUnion:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			// First variant whose encoder accepts the value wins; overlap
			// between variants is resolved by declaration order alone.
			for _, variant := range s.Variants {
				out, err := e.encodeShape(variant, path, v, opt)
				if err == nil {
					return out, nil
				}
			}
			return nil, issueAt(path, CodeUnionExhausted,
				fmt.Sprintf("no union variant matched value of type %T", v))
		}
	case KindLiteral:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			return v, nil
		}
	case KindEnum:
		es := s.Enum
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Type() != es.goType {
				return nil, issueAt(path, CodeInvalidType,
					fmt.Sprintf("expected %s, got %T", es.Name, v))
			}
			return primitiveValue(es.Prim, rv), nil
		}
	case KindMapping:
		return e.buildMappingEncoder(s)
	case KindSequence, KindVariadicTuple:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected sequence, got %T", v))
			}
			out := make([]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				ev, err := e.encodeShape(s.Elem, path+"/"+strconv.Itoa(i), rv.Index(i).Interface(), opt)
				if err != nil {
					return nil, err
				}
				out[i] = normalizeNull(ev)
			}
			return out, nil
		}
	case KindFixedTuple:
		elems := s.Elems
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected tuple, got %T", v))
			}
			if rv.Len() != len(elems) {
				return nil, issueAt(path, CodeInvalidType,
					fmt.Sprintf("tuple length %d, expected %d", rv.Len(), len(elems)))
			}
			out := make([]any, rv.Len())
			for i := range elems {
				ev, err := e.encodeShape(elems[i], path+"/"+strconv.Itoa(i), rv.Index(i).Interface(), opt)
				if err != nil {
					return nil, err
				}
				out[i] = normalizeNull(ev)
			}
			return out, nil
		}
	case KindSet:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Map {
				return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected set, got %T", v))
			}
			out := make([]any, 0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				ev, err := e.encodeShape(s.Elem, path, iter.Key().Interface(), opt)
				if err != nil {
					return nil, err
				}
				out = append(out, normalizeNull(ev))
			}
			sortWireValues(out)
			return out, nil
		}
	case KindRecord:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			rd, err := e.descriptorOf(s.goType)
			if err != nil {
				return nil, err
			}
			return e.encodeRecordValue(rd, path, v, opt)
		}
	case KindWrapped:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			rv := reflect.ValueOf(v)
			if s.goType != nil {
				if rv.Type() != s.goType {
					return nil, issueAt(path, CodeInvalidType,
						fmt.Sprintf("expected %s, got %T", s.goType.String(), v))
				}
				return e.encodeShape(s.Elem, path, primitiveValue(s.Elem.Prim, rv), opt)
			}
			return e.encodeShape(s.Elem, path, v, opt)
		}
	case KindScalar:
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			codec, ok := e.scalars[s.goType]
			if !ok {
				return nil, issueAt(path, CodeUnknownShape, "no codec registered for "+s.goType.String())
			}
			out, err := codec.ToWire(v)
			if err != nil {
				return nil, prefixIssuePaths(err, path)
			}
			return out, nil
		}
	default: // KindAny, KindOpaque, kindDeferred resolved earlier
		return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
			return v, nil
		}
	}
}

func (e *Engine) buildMappingEncoder(s *Shape) encodeFunc {
	return func(e *Engine, path string, v any, opt encodeOptions) (any, error) {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map {
			return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected mapping, got %T", v))
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := e.encodeMapKey(s.Key, path, iter.Key().Interface(), opt)
			if err != nil {
				return nil, err
			}
			ev, err := e.encodeShape(s.Value, path+"/"+key, iter.Value().Interface(), opt)
			if err != nil {
				return nil, err
			}
			out[key] = normalizeNull(ev)
		}
		return out, nil
	}
}

// encodeMapKey runs a mapping key through its scalar codec and renders the
// wire form as an object key string.
func (e *Engine) encodeMapKey(s *Shape, path string, k any, opt encodeOptions) (string, error) {
	wire, err := e.encodeShape(s, path, k, opt)
	if err != nil {
		return "", err
	}
	switch kv := wire.(type) {
	case string:
		return kv, nil
	case int64:
		return strconv.FormatInt(kv, 10), nil
	case int:
		return strconv.Itoa(kv), nil
	case float64:
		return strconv.FormatFloat(kv, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(kv), nil
	default:
		return "", issueAt(path, CodeInvalidType,
			fmt.Sprintf("mapping key encodes to %T, not a string form", wire))
	}
}

// encodeRecordValue assembles the ordered wire object for a record instance.
// Nested records are encoded without re-validation; only the outermost call
// validates.
func (e *Engine) encodeRecordValue(rd *RecordDescriptor, path string, v any, opt encodeOptions) (*Object, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, issueAt(path, CodeInvalidType, "nil record")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, issueAt(path, CodeInvalidType, fmt.Sprintf("expected record, got %T", v))
	}
	if rv.Type() != rd.goType {
		// A base-typed reference holding a concrete subtype dispatches to
		// the subtype's descriptor so its fields and tag are emitted.
		sub, err := e.descriptorOf(rv.Type())
		if err != nil || !sub.extends(rd) {
			return nil, issueAt(path, CodeInvalidType,
				fmt.Sprintf("expected %s, got %T", rd.Name, v))
		}
		rd = sub
	}

	out := NewObject()
	for _, f := range rd.all {
		var fv any
		if f.Property {
			fv = rv.Method(f.method).Call(nil)[0].Interface()
		} else {
			fv = rv.FieldByIndex(f.index).Interface()
		}
		wire, err := e.encodeShape(f.Shape, path+"/"+f.WireName, fv, opt)
		if err != nil {
			return nil, err
		}
		if isExplicitNull(wire) {
			out.Set(f.WireName, nil)
			continue
		}
		if wire == nil && opt.omitNil {
			continue
		}
		out.Set(f.WireName, wire)
	}
	if rd.discriminator != "" {
		out.Set(rd.discriminator, rd.Name)
	}
	return out, nil
}

// extends reports whether rd is base or a transitive subtype of base.
func (rd *RecordDescriptor) extends(base *RecordDescriptor) bool {
	for cur := rd; cur != nil; cur = cur.base {
		if cur == base {
			return true
		}
	}
	return false
}

func encodePrimitive(prim Primitive, path string, v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch prim {
	case PrimString:
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case PrimBool:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	case PrimInt:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(rv.Uint()), nil
		}
	case PrimFloat:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		}
	}
	return nil, issueAt(path, CodeInvalidType,
		fmt.Sprintf("expected %s, got %T", prim.schemaType(), v))
}

// primitiveValue extracts the plain wire primitive from a (possibly defined)
// reflect value.
func primitiveValue(prim Primitive, rv reflect.Value) any {
	switch prim {
	case PrimString:
		return rv.String()
	case PrimBool:
		return rv.Bool()
	case PrimInt:
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(rv.Uint())
		default:
			return rv.Int()
		}
	default:
		return rv.Float()
	}
}

func normalizeNull(v any) any {
	if isExplicitNull(v) {
		return nil
	}
	return v
}

// isNilValue reports whether v is nil or a nil pointer/map/slice/interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// derefValue unwraps one pointer level, leaving other values untouched.
func derefValue(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

// sortWireValues orders encoded set members by their serialized form so set
// output is deterministic.
func sortWireValues(vs []any) {
	keys := make([]string, len(vs))
	for i, v := range vs {
		if b, err := json.Marshal(v); err == nil {
			keys[i] = string(b)
		}
	}
	sort.SliceStable(vs, func(i, j int) bool { return keys[i] < keys[j] })
}

// prefixIssuePaths rebases issue paths produced by scalar codecs (which
// report at "/") onto the field's pointer path.
func prefixIssuePaths(err error, path string) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "/" || it.Path == "" {
			it.Path = path
		}
		out[i] = it
	}
	return out
}
