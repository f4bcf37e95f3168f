package recwire

import (
	"fmt"
	"reflect"
	"sort"

	js "github.com/recwire/recwire/jsonschema"
)

type schemaKey struct {
	t   reflect.Type
	opt schemaOptions
}

// shapeFragment renders the schema fragment for a shape. Record shapes render
// as $ref entries; collectDefinitions fills in the referenced bodies.
func (e *Engine) shapeFragment(s *Shape, opt schemaOptions) (*js.Schema, error) {
	switch s.Kind {
	case KindPrimitive:
		return primitiveFragment(s.Prim, opt), nil
	case KindOptional:
		return e.shapeFragment(s.Elem, opt)
	case KindNullable:
		inner, err := e.shapeFragment(s.Elem, opt)
		if err != nil {
			return nil, err
		}
		switch opt.dialect {
		case OpenAPI3:
			inner = inner.Clone()
			inner.Nullable = true
			return inner, nil
		case Swagger2:
			// Swagger 2.0 has no null type; the fragment stays as-is and
			// null handling is left to the consumer.
			return inner, nil
		default:
			if inner.Ref != "" || len(inner.OneOf) > 0 {
				return &js.Schema{OneOf: []*js.Schema{inner, {Type: "null"}}}, nil
			}
			inner = inner.Clone()
			inner.Type = []any{inner.Type, "null"}
			return inner, nil
		}
	case KindUnion:
		if opt.dialect == Swagger2 {
			return nil, issueAt("", CodeUnsupportedDialect, "Swagger 2.0 cannot express union types")
		}
		variants := make([]*js.Schema, 0, len(s.Variants))
		for _, v := range s.Variants {
			f, err := e.shapeFragment(v, opt)
			if err != nil {
				return nil, err
			}
			variants = append(variants, f)
		}
		return &js.Schema{OneOf: variants}, nil
	case KindLiteral:
		return &js.Schema{Enum: append([]any(nil), s.Values...)}, nil
	case KindEnum:
		frag := primitiveFragment(s.Enum.Prim, opt)
		if opt.enumConstraints {
			frag.Enum = make([]any, 0, len(s.Enum.Members))
			for _, m := range s.Enum.Members {
				frag.Enum = append(frag.Enum, wirePrimitive(m.Value))
			}
		}
		if opt.dialect == Swagger2 || opt.dialect == OpenAPI3 {
			frag.Extra = map[string]any{"x-enum-name": s.Enum.Name}
		}
		return frag, nil
	case KindMapping:
		// An unconstrained value leaves additionalProperties implicit.
		if unconstrained(s.Value) {
			return &js.Schema{Type: "object"}, nil
		}
		vf, err := e.shapeFragment(s.Value, opt)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "object", AdditionalProperties: vf}, nil
	case KindSequence:
		if unconstrained(s.Elem) {
			return &js.Schema{Type: "array"}, nil
		}
		ef, err := e.shapeFragment(s.Elem, opt)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: ef}, nil
	case KindSet:
		if unconstrained(s.Elem) {
			return &js.Schema{Type: "array", UniqueItems: true}, nil
		}
		ef, err := e.shapeFragment(s.Elem, opt)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: ef, UniqueItems: true}, nil
	case KindFixedTuple:
		elems := make([]*js.Schema, 0, len(s.Elems))
		for _, el := range s.Elems {
			f, err := e.shapeFragment(el, opt)
			if err != nil {
				return nil, err
			}
			elems = append(elems, f)
		}
		n := len(elems)
		return &js.Schema{Type: "array", Items: elems, MinItems: js.IntPtr(n), MaxItems: js.IntPtr(n)}, nil
	case KindVariadicTuple:
		if unconstrained(s.Elem) {
			return &js.Schema{Type: "array"}, nil
		}
		ef, err := e.shapeFragment(s.Elem, opt)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: ef}, nil
	case KindRecord:
		rd, err := e.descriptorOf(s.goType)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Ref: opt.dialect.refPath() + rd.Name}, nil
	case KindWrapped:
		return e.shapeFragment(s.Elem, opt)
	case KindScalar:
		codec, ok := e.scalars[s.goType]
		if !ok {
			return nil, issueAt("", CodeUnknownShape, "no codec registered for "+s.goType.String())
		}
		return codec.JSONSchema().Clone(), nil
	default: // KindAny, KindOpaque
		return &js.Schema{}, nil
	}
}

// fieldFragment renders the schema for one field: shape fragment plus
// field metadata layered on top.
func (e *Engine) fieldFragment(f *FieldDescriptor, opt schemaOptions) (*js.Schema, error) {
	frag, err := e.shapeFragment(f.Shape, opt)
	if err != nil {
		return nil, prefixIssuePaths(err, "/"+f.WireName)
	}
	meta := f.Meta
	hasMeta := meta.Description != "" || meta.Title != "" || len(meta.Examples) > 0 ||
		meta.ReadOnly != nil || meta.WriteOnly != nil || len(meta.Extensions) > 0
	if !hasMeta && !f.hasDefault && !f.Property {
		return frag, nil
	}
	frag = frag.Clone()
	if meta.Description != "" {
		frag.Description = meta.Description
	}
	if meta.Title != "" {
		frag.Title = meta.Title
	}
	if len(meta.Examples) > 0 {
		encoded := make([]any, 0, len(meta.Examples))
		for _, ex := range meta.Examples {
			ev, err := e.encodeShape(f.Shape, "/"+f.WireName, ex, encodeOptions{omitNil: false})
			if err != nil {
				return nil, err
			}
			encoded = append(encoded, ev)
		}
		if opt.dialect == Swagger2 {
			frag.Example = encoded[0]
		} else {
			frag.Examples = encoded
		}
	}
	if opt.dialect == OpenAPI3 {
		frag.ReadOnly = meta.ReadOnly
		frag.WriteOnly = meta.WriteOnly
	}
	if f.Property {
		frag.ReadOnly = js.BoolPtr(true)
	}
	if len(meta.Extensions) > 0 && (opt.dialect == Swagger2 || opt.dialect == OpenAPI3) {
		if frag.Extra == nil {
			frag.Extra = make(map[string]any, len(meta.Extensions))
		}
		for k, v := range meta.Extensions {
			frag.Extra["x-"+k] = v
		}
	}
	if f.hasDefault {
		dv, err := f.encodedDefault(e)
		if err != nil {
			return nil, err
		}
		frag.Default = dv
	}
	return frag, nil
}

// recordBody renders the object body of a record: properties, required list
// and the discriminator machinery. Properties and the required list follow
// field declaration order. Subtype bodies exclude inherited fields; those
// come in through allOf at assembly time.
func (e *Engine) recordBody(rd *RecordDescriptor, opt schemaOptions) (*js.Schema, error) {
	key := schemaKey{t: rd.goType, opt: opt}
	if cached, ok := e.schemaCache.Load(key); ok {
		return cached.(*js.Schema), nil
	}

	fields := rd.own
	if rd.base == nil {
		fields = rd.all
	}
	body := &js.Schema{
		Type:       "object",
		Properties: js.NewProperties(),
	}
	if rd.Doc != "" {
		body.Description = rd.Doc
	}
	if !rd.allowAdditional {
		body.AdditionalProperties = false
	}
	for _, f := range fields {
		frag, err := e.fieldFragment(f, opt)
		if err != nil {
			return nil, err
		}
		body.Properties.Set(f.WireName, frag)
		required := f.Required()
		if f.Property {
			required = opt.dialect == OpenAPI3
		}
		if required {
			body.Required = append(body.Required, f.WireName)
		}
	}
	if rd.discriminator != "" && !rd.discriminatorInherited {
		body.Properties.Set(rd.discriminator, &js.Schema{Type: "string"})
		body.Required = append(body.Required, rd.discriminator)
		if opt.dialect == OpenAPI3 {
			body.Discriminator = &js.Discriminator{PropertyName: rd.discriminator}
		}
	}

	actual, _ := e.schemaCache.LoadOrStore(key, body)
	return actual.(*js.Schema), nil
}

// assembleRecord produces the record's full schema entry: the bare body for
// root types, or an allOf combining the base $ref with the subtype body.
func (e *Engine) assembleRecord(rd *RecordDescriptor, opt schemaOptions) (*js.Schema, error) {
	body, err := e.recordBody(rd, opt)
	if err != nil {
		return nil, err
	}
	if rd.base == nil {
		return body, nil
	}
	return &js.Schema{AllOf: []*js.Schema{
		{Ref: opt.dialect.refPath() + rd.base.Name},
		body,
	}}, nil
}

// collectDefinitions walks a record's transitive references and fills defs.
// A nil placeholder is installed before recursing so self- and mutually
// recursive records terminate.
func (e *Engine) collectDefinitions(rd *RecordDescriptor, opt schemaOptions, defs js.Definitions) error {
	if _, seen := defs[rd.Name]; seen {
		return nil
	}
	defs[rd.Name] = nil
	entry, err := e.assembleRecord(rd, opt)
	if err != nil {
		return err
	}
	defs[rd.Name] = entry

	if rd.base != nil {
		if err := e.collectDefinitions(rd.base, opt, defs); err != nil {
			return err
		}
	}
	for _, sub := range rd.subtypes {
		if err := e.collectDefinitions(sub, opt, defs); err != nil {
			return err
		}
	}
	for _, f := range rd.all {
		if err := e.collectShapeDefinitions(f.Shape, opt, defs); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) collectShapeDefinitions(s *Shape, opt schemaOptions, defs js.Definitions) error {
	switch s.Kind {
	case KindRecord:
		rd, err := e.descriptorOf(s.goType)
		if err != nil {
			return err
		}
		return e.collectDefinitions(rd, opt, defs)
	case KindOptional, KindNullable, KindSequence, KindSet, KindVariadicTuple, KindWrapped:
		return e.collectShapeDefinitions(s.Elem, opt, defs)
	case KindMapping:
		return e.collectShapeDefinitions(s.Value, opt, defs)
	case KindUnion:
		for _, v := range s.Variants {
			if err := e.collectShapeDefinitions(v, opt, defs); err != nil {
				return err
			}
		}
	case KindFixedTuple:
		for _, el := range s.Elems {
			if err := e.collectShapeDefinitions(el, opt, defs); err != nil {
				return err
			}
		}
	}
	return nil
}

// standaloneSchema renders a complete self-contained document for one record.
func (e *Engine) standaloneSchema(rd *RecordDescriptor, opt schemaOptions) (*js.Schema, error) {
	if opt.dialect == Swagger2 {
		e.warnOnce("swagger2-standalone", "Swagger 2.0 schemas are only valid embedded in an API document, falling back to Draft 6")
		opt.dialect = Draft06
	}
	defs := make(js.Definitions)
	if rd.base != nil {
		if err := e.collectDefinitions(rd.base, opt, defs); err != nil {
			return nil, err
		}
	}
	for _, sub := range rd.subtypes {
		if err := e.collectDefinitions(sub, opt, defs); err != nil {
			return nil, err
		}
	}
	for _, f := range rd.all {
		if err := e.collectShapeDefinitions(f.Shape, opt, defs); err != nil {
			return nil, err
		}
	}
	// rd lands in defs only when something references back to it (recursion,
	// or a subtype's base ref); in that case the definition must stay so the
	// refs resolve.

	entry, err := e.assembleRecord(rd, opt)
	if err != nil {
		return nil, err
	}
	doc := entry.Clone()
	doc.SchemaURI = opt.dialect.schemaURI()
	if len(defs) > 0 {
		doc.Definitions = defs
	}
	return doc, nil
}

// embeddableSchema renders the record plus everything it references as a
// definitions map keyed by record name, suitable for splicing into an API
// document.
func (e *Engine) embeddableSchema(rd *RecordDescriptor, opt schemaOptions) (js.Definitions, error) {
	defs := make(js.Definitions)
	if err := e.collectDefinitions(rd, opt, defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// allSchemas renders every registered record into one definitions map.
func (e *Engine) allSchemas(opt schemaOptions) (js.Definitions, error) {
	defs := make(js.Definitions)
	names := make([]string, 0, len(e.byName))
	for name := range e.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := e.collectDefinitions(e.byName[name], opt, defs); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// primitiveFragment renders a primitive's type fragment. Draft 4 keeps the
// legacy numeric encoding: integers and floats are both "number", qualified
// by a format key.
func primitiveFragment(p Primitive, opt schemaOptions) *js.Schema {
	if opt.dialect == Draft04 {
		switch p {
		case PrimInt:
			return &js.Schema{Type: "number", Format: "integer"}
		case PrimFloat:
			return &js.Schema{Type: "number", Format: "float"}
		}
	}
	return &js.Schema{Type: p.schemaType()}
}

// unconstrained reports whether a shape renders as the empty schema, in which
// case container fragments leave the corresponding key implicit.
func unconstrained(s *Shape) bool {
	return s.Kind == KindAny || s.Kind == KindOpaque
}

// wirePrimitive normalizes an enum member's Go value to its JSON form.
func wirePrimitive(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return fmt.Sprintf("%v", v)
	}
}
