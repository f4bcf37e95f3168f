package recwire

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// FieldMeta carries schema annotations merged onto a field's fragment after
// shape-specific generation, so metadata never loses to structural keys.
type FieldMeta struct {
	Description string
	Title       string
	Examples    []any
	// ReadOnly and WriteOnly surface in OpenAPI 3 output only.
	ReadOnly  *bool
	WriteOnly *bool
	// Extensions emit as x-prefixed keys under Swagger/OpenAPI dialects.
	Extensions map[string]any
}

// FieldDescriptor describes one wire-visible field of a record.
type FieldDescriptor struct {
	Name     string // Go field (or method) name
	WireName string
	Shape    *Shape
	Meta     FieldMeta
	// Init reports whether the field participates in construction. Go
	// records assign every field directly, so this is descriptive parity
	// with the source model rather than a behavioral switch.
	Init bool
	// Property marks a serialized computed property: encoded on output,
	// never accepted on input.
	Property bool

	defaultValue   any
	defaultFactory func() any
	hasDefault     bool

	index  []int // struct field index path; nil for properties
	method int   // method index for properties

	defaultOnce sync.Once
	defaultWire any
	defaultErr  error
}

// Required reports whether the field must be present on the wire: it is
// required iff it has no default, no default factory, and is not optional.
func (f *FieldDescriptor) Required() bool {
	return !f.hasDefault && f.Shape.Kind != KindOptional && !f.Property
}

// fieldDefault materializes the field's default Go value.
func (f *FieldDescriptor) fieldDefault() (any, bool) {
	if !f.hasDefault {
		return nil, false
	}
	if f.defaultFactory != nil {
		return f.defaultFactory(), true
	}
	return f.defaultValue, true
}

// encodedDefault computes the wire form of the field's default exactly once,
// by running it through the codec engine rather than re-deriving encoding
// rules. Lazy so defaults may reference records registered later.
func (f *FieldDescriptor) encodedDefault(e *Engine) (any, error) {
	f.defaultOnce.Do(func() {
		dv, ok := f.fieldDefault()
		if !ok {
			return
		}
		f.defaultWire, f.defaultErr = e.encodeShape(f.Shape, "/"+f.WireName, dv, encodeOptions{omitNil: false})
	})
	return f.defaultWire, f.defaultErr
}

// RecordDescriptor is the derived field model of one registered struct type.
type RecordDescriptor struct {
	Name   string
	Doc    string
	goType reflect.Type

	// own lists fields declared on this record; all prepends the base
	// record's fields (with adjusted index paths) for encode/decode.
	own []*FieldDescriptor
	all []*FieldDescriptor

	base                   *RecordDescriptor
	subtypes               map[string]*RecordDescriptor
	discriminator          string
	discriminatorInherited bool
	allowAdditional        bool
}

// Fields returns the record's complete ordered field list, base fields first.
func (rd *RecordDescriptor) Fields() []*FieldDescriptor { return rd.all }

// Discriminator returns the discriminator property name, or "" when the
// record does not participate in tagged-union inheritance.
func (rd *RecordDescriptor) Discriminator() string { return rd.discriminator }

// findSubtype resolves a discriminator tag to the concrete descriptor,
// searching transitively through registered subtypes.
func (rd *RecordDescriptor) findSubtype(tag string) *RecordDescriptor {
	if sub, ok := rd.subtypes[tag]; ok {
		return sub
	}
	for _, sub := range rd.subtypes {
		if found := sub.findSubtype(tag); found != nil {
			return found
		}
	}
	return nil
}

type recordConfig struct {
	name               string
	doc                string
	baseType           reflect.Type
	discriminator      *string
	disallowAdditional bool
	shapes             map[string]*Shape
	defaults           map[string]any
	factories          map[string]func() any
	metas              map[string]FieldMeta
	noInit             map[string]bool
	properties         []string
}

// RecordOption configures a record registration.
type RecordOption func(*recordConfig)

// Doc sets the record's description (surfaces in the schema document).
func Doc(doc string) RecordOption {
	return func(c *recordConfig) { c.doc = doc }
}

// WithName overrides the schema name (default: the Go type name).
func WithName(name string) RecordOption {
	return func(c *recordConfig) { c.name = name }
}

// FieldShape overrides the classified shape of a field, for type algebra Go
// cannot declare natively (unions, literals, tuples, explicit nullability).
func FieldShape(field string, s *Shape) RecordOption {
	return func(c *recordConfig) { c.shapes[field] = s }
}

// WithDefault gives a field a default value. The field becomes non-required;
// the encoded form of the default surfaces in the schema.
func WithDefault(field string, v any) RecordOption {
	return func(c *recordConfig) { c.defaults[field] = v }
}

// WithDefaultFactory gives a field a default computed per decode, for
// defaults with identity (fresh maps, slices).
func WithDefaultFactory(field string, fn func() any) RecordOption {
	return func(c *recordConfig) { c.factories[field] = fn }
}

// FieldInfo attaches schema metadata to a field.
func FieldInfo(field string, m FieldMeta) RecordOption {
	return func(c *recordConfig) { c.metas[field] = m }
}

// NoInit marks a field as assigned after construction rather than supplied
// to it. Retained for field-model parity; decoding assigns both kinds the
// same way.
func NoInit(field string) RecordOption {
	return func(c *recordConfig) { c.noInit[field] = true }
}

// SerializeProperties opts zero-argument methods into the wire output as
// read-only derived values. They are never accepted on input.
func SerializeProperties(methods ...string) RecordOption {
	return func(c *recordConfig) { c.properties = append(c.properties, methods...) }
}

// WithDiscriminator opts the record into tagged-union inheritance as a base.
// An empty name selects the conventional "<RecordName>Type" key.
func WithDiscriminator(name string) RecordOption {
	return func(c *recordConfig) { c.discriminator = &name }
}

// Extends registers the record as a subtype of the already-registered base
// B, which must be the record's first, embedded field.
func Extends[B any]() RecordOption {
	return func(c *recordConfig) { c.baseType = typeOf[B]() }
}

// DisallowAdditionalProperties closes the record's schema to unknown keys.
// Incompatible with discriminated inheritance; the conflict is reported at
// registration time.
func DisallowAdditionalProperties() RecordOption {
	return func(c *recordConfig) { c.disallowAdditional = true }
}

// Register derives and caches the field model for struct type T. Fields are
// read in declaration order from reflect; unexported fields stay out of the
// schema and the wire representation; wire names come from json tags.
func Register[T any](e *Engine, opts ...RecordOption) (*RecordDescriptor, error) {
	t := typeOf[T]()
	if t.Kind() != reflect.Struct {
		return nil, issueAt("/", CodeConfig, "Register requires a struct type, got "+t.String())
	}
	cfg := recordConfig{
		shapes:    map[string]*Shape{},
		defaults:  map[string]any{},
		factories: map[string]func() any{},
		metas:     map[string]FieldMeta{},
		noInit:    map[string]bool{},
	}
	for _, fn := range opts {
		fn(&cfg)
	}
	name := cfg.name
	if name == "" {
		name = t.Name()
	}

	rd := &RecordDescriptor{
		Name:            name,
		Doc:             cfg.doc,
		goType:          t,
		subtypes:        map[string]*RecordDescriptor{},
		allowAdditional: !cfg.disallowAdditional,
	}

	var embedIdx = -1
	if cfg.baseType != nil {
		base, ok := e.records[cfg.baseType]
		if !ok {
			return nil, issueAt("/", CodeConfig, "base record not registered: "+cfg.baseType.String())
		}
		embedIdx = embeddedFieldIndex(t, cfg.baseType)
		if embedIdx < 0 {
			return nil, issueAt("/", CodeConfig,
				fmt.Sprintf("%s must embed its base %s to extend it", t.Name(), cfg.baseType.Name()))
		}
		rd.base = base
	}

	switch {
	case cfg.discriminator != nil:
		rd.discriminator = *cfg.discriminator
		if rd.discriminator == "" {
			rd.discriminator = name + "Type"
		}
	case rd.base != nil && rd.base.discriminator != "":
		rd.discriminator = rd.base.discriminator
		rd.discriminatorInherited = true
	}
	if rd.discriminator != "" && cfg.disallowAdditional {
		return nil, issueAt("/", CodeConfig,
			"additionalProperties cannot be disallowed on a record participating in discriminated inheritance")
	}

	claimed := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || i == embedIdx {
			continue
		}
		wire, ok := wireNameOf(sf)
		if !ok {
			continue
		}
		shape := cfg.shapes[sf.Name]
		if shape != nil {
			shape = e.resolveShape(shape)
			delete(cfg.shapes, sf.Name)
		} else {
			shape = e.classify(sf.Type)
		}
		fd := &FieldDescriptor{
			Name:     sf.Name,
			WireName: wire,
			Shape:    shape,
			Meta:     cfg.metas[sf.Name],
			Init:     !cfg.noInit[sf.Name],
			index:    sf.Index,
		}
		if dv, ok := cfg.defaults[sf.Name]; ok {
			fd.defaultValue, fd.hasDefault = dv, true
			delete(cfg.defaults, sf.Name)
		}
		if fn, ok := cfg.factories[sf.Name]; ok {
			if fd.hasDefault {
				return nil, issueAt("/"+wire, CodeConfig, "default value and default factory are mutually exclusive: "+sf.Name)
			}
			fd.defaultFactory, fd.hasDefault = fn, true
			delete(cfg.factories, sf.Name)
		}
		delete(cfg.metas, sf.Name)
		if claimed[wire] {
			return nil, issueAt("/"+wire, CodeConfig, "duplicate wire name: "+wire)
		}
		claimed[wire] = true
		rd.own = append(rd.own, fd)
	}
	for field := range cfg.shapes {
		return nil, issueAt("/", CodeConfig, "FieldShape references unknown field: "+field)
	}
	for field := range cfg.defaults {
		return nil, issueAt("/", CodeConfig, "WithDefault references unknown field: "+field)
	}
	for field := range cfg.factories {
		return nil, issueAt("/", CodeConfig, "WithDefaultFactory references unknown field: "+field)
	}

	for _, method := range cfg.properties {
		mt, ok := t.MethodByName(method)
		if !ok || mt.Type.NumIn() != 1 || mt.Type.NumOut() != 1 {
			return nil, issueAt("/", CodeConfig, "serialized property must be a zero-argument single-result method: "+method)
		}
		rd.own = append(rd.own, &FieldDescriptor{
			Name:     method,
			WireName: lowerFirst(method),
			Shape:    e.classify(mt.Type.Out(0)),
			Property: true,
			method:   mt.Index,
		})
	}

	if rd.base != nil {
		for _, bf := range rd.base.all {
			cp := &FieldDescriptor{
				Name:           bf.Name,
				WireName:       bf.WireName,
				Shape:          bf.Shape,
				Meta:           bf.Meta,
				Init:           bf.Init,
				Property:       bf.Property,
				defaultValue:   bf.defaultValue,
				defaultFactory: bf.defaultFactory,
				hasDefault:     bf.hasDefault,
				method:         bf.method,
			}
			if !bf.Property {
				cp.index = append([]int{embedIdx}, bf.index...)
			}
			rd.all = append(rd.all, cp)
		}
	}
	rd.all = append(rd.all, rd.own...)

	e.records[t] = rd
	e.byName[name] = rd
	if rd.base != nil {
		rd.base.subtypes[name] = rd
	}
	return rd, nil
}

// MustRegister is Register panicking on configuration errors.
func MustRegister[T any](e *Engine, opts ...RecordOption) *RecordDescriptor {
	rd, err := Register[T](e, opts...)
	if err != nil {
		panic(err)
	}
	return rd
}

// wireNameOf resolves a struct field's wire name from its json tag; fields
// tagged "-" are excluded.
func wireNameOf(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name, true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return "", false
	}
	if name == "" {
		return sf.Name, true
	}
	return name, true
}

// embeddedFieldIndex locates the anonymous field of type base within t.
func embeddedFieldIndex(t, base reflect.Type) int {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == base {
			return i
		}
	}
	return -1
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
