package recwire

// Dialect selects the schema output format.
type Dialect int

const (
	Draft06 Dialect = iota // default
	Draft04
	Swagger2
	OpenAPI3
)

func (d Dialect) String() string {
	switch d {
	case Draft04:
		return "draft4"
	case Swagger2:
		return "swagger2"
	case OpenAPI3:
		return "openapi3"
	default:
		return "draft6"
	}
}

// refPath returns the definitions prefix for $ref targets under this dialect.
func (d Dialect) refPath() string {
	if d == OpenAPI3 {
		return "#/components/schemas/"
	}
	return "#/definitions/"
}

// schemaURI returns the $schema URI for standalone documents.
func (d Dialect) schemaURI() string {
	if d == Draft04 {
		return "http://json-schema.org/draft-04/schema#"
	}
	return "http://json-schema.org/draft-06/schema#"
}

// schemaOptions keys the schema cache: same options, same document.
type schemaOptions struct {
	dialect Dialect
	// enumConstraints controls whether enum value lists are emitted.
	enumConstraints bool
}

// SchemaOption configures schema generation.
type SchemaOption func(*schemaOptions)

// WithDialect selects the output dialect (default Draft06).
func WithDialect(d Dialect) SchemaOption {
	return func(o *schemaOptions) { o.dialect = d }
}

// WithoutEnumConstraints drops enum value lists from the generated schema,
// so wire data with out-of-band enum values still validates.
func WithoutEnumConstraints() SchemaOption {
	return func(o *schemaOptions) { o.enumConstraints = false }
}

func applySchemaOptions(opts []SchemaOption) schemaOptions {
	so := schemaOptions{dialect: Draft06, enumConstraints: true}
	for _, fn := range opts {
		fn(&so)
	}
	return so
}

type encodeOptions struct {
	omitNil  bool
	validate bool
}

// EncodeOption configures ToWire.
type EncodeOption func(*encodeOptions)

// KeepNil emits null for empty optional fields instead of dropping them.
func KeepNil() EncodeOption {
	return func(o *encodeOptions) { o.omitNil = false }
}

// ValidateOnEncode validates the assembled wire object against the record's
// schema before returning it.
func ValidateOnEncode() EncodeOption {
	return func(o *encodeOptions) { o.validate = true }
}

func applyEncodeOptions(opts []EncodeOption) encodeOptions {
	eo := encodeOptions{omitNil: true}
	for _, fn := range opts {
		fn(&eo)
	}
	return eo
}

type decodeOptions struct {
	validate     bool
	lenientEnums bool
}

// DecodeOption configures FromWire.
type DecodeOption func(*decodeOptions)

// ValidateOnDecode validates the wire data against the record's schema before
// decoding. Requires a validator collaborator to be registered.
func ValidateOnDecode() DecodeOption {
	return func(o *decodeOptions) { o.validate = true }
}

// LenientEnums passes unrecognized enum wire values through with a warning
// instead of failing the decode, and relaxes the validating schema to match.
func LenientEnums() DecodeOption {
	return func(o *decodeOptions) { o.lenientEnums = true }
}

func applyDecodeOptions(opts []DecodeOption) decodeOptions {
	var do decodeOptions
	for _, fn := range opts {
		fn(&do)
	}
	return do
}
