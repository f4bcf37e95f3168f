package recwire

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Validator is the pluggable schema validation collaborator. Implementations
// receive a JSON-compatible data tree and a marshalable schema document and
// report a conformance failure as an error. The engine wraps that error into
// ValidationError; it never interprets it further.
type Validator interface {
	Validate(data any, schema any) error
}

var (
	defaultValidatorMu sync.RWMutex
	defaultValidator   Validator
)

// RegisterValidator installs the process-wide default validator collaborator.
// Adapter packages call this from init, the same way JSON source drivers
// self-register; engines without an explicit WithValidator pick it up.
func RegisterValidator(v Validator) {
	defaultValidatorMu.Lock()
	defaultValidator = v
	defaultValidatorMu.Unlock()
}

// DefaultValidator returns the process-wide default validator, or nil.
func DefaultValidator() Validator {
	defaultValidatorMu.RLock()
	defer defaultValidatorMu.RUnlock()
	return defaultValidator
}

// Engine owns the scalar codec registry, the record and enum registries, and
// every derived cache (classified shapes, schema documents, encode/decode
// closures). Registries are populated at program initialization; caches fill
// lazily and tolerate concurrent first-use races by idempotent recomputation.
type Engine struct {
	log       *zap.Logger
	validator Validator

	scalars map[reflect.Type]FieldCodec
	enums   map[reflect.Type]*EnumShape
	records map[reflect.Type]*RecordDescriptor
	byName  map[string]*RecordDescriptor

	classifyCache sync.Map // reflect.Type -> *Shape
	schemaCache   sync.Map // schemaKey -> *jsonschema.Schema (record body)
	encodeCache   sync.Map // *Shape -> encodeFunc
	decodeCache   sync.Map // *Shape -> decodeFunc
	warned        sync.Map // string -> struct{} (one warning per subject)
}

// EngineOption configures a new Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for diagnosable warnings (unknown shapes,
// lenient enum passthrough, dialect degradation).
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithValidator sets this engine's validator collaborator, overriding the
// process default.
func WithValidator(v Validator) EngineOption {
	return func(e *Engine) { e.validator = v }
}

// NewEngine returns an engine seeded with the built-in scalar codecs
// (timestamp, UUID, decimal, IP addresses).
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		log:     zap.NewNop(),
		scalars: make(map[reflect.Type]FieldCodec),
		enums:   make(map[reflect.Type]*EnumShape),
		records: make(map[reflect.Type]*RecordDescriptor),
		byName:  make(map[string]*RecordDescriptor),
	}
	for _, fn := range opts {
		fn(e)
	}
	registerBuiltinScalars(e)
	return e
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     *Engine
)

// Default returns the shared process-wide engine. Tests that mutate
// registries should construct their own engine instead.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// activeValidator resolves the validator for this engine, falling back to the
// process default so blank-imported adapters take effect regardless of
// construction order.
func (e *Engine) activeValidator() Validator {
	if e.validator != nil {
		return e.validator
	}
	return DefaultValidator()
}

// warnOnce logs msg once per subject key for the lifetime of the engine.
func (e *Engine) warnOnce(key, msg string, fields ...zap.Field) {
	if _, loaded := e.warned.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	e.log.Warn(msg, fields...)
}

// descriptorOf resolves the record descriptor for a struct type, or reports
// an unknown-record issue naming the type.
func (e *Engine) descriptorOf(t reflect.Type) (*RecordDescriptor, error) {
	if rd, ok := e.records[t]; ok {
		return rd, nil
	}
	return nil, Issues{Issue{
		Path:    "/",
		Code:    CodeUnknownRecord,
		Message: "record type not registered: " + t.String(),
		Hint:    "call recwire.Register for the type before using it",
	}}
}
