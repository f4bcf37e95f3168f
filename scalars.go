package recwire

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	js "github.com/recwire/recwire/jsonschema"
)

// UUIDPattern constrains the canonical textual UUID form in generated schemas.
const UUIDPattern = "^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$"

// IPv4Addr and IPv6Addr are the address scalars recognized out of the box.
// Two defined types exist so the schema can carry the matching format tag.
type (
	IPv4Addr netip.Addr
	IPv6Addr netip.Addr
)

func registerBuiltinScalars(e *Engine) {
	RegisterCodec[time.Time](e, timeCodec{})
	RegisterCodec[uuid.UUID](e, uuidCodec{})
	RegisterCodec[decimal.Decimal](e, DecimalCodec{})
	RegisterCodec[IPv4Addr](e, ipCodec{v6: false})
	RegisterCodec[IPv6Addr](e, ipCodec{v6: true})
}

// timeCodec encodes timestamps as ISO-8601 strings. Times in UTC emit the
// trailing Z form; this library treats zone-less wire values as UTC.
type timeCodec struct{}

func (timeCodec) ToWire(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected time.Time, got %T", v))
	}
	return t.Format(time.RFC3339Nano), nil
}

func (timeCodec) FromWire(v any) (any, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case string:
		// Accept RFC3339Nano first (trailing zeros optional).
		if t, err := time.Parse(time.RFC3339Nano, tv); err == nil {
			return t, nil
		}
		t, err := time.Parse(time.RFC3339, tv)
		if err != nil {
			return nil, Issues{Issue{Path: "/", Code: CodeInvalidFormat, Message: "invalid RFC3339 timestamp", Cause: err}}
		}
		return t, nil
	default:
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected timestamp string, got %T", v))
	}
}

func (timeCodec) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Format: "date-time"}
}

type uuidCodec struct{}

func (uuidCodec) ToWire(v any) (any, error) {
	u, ok := v.(uuid.UUID)
	if !ok {
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected uuid.UUID, got %T", v))
	}
	return u.String(), nil
}

func (uuidCodec) FromWire(v any) (any, error) {
	switch uv := v.(type) {
	case uuid.UUID:
		return uv, nil
	case string:
		u, err := uuid.Parse(uv)
		if err != nil {
			return nil, Issues{Issue{Path: "/", Code: CodeInvalidFormat, Message: "invalid UUID", Cause: err}}
		}
		return u, nil
	default:
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected UUID string, got %T", v))
	}
}

func (uuidCodec) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Format: "uuid", Pattern: UUIDPattern}
}

// DecimalCodec converts shopspring decimals to JSON numbers. Precision, when
// set, surfaces as a multipleOf constraint; it does not round values.
type DecimalCodec struct {
	// Precision is the number of decimal places allowed by the schema.
	// Zero means unconstrained.
	Precision int
}

func (DecimalCodec) ToWire(v any) (any, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected decimal.Decimal, got %T", v))
	}
	return d.InexactFloat64(), nil
}

func (DecimalCodec) FromWire(v any) (any, error) {
	switch dv := v.(type) {
	case decimal.Decimal:
		return dv, nil
	case float64:
		return decimal.NewFromFloat(dv), nil
	case int:
		return decimal.NewFromInt(int64(dv)), nil
	case int64:
		return decimal.NewFromInt(dv), nil
	default:
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected number, got %T", v))
	}
}

func (c DecimalCodec) JSONSchema() *js.Schema {
	s := &js.Schema{Type: "number"}
	if c.Precision > 0 {
		step := 1.0
		for i := 0; i < c.Precision; i++ {
			step /= 10
		}
		s.MultipleOf = step
	}
	return s
}

type ipCodec struct{ v6 bool }

func (c ipCodec) ToWire(v any) (any, error) {
	switch av := v.(type) {
	case IPv4Addr:
		return netip.Addr(av).String(), nil
	case IPv6Addr:
		return netip.Addr(av).String(), nil
	default:
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected IP address, got %T", v))
	}
}

func (c ipCodec) FromWire(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, issueAt("/", CodeInvalidType, fmt.Sprintf("expected IP address string, got %T", v))
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return nil, Issues{Issue{Path: "/", Code: CodeInvalidFormat, Message: "invalid IP address", Cause: err}}
	}
	if c.v6 {
		return IPv6Addr(a), nil
	}
	return IPv4Addr(a), nil
}

func (c ipCodec) JSONSchema() *js.Schema {
	format := "ipv4"
	if c.v6 {
		format = "ipv6"
	}
	return &js.Schema{Type: "string", Format: format}
}
