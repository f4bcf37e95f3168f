package codec

import (
	"fmt"

	"github.com/shopspring/decimal"

	recwire "github.com/recwire/recwire"
	js "github.com/recwire/recwire/jsonschema"
)

// decimalPattern matches a decimal literal with an optional sign and fraction.
const decimalPattern = `^-?\d+(\.\d+)?$`

// DecimalString converts shopspring decimals to strings instead of JSON
// numbers, preserving exact precision across the wire. Register it over the
// built-in number codec when lossless round-trips matter more than numeric
// schema constraints:
//
//	recwire.RegisterCodec[decimal.Decimal](eng, codec.DecimalString{})
type DecimalString struct{}

func (DecimalString) ToWire(v any) (any, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, recwire.Issues{recwire.Issue{
			Path: "/", Code: recwire.CodeInvalidType,
			Message: fmt.Sprintf("expected decimal.Decimal, got %T", v),
		}}
	}
	return d.String(), nil
}

func (DecimalString) FromWire(v any) (any, error) {
	switch dv := v.(type) {
	case decimal.Decimal:
		return dv, nil
	case string:
		d, err := decimal.NewFromString(dv)
		if err != nil {
			return nil, recwire.Issues{recwire.Issue{
				Path: "/", Code: recwire.CodeInvalidFormat,
				Message: "invalid decimal string", Cause: err,
			}}
		}
		return d, nil
	default:
		return nil, recwire.Issues{recwire.Issue{
			Path: "/", Code: recwire.CodeInvalidType,
			Message: fmt.Sprintf("expected decimal string, got %T", v),
		}}
	}
}

func (DecimalString) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Pattern: decimalPattern}
}
