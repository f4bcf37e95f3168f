// Package codec holds add-on field codecs that are not registered by default.
// Install one with recwire.RegisterCodec for the type it should take over.
package codec

import (
	"fmt"
	"time"

	recwire "github.com/recwire/recwire"
	js "github.com/recwire/recwire/jsonschema"
)

// Date is a calendar date without a time component. Registering DateCodec for
// it makes fields of this type serialize as "2006-01-02" strings.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a timestamp to its date in the timestamp's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DateCodec converts Date values to ISO-8601 full-date strings.
type DateCodec struct{}

func (DateCodec) ToWire(v any) (any, error) {
	d, ok := v.(Date)
	if !ok {
		return nil, recwire.Issues{recwire.Issue{
			Path: "/", Code: recwire.CodeInvalidType,
			Message: fmt.Sprintf("expected codec.Date, got %T", v),
		}}
	}
	return d.String(), nil
}

func (DateCodec) FromWire(v any) (any, error) {
	switch dv := v.(type) {
	case Date:
		return dv, nil
	case string:
		t, err := time.Parse("2006-01-02", dv)
		if err != nil {
			return nil, recwire.Issues{recwire.Issue{
				Path: "/", Code: recwire.CodeInvalidFormat,
				Message: "invalid date, want YYYY-MM-DD", Cause: err,
			}}
		}
		return DateOf(t), nil
	default:
		return nil, recwire.Issues{recwire.Issue{
			Path: "/", Code: recwire.CodeInvalidType,
			Message: fmt.Sprintf("expected date string, got %T", v),
		}}
	}
}

func (DateCodec) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Format: "date"}
}
