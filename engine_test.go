package recwire_test

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	recwire "github.com/recwire/recwire"
	js "github.com/recwire/recwire/jsonschema"
)

type price struct {
	Amount decimal.Decimal `json:"amount"`
}

func TestRegisterCodec_LastWriterWins(t *testing.T) {
	e := recwire.NewEngine()
	recwire.MustRegister[price](e)

	obj, err := e.ToWire(price{Amount: decimal.NewFromFloat(1.5)})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got, _ := obj.Get("amount"); got != 1.5 {
		t.Fatalf("built-in decimal codec: %v", got)
	}

	// Re-registering replaces the built-in codec for new engines' shapes.
	e2 := recwire.NewEngine()
	recwire.RegisterCodec[decimal.Decimal](e2, stringDecimalCodec{})
	recwire.MustRegister[price](e2)
	obj, err = e2.ToWire(price{Amount: decimal.NewFromFloat(1.5)})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got, _ := obj.Get("amount"); got != "1.5" {
		t.Fatalf("replacement codec: %v", got)
	}
}

type stringDecimalCodec struct{}

func (stringDecimalCodec) ToWire(v any) (any, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, recwire.Issues{recwire.Issue{Path: "/", Code: recwire.CodeInvalidType, Message: "expected decimal"}}
	}
	return d.String(), nil
}

func (stringDecimalCodec) FromWire(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, recwire.Issues{recwire.Issue{Path: "/", Code: recwire.CodeInvalidType, Message: "expected string"}}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, recwire.Issues{recwire.Issue{Path: "/", Code: recwire.CodeInvalidFormat, Message: "invalid decimal", Cause: err}}
	}
	return d, nil
}

func (stringDecimalCodec) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string"}
}

func TestRegister_RequiresStruct(t *testing.T) {
	e := recwire.NewEngine()
	if _, err := recwire.Register[int](e); err == nil {
		t.Fatalf("expected config error for non-struct")
	}
}

func TestRegister_UnknownFieldOptions(t *testing.T) {
	e := recwire.NewEngine()
	type rec struct {
		A int `json:"a"`
	}
	if _, err := recwire.Register[rec](e, recwire.WithDefault("Nope", 1)); err == nil {
		t.Fatalf("expected config error for unknown field")
	}
	if _, err := recwire.Register[rec](e, recwire.FieldShape("Nope", recwire.Int())); err == nil {
		t.Fatalf("expected config error for unknown field shape")
	}
}

func TestRegister_DuplicateWireName(t *testing.T) {
	e := recwire.NewEngine()
	type rec struct {
		A int `json:"x"`
		B int `json:"x"`
	}
	if _, err := recwire.Register[rec](e); err == nil {
		t.Fatalf("expected duplicate wire name error")
	}
}

func TestRegister_DefaultAndFactoryAreExclusive(t *testing.T) {
	e := recwire.NewEngine()
	type rec struct {
		A []int `json:"a"`
	}
	_, err := recwire.Register[rec](e,
		recwire.WithDefault("A", []int{1}),
		recwire.WithDefaultFactory("A", func() any { return []int{} }),
	)
	if err == nil {
		t.Fatalf("expected mutual exclusion error")
	}
}

func TestRegister_DiscriminatorConflictsWithClosedSchema(t *testing.T) {
	e := recwire.NewEngine()
	type base struct {
		A int `json:"a"`
	}
	_, err := recwire.Register[base](e,
		recwire.WithDiscriminator(""),
		recwire.DisallowAdditionalProperties(),
	)
	if err == nil {
		t.Fatalf("expected config error")
	}
	iss, _ := recwire.AsIssues(err)
	if iss[0].Code != recwire.CodeConfig {
		t.Fatalf("unexpected code: %v", iss[0].Code)
	}
}

func TestRegister_ExtendsRequiresEmbedding(t *testing.T) {
	e := recwire.NewEngine()
	type base struct {
		A int `json:"a"`
	}
	type notEmbedding struct {
		B int `json:"b"`
	}
	recwire.MustRegister[base](e, recwire.WithDiscriminator(""))
	if _, err := recwire.Register[notEmbedding](e, recwire.Extends[base]()); err == nil {
		t.Fatalf("expected embedding requirement error")
	}
}

func TestRegister_UnexportedAndSkippedFields(t *testing.T) {
	e := recwire.NewEngine()
	type rec struct {
		A      int `json:"a"`
		Hidden int `json:"-"`
		lower  int
	}
	rd := recwire.MustRegister[rec](e)
	fields := rd.Fields()
	if len(fields) != 1 || fields[0].WireName != "a" {
		t.Fatalf("field derivation: %+v", fields)
	}
}

func TestEngine_CachedCodecsAreStable(t *testing.T) {
	e := recwire.NewEngine()
	recwire.MustRegister[price](e)
	in := price{Amount: decimal.NewFromInt(3)}
	a, err := e.ToWire(in)
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	b, err := e.ToWire(in)
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	av, _ := a.Get("amount")
	bv, _ := b.Get("amount")
	if av != bv {
		t.Fatalf("cache must be idempotent: %v vs %v", av, bv)
	}
}

func TestDisallowAdditionalProperties_ClosesSchema(t *testing.T) {
	e := recwire.NewEngine()
	type closed struct {
		A int `json:"a"`
	}
	recwire.MustRegister[closed](e, recwire.DisallowAdditionalProperties())
	doc, err := e.JSONSchemaFor(reflect.TypeOf((*closed)(nil)).Elem())
	if err != nil {
		t.Fatalf("JSONSchemaFor err: %v", err)
	}
	if doc.AdditionalProperties != false {
		t.Fatalf("additionalProperties: %#v", doc.AdditionalProperties)
	}
}
