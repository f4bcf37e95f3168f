package recwire_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	recwire "github.com/recwire/recwire"
)

func TestToWire_FieldOrderAndTagRenaming(t *testing.T) {
	obj, err := recwire.ToWire(Point{X: 1.25, Y: 3.5})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"z", "y"}) {
		t.Fatalf("unexpected key order: %v", got)
	}
	b, err := recwire.ToJSON(Point{X: 1.25, Y: 3.5})
	if err != nil {
		t.Fatalf("ToJSON err: %v", err)
	}
	if string(b) != `{"z":1.25,"y":3.5}` {
		t.Fatalf("unexpected JSON: %s", b)
	}
}

func TestToWire_ScalarCodecs(t *testing.T) {
	id := uuid.MustParse("062ac1eb-b1e2-44cd-bd2a-e5ad6fc351df")
	released := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	obj, err := recwire.ToWire(Product{ID: id, Name: "widget", Cost: 4.5, Released: released})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got, _ := obj.Get("id"); got != id.String() {
		t.Fatalf("uuid wire form: %v", got)
	}
	if got, _ := obj.Get("released"); got != "2026-02-14T10:30:00Z" {
		t.Fatalf("timestamp wire form: %v", got)
	}
}

func TestToWire_OmitsNilOptionalByDefault(t *testing.T) {
	score := 0.5
	obj, err := recwire.ToWire(Reading{Day: Friday, Value: 2.5, Score: &score})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if _, ok := obj.Get("note"); ok {
		t.Fatalf("nil optional field should be omitted")
	}
	if got, _ := obj.Get("score"); got != 0.5 {
		t.Fatalf("score: %v", got)
	}
}

func TestToWire_OptionalPresentEncodesInner(t *testing.T) {
	obj, err := recwire.ToWire(Reading{Day: Friday, Value: 2.5, Note: strptr("calibrated")})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got, _ := obj.Get("note"); got != "calibrated" {
		t.Fatalf("optional inner value: %v", got)
	}
}

func TestToWire_KeepNilEmitsNullForOptional(t *testing.T) {
	obj, err := recwire.ToWire(Reading{Day: Friday, Value: 1.0}, recwire.KeepNil())
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	v, ok := obj.Get("note")
	if !ok || v != nil {
		t.Fatalf("expected explicit null note, got %v (present=%v)", v, ok)
	}
}

func TestToWire_NullableEmitsNullEvenWhenOmitting(t *testing.T) {
	obj, err := recwire.ToWire(Reading{Day: Friday, Value: 1.0})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	v, ok := obj.Get("score")
	if !ok || v != nil {
		t.Fatalf("nullable nil should encode as explicit null, got %v (present=%v)", v, ok)
	}
}

func TestToWire_EnumEncodesUnderlyingValue(t *testing.T) {
	obj, err := recwire.ToWire(Reading{Day: Sunday, Value: 1.0})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got, _ := obj.Get("day"); got != int64(Sunday) {
		t.Fatalf("enum wire form: %v (%T)", got, got)
	}
}

func TestToWire_UnionFirstMatchWins(t *testing.T) {
	obj, err := recwire.ToWire(Reading{Day: Monday, Value: Point{X: 1, Y: 2}})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	v, _ := obj.Get("value")
	inner, ok := v.(*recwire.Object)
	if !ok {
		t.Fatalf("expected nested object, got %T", v)
	}
	if got, _ := inner.Get("z"); got != 1.0 {
		t.Fatalf("nested point: %v", got)
	}
}

func TestToWire_UnionRejectsUnmatchedValue(t *testing.T) {
	_, err := recwire.ToWire(Reading{Day: Monday, Value: "not a variant"})
	if err == nil {
		t.Fatalf("expected union mismatch error")
	}
	iss, ok := recwire.AsIssues(err)
	if !ok || iss[0].Code != recwire.CodeUnionExhausted {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(iss[0].Path, "/value") {
		t.Fatalf("path should point at the field: %q", iss[0].Path)
	}
}

func TestToWire_SetOutputIsSortedAndUnique(t *testing.T) {
	obj, err := recwire.ToWire(Reading{
		Day:   Monday,
		Value: 1.0,
		Tags:  Tags{"zeta": {}, "alpha": {}, "mid": {}},
	})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	v, _ := obj.Get("tags")
	got, ok := v.([]any)
	if !ok {
		t.Fatalf("expected array, got %T", v)
	}
	want := []any{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("set order: %v", got)
	}
}

func TestToWire_UUIDMapKeys(t *testing.T) {
	id := uuid.MustParse("062ac1eb-b1e2-44cd-bd2a-e5ad6fc351df")
	obj, err := recwire.ToWire(ProductList{Products: map[uuid.UUID]Product{
		id: {ID: id, Name: "widget"},
	}})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	v, _ := obj.Get("products")
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v)
	}
	if _, ok := m[id.String()]; !ok {
		t.Fatalf("expected key %s, got %v", id, m)
	}
}

func TestToWire_SerializedProperty(t *testing.T) {
	cart := ShoppingCart{Items: []Product{{Cost: 2.0}, {Cost: 3.5}}}
	obj, err := recwire.ToWire(cart)
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got, _ := obj.Get("total"); got != 5.5 {
		t.Fatalf("property value: %v", got)
	}
}

func TestToWire_DiscriminatorInjection(t *testing.T) {
	obj, err := recwire.ToWire(Dog{Pet: Pet{Name: "Rex"}, Breed: "lab"})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	if got, _ := obj.Get("PetType"); got != "Dog" {
		t.Fatalf("discriminator tag: %v", got)
	}
	if got, _ := obj.Get("name"); got != "Rex" {
		t.Fatalf("inherited field: %v", got)
	}
}

func TestToWire_UnregisteredTypeFails(t *testing.T) {
	type unregistered struct {
		A int `json:"a"`
	}
	_, err := recwire.ToWire(unregistered{A: 1})
	if err == nil {
		t.Fatalf("expected unknown record error")
	}
	iss, _ := recwire.AsIssues(err)
	if iss[0].Code != recwire.CodeUnknownRecord {
		t.Fatalf("unexpected code: %v", iss[0].Code)
	}
}
