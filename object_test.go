package recwire_test

import (
	"testing"

	json "github.com/goccy/go-json"

	recwire "github.com/recwire/recwire"
)

func TestObject_MarshalPreservesInsertionOrder(t *testing.T) {
	o := recwire.NewObject()
	o.Set("zebra", 1)
	o.Set("apple", 2)
	o.Set("mango", nil)
	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(b) != `{"zebra":1,"apple":2,"mango":null}` {
		t.Fatalf("unexpected output: %s", b)
	}
}

func TestObject_SetOverwriteKeepsPosition(t *testing.T) {
	o := recwire.NewObject()
	o.Set("a", 1)
	o.Set("b", 2)
	o.Set("a", 3)
	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(b) != `{"a":3,"b":2}` {
		t.Fatalf("unexpected output: %s", b)
	}
}

func TestObject_Delete(t *testing.T) {
	o := recwire.NewObject()
	o.Set("a", 1)
	o.Set("b", 2)
	o.Delete("a")
	if o.Len() != 1 {
		t.Fatalf("len: %d", o.Len())
	}
	if _, ok := o.Get("a"); ok {
		t.Fatalf("deleted key still present")
	}
}

func TestObject_AcceptedAsDecodeInput(t *testing.T) {
	obj, err := recwire.ToWire(Point{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("ToWire err: %v", err)
	}
	p, err := recwire.FromWire[Point](obj)
	if err != nil {
		t.Fatalf("FromWire err: %v", err)
	}
	if p.X != 1 || p.Y != 2 {
		t.Fatalf("round trip: %+v", p)
	}
}
