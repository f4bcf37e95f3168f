package jsonschema_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	js "github.com/recwire/recwire/jsonschema"
)

func TestSchema_MarshalMergesExtra(t *testing.T) {
	s := &js.Schema{
		Type:  "string",
		Extra: map[string]any{"x-enum-name": "Color"},
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if !strings.Contains(string(b), `"x-enum-name":"Color"`) {
		t.Fatalf("extra key not merged: %s", b)
	}
	if !strings.Contains(string(b), `"type":"string"`) {
		t.Fatalf("core key lost: %s", b)
	}
}

func TestSchema_CloneIsolatesContainers(t *testing.T) {
	orig := &js.Schema{
		Type:       "object",
		Required:   []string{"a"},
		Properties: js.NewProperties().Set("a", &js.Schema{Type: "string"}),
		Enum:       []any{"x"},
	}
	cp := orig.Clone()
	cp.Required = append(cp.Required, "b")
	cp.Properties.Set("b", &js.Schema{Type: "integer"})
	cp.Enum = append(cp.Enum, "y")

	if len(orig.Required) != 1 || orig.Properties.Len() != 1 || len(orig.Enum) != 1 {
		t.Fatalf("clone leaked into original: %+v", orig)
	}
}

func TestProperties_MarshalKeepsInsertionOrder(t *testing.T) {
	props := js.NewProperties().
		Set("zebra", &js.Schema{Type: "string"}).
		Set("apple", &js.Schema{Type: "integer"})
	b, err := json.Marshal(&js.Schema{Type: "object", Properties: props})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if !strings.Contains(string(b), `"properties":{"zebra":{"type":"string"},"apple":{"type":"integer"}}`) {
		t.Fatalf("insertion order lost: %s", b)
	}
}

func TestSchema_NilCloneIsNil(t *testing.T) {
	var s *js.Schema
	if s.Clone() != nil {
		t.Fatalf("nil clone should be nil")
	}
}

func TestSchema_OmitsEmptyKeys(t *testing.T) {
	b, err := json.Marshal(&js.Schema{Type: "object"})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(b) != `{"type":"object"}` {
		t.Fatalf("unexpected output: %s", b)
	}
}
