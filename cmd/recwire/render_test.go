package main

import (
	"strings"
	"testing"

	recwire "github.com/recwire/recwire"
	js "github.com/recwire/recwire/jsonschema"
)

func TestParseDialect(t *testing.T) {
	cases := map[string]recwire.Dialect{
		"draft6":   recwire.Draft06,
		"draft4":   recwire.Draft04,
		"swagger2": recwire.Swagger2,
		"openapi3": recwire.OpenAPI3,
	}
	for name, want := range cases {
		got, err := parseDialect(name)
		if err != nil {
			t.Fatalf("parseDialect(%q) err: %v", name, err)
		}
		if got != want {
			t.Fatalf("parseDialect(%q) = %v", name, got)
		}
	}
	if _, err := parseDialect("draft99"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}

func TestRenderDocument_JSON(t *testing.T) {
	doc := &js.Schema{Type: "object", Required: []string{"a"}}
	out, err := renderDocument(doc, "json")
	if err != nil {
		t.Fatalf("render err: %v", err)
	}
	if !strings.Contains(string(out), `"type": "object"`) {
		t.Fatalf("unexpected JSON: %s", out)
	}
	if out[len(out)-1] != '\n' {
		t.Fatalf("missing trailing newline")
	}
}

func TestRenderDocument_YAML(t *testing.T) {
	doc := &js.Schema{Type: "object", Required: []string{"a"}}
	out, err := renderDocument(doc, "yaml")
	if err != nil {
		t.Fatalf("render err: %v", err)
	}
	if !strings.Contains(string(out), "type: object") {
		t.Fatalf("unexpected YAML: %s", out)
	}
}
