package main

import (
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// renderDocument serializes a schema document as indented JSON or YAML. YAML
// goes through a JSON round-trip so the schema structs' json tags apply.
func renderDocument(doc any, format string) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if format == "json" {
		return append(b, '\n'), nil
	}
	var tree any
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}
