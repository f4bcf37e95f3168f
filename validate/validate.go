// Package validate wires santhosh-tekuri/jsonschema in as the engine's
// validator collaborator. Importing it for side effects is enough:
//
//	import _ "github.com/recwire/recwire/validate"
//
// After that, ValidateOnEncode and ValidateOnDecode work on every engine that
// has no explicit validator of its own.
package validate

import (
	"strings"

	json "github.com/goccy/go-json"
	schemalib "github.com/santhosh-tekuri/jsonschema/v5"

	recwire "github.com/recwire/recwire"
)

func init() {
	recwire.RegisterValidator(Validator{})
}

// Validator adapts santhosh-tekuri/jsonschema to the engine's Validator
// interface. Schema documents are compiled per call; the engine caches the
// documents themselves, and compilation is cheap next to the reflection work
// around it.
type Validator struct{}

func (Validator) Validate(data any, schema any) error {
	doc, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	compiler := schemalib.NewCompiler()
	compiler.Draft = schemalib.Draft6
	if err := compiler.AddResource("schema.json", strings.NewReader(string(doc))); err != nil {
		return err
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return err
	}
	return compiled.Validate(data)
}
