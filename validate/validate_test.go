package validate_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recwire "github.com/recwire/recwire"
	"github.com/recwire/recwire/validate"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newEngine(t *testing.T) *recwire.Engine {
	t.Helper()
	e := recwire.NewEngine(recwire.WithValidator(validate.Validator{}))
	recwire.MustRegister[sample](e)
	return e
}

func TestValidator_AcceptsConformingData(t *testing.T) {
	e := newEngine(t)
	obj, err := e.ToWire(sample{Name: "ok", Count: 2}, recwire.ValidateOnEncode())
	require.NoError(t, err)
	got, _ := obj.Get("name")
	assert.Equal(t, "ok", got)
}

func TestValidator_RejectsNonConformingData(t *testing.T) {
	e := newEngine(t)
	_, err := e.FromWireValue(reflect.TypeOf((*sample)(nil)).Elem(), map[string]any{
		"name":  "ok",
		"count": "two",
	}, recwire.ValidateOnDecode())
	require.Error(t, err)
	var verr *recwire.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestInit_RegistersProcessDefault(t *testing.T) {
	// The blank-import side effect makes validation work on engines without
	// an explicit validator.
	require.NotNil(t, recwire.DefaultValidator())

	e := recwire.NewEngine()
	recwire.MustRegister[sample](e)
	_, err := e.ToWire(sample{Name: "ok", Count: 1}, recwire.ValidateOnEncode())
	assert.NoError(t, err)
}
