package codec_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recwire "github.com/recwire/recwire"
	"github.com/recwire/recwire/codec"
)

func TestDecimalString_RoundTripIsLossless(t *testing.T) {
	c := codec.DecimalString{}

	d, err := decimal.NewFromString("0.1000000000000000000000001")
	require.NoError(t, err)

	wire, err := c.ToWire(d)
	require.NoError(t, err)
	assert.Equal(t, "0.1000000000000000000000001", wire)

	back, err := c.FromWire(wire)
	require.NoError(t, err)
	assert.True(t, d.Equal(back.(decimal.Decimal)))
}

func TestDecimalString_RejectsNonDecimalInput(t *testing.T) {
	c := codec.DecimalString{}

	_, err := c.FromWire("one point five")
	require.Error(t, err)
	iss, ok := recwire.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, recwire.CodeInvalidFormat, iss[0].Code)

	_, err = c.FromWire(1.5)
	require.Error(t, err)
}

func TestDecimalString_ReplacesBuiltinCodec(t *testing.T) {
	type invoice struct {
		Total decimal.Decimal `json:"total"`
	}
	e := recwire.NewEngine()
	recwire.RegisterCodec[decimal.Decimal](e, codec.DecimalString{})
	recwire.MustRegister[invoice](e)

	obj, err := e.ToWire(invoice{Total: decimal.RequireFromString("19.99")})
	require.NoError(t, err)
	got, _ := obj.Get("total")
	assert.Equal(t, "19.99", got)

	doc, err := e.JSONSchemaByName("invoice")
	require.NoError(t, err)
	assert.Equal(t, "string", doc.Properties.Get("total").Type)
	assert.NotEmpty(t, doc.Properties.Get("total").Pattern)
}
