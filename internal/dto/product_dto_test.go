package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveProductRequest_SnakeCase(t *testing.T) {
	var req SaveProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"code": "TMT-12",
		"name": "TMT Bar 12mm Fe500",
		"category": "BAR",
		"pricing_basis": "PER_KG",
		"unit_weight_kg": "10.66",
		"cost_price": "51",
		"selling_price": "55.2"
	}`), &req))

	assert.Equal(t, "PER_KG", req.PricingBasis)
	assert.Equal(t, "55.2", req.SellingPrice.String())
	assert.Equal(t, "51", req.CostPrice.String())
	require.NotNil(t, req.UnitWeightKg)
	assert.Equal(t, "10.66", req.UnitWeightKg.String())
}

func TestSaveProductRequest_CamelCase(t *testing.T) {
	var req SaveProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"code": "HRC-2.0",
		"name": "HR Coil 2.0mm",
		"category": "COIL",
		"pricingBasis": "PER_MT",
		"unitWeightKg": 5500,
		"costPrice": 48500,
		"sellingPrice": 52400,
		"vatTreatment": "zero_rated"
	}`), &req))

	assert.Equal(t, "PER_MT", req.PricingBasis)
	assert.Equal(t, "52400", req.SellingPrice.String())
	assert.Equal(t, "48500", req.CostPrice.String())
	require.NotNil(t, req.UnitWeightKg)
	assert.Equal(t, "5500", req.UnitWeightKg.String())
	assert.Equal(t, "zero_rated", req.VATTreatment)
}

func TestSaveProductRequest_SnakeCaseWinsWhenBothPresent(t *testing.T) {
	var req SaveProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"code": "GI-SHEET-0.8",
		"name": "GI Sheet 0.8mm",
		"selling_price": 865,
		"sellingPrice": 999,
		"pricing_basis": "PER_PCS",
		"pricingBasis": "PER_MT"
	}`), &req))

	assert.Equal(t, "865", req.SellingPrice.String())
	assert.Equal(t, "PER_PCS", req.PricingBasis)
}

func TestSaveProductRequest_MissingOptionalFields(t *testing.T) {
	var req SaveProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"code": "X-1", "name": "Bare"}`), &req))

	assert.Empty(t, req.PricingBasis)
	assert.Nil(t, req.UnitWeightKg)
	assert.True(t, req.SellingPrice.IsZero())
	assert.Empty(t, req.VATTreatment)
}
