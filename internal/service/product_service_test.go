package service_test

import (
	"context"
	"testing"

	"steelpricing/internal/dto"
	"steelpricing/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCreate_DefaultsBasisFromCategory(t *testing.T) {
	svc := service.NewProductService(newStubProductRepo())

	resp, err := svc.Create(context.Background(), dto.SaveProductRequest{
		Code:         "GI-SHEET-0.8",
		Name:         "GI Sheet 0.8mm",
		Category:     "SHEET",
		CostPrice:    dec("780"),
		SellingPrice: dec("865"),
	})
	require.NoError(t, err)

	assert.Equal(t, "PER_PCS", resp.PricingBasis)
	assert.Equal(t, "Per Piece", resp.BasisLabel)
	assert.Equal(t, "standard", resp.VATTreatment)
	assert.True(t, resp.Active)
	require.NotNil(t, resp.Margin)
	assert.Equal(t, "9.8", *resp.Margin)
}

func TestProductCreate_DisallowedBasisRejected(t *testing.T) {
	svc := service.NewProductService(newStubProductRepo())

	_, err := svc.Create(context.Background(), dto.SaveProductRequest{
		Code:         "HRC-2.0",
		Name:         "HR Coil 2.0mm",
		Category:     "COIL",
		PricingBasis: "PER_PCS", // coils trade per metric ton only
		CostPrice:    dec("48500"),
		SellingPrice: dec("52400"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed for category COIL")
}

func TestProductCreate_WeightBasisRequiresUnitWeight(t *testing.T) {
	svc := service.NewProductService(newStubProductRepo())

	_, err := svc.Create(context.Background(), dto.SaveProductRequest{
		Code:         "TMT-12",
		Name:         "TMT Bar 12mm",
		Category:     "BAR",
		PricingBasis: "PER_KG",
		CostPrice:    dec("51"),
		SellingPrice: dec("55.2"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a unit weight")

	w := dec("10.66")
	resp, err := svc.Create(context.Background(), dto.SaveProductRequest{
		Code:         "TMT-12",
		Name:         "TMT Bar 12mm",
		Category:     "BAR",
		PricingBasis: "PER_KG",
		UnitWeightKg: &w,
		CostPrice:    dec("51"),
		SellingPrice: dec("55.2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PER_KG", resp.PricingBasis)
}

func TestProductCreate_UnknownCategoryAllowsAnyBasis(t *testing.T) {
	svc := service.NewProductService(newStubProductRepo())

	resp, err := svc.Create(context.Background(), dto.SaveProductRequest{
		Code:         "BINDING-WIRE",
		Name:         "Binding Wire 18G",
		Category:     "WIRE",
		PricingBasis: "PER_LOT",
		CostPrice:    dec("62"),
		SellingPrice: dec("71"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PER_LOT", resp.PricingBasis)
}

func TestProductUpdate_RevalidatesBasisAgainstNewCategory(t *testing.T) {
	repo := newStubProductRepo()
	svc := service.NewProductService(repo)
	p := seedProduct(repo, "MS-PIPE-25", "145", "162")
	p.Category = "PIPE"
	p.PricingBasis = "PER_METER"

	// Moving the product to COIL invalidates its PER_METER basis
	_, err := svc.Update(context.Background(), p.ID, dto.SaveProductRequest{
		Code:         p.Code,
		Name:         p.Name,
		Category:     "COIL",
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed for category COIL")
}

func TestProductDeactivate_SoftDeletes(t *testing.T) {
	repo := newStubProductRepo()
	svc := service.NewProductService(repo)
	p := seedProduct(repo, "CRC-1.2", "55500", "60100")

	require.NoError(t, svc.Deactivate(context.Background(), p.ID))
	assert.False(t, repo.products[p.ID].Active)

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}
