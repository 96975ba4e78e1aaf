package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaveProductRequest tolerates both camelCase and snake_case price fields on
// the wire (upstream clients disagree); UnmarshalJSON normalizes them into
// the canonical snake_case shape so nothing downstream ever branches on
// naming again.
type SaveProductRequest struct {
	Code         string           `json:"code"          validate:"required,min=2,max=40"`
	Name         string           `json:"name"          validate:"required,min=2,max=120"`
	Description  *string          `json:"description"`
	Category     string           `json:"category"`
	PricingBasis string           `json:"pricing_basis"`
	UnitWeightKg *decimal.Decimal `json:"unit_weight_kg"`
	CostPrice    decimal.Decimal  `json:"cost_price"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
	VATTreatment string           `json:"vat_treatment" validate:"omitempty,oneof=standard zero_rated exempt reverse_charge"`
}

func (r *SaveProductRequest) UnmarshalJSON(data []byte) error {
	type alias SaveProductRequest // no methods — avoids recursion
	var raw struct {
		alias
		SellingPriceCamel *decimal.Decimal `json:"sellingPrice"`
		CostPriceCamel    *decimal.Decimal `json:"costPrice"`
		PricingBasisCamel *string          `json:"pricingBasis"`
		UnitWeightCamel   *decimal.Decimal `json:"unitWeightKg"`
		VATCamel          *string          `json:"vatTreatment"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SaveProductRequest(raw.alias)
	// snake_case wins when both are present.
	if r.SellingPrice.IsZero() && raw.SellingPriceCamel != nil {
		r.SellingPrice = *raw.SellingPriceCamel
	}
	if r.CostPrice.IsZero() && raw.CostPriceCamel != nil {
		r.CostPrice = *raw.CostPriceCamel
	}
	if r.PricingBasis == "" && raw.PricingBasisCamel != nil {
		r.PricingBasis = *raw.PricingBasisCamel
	}
	if r.UnitWeightKg == nil && raw.UnitWeightCamel != nil {
		r.UnitWeightKg = raw.UnitWeightCamel
	}
	if r.VATTreatment == "" && raw.VATCamel != nil {
		r.VATTreatment = *raw.VATCamel
	}
	return nil
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Code     string `form:"code"`
	Name     string `form:"name"`
	Category string `form:"category"`
	Active   string `form:"active"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Category     string          `json:"category"`
	PricingBasis string          `json:"pricing_basis"`
	BasisLabel   string          `json:"basis_label"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Margin       *string         `json:"margin,omitempty"`
	VATTreatment string          `json:"vat_treatment"`
	Active       bool            `json:"active"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// PriceCheckResponse is returned by the public cached price endpoint.
type PriceCheckResponse struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinQuantity  int             `json:"min_quantity"`
	Currency     string          `json:"currency"`
	PriceListID  string          `json:"price_list_id,omitempty"`
}

// BasisRulesResponse exposes the rule engine to UI clients.
type BasisRulesResponse struct {
	Category     string            `json:"category"`
	AllowedBases []string          `json:"allowed_bases"`
	DefaultBasis string            `json:"default_basis"`
	Labels       map[string]string `json:"labels"`
}
