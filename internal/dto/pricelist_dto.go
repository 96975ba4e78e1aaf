package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PriceListItemPayload uses snake_case on the wire for item fields.
type PriceListItemPayload struct {
	ProductID    string          `json:"product_id"    validate:"required,uuid"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"min=0"`
	MinQuantity  int             `json:"min_quantity"  validate:"min=0"`
}

type SavePriceListRequest struct {
	// Name is deliberately not tagged required: blank names get the editor's
	// own "Price list name is required" message instead of a field map.
	Name          string                 `json:"name"        validate:"max=120"`
	Description   *string                `json:"description"`
	Currency      string                 `json:"currency"    validate:"required,len=3"`
	IsActive      *bool                  `json:"is_active"`
	IsDefault     bool                   `json:"is_default"`
	EffectiveFrom *string                `json:"effective_from" validate:"omitempty,datetime=2006-01-02"`
	EffectiveTo   *string                `json:"effective_to"   validate:"omitempty,datetime=2006-01-02"`
	Metadata      map[string]interface{} `json:"metadata"`
	Items         []PriceListItemPayload `json:"items" validate:"dive"`
}

// SetItemPriceRequest carries the raw form value; parsing is permissive
// (longest numeric prefix, garbage → 0) on purpose.
type SetItemPriceRequest struct {
	Value string `json:"value"`
}

type BulkAdjustRequest struct {
	Type       string          `json:"type"       validate:"required,oneof=increase decrease"`
	Percentage decimal.Decimal `json:"percentage" validate:"min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type PriceListFilter struct {
	Currency string `form:"currency"`
	Active   string `form:"active"` // "false" = inactive, "all" = everything, else active only
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PriceListItemResponse struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinQuantity  int             `json:"min_quantity"`
	// Margin is derived from the product's cost price; nil when no
	// meaningful margin exists (zero price or unknown cost).
	Margin *string `json:"margin,omitempty"`
}

type PriceListResponse struct {
	// ID is empty for unsaved drafts (copy-from-source output).
	ID            string                  `json:"id,omitempty"`
	Name          string                  `json:"name"`
	Description   *string                 `json:"description"`
	Currency      string                  `json:"currency"`
	IsActive      bool                    `json:"is_active"`
	IsDefault     bool                    `json:"is_default"`
	EffectiveFrom *string                 `json:"effective_from"`
	EffectiveTo   *string                 `json:"effective_to"`
	Metadata      map[string]interface{}  `json:"metadata,omitempty"`
	Items         []PriceListItemResponse `json:"items,omitempty"`
}

type PriceListSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	IsActive  bool   `json:"is_active"`
	IsDefault bool   `json:"is_default"`
	ItemCount int    `json:"item_count"`
}

type PriceListListResponse struct {
	PriceLists []PriceListSummary `json:"pricelists"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

// GetPriceListResponse matches the collaborator contract:
// {pricelist, items}.
type GetPriceListResponse struct {
	PriceList PriceListResponse       `json:"pricelist"`
	Items     []PriceListItemResponse `json:"items"`
}

type BulkAdjustResponse struct {
	Adjusted int                     `json:"adjusted"`
	Items    []PriceListItemResponse `json:"items"`
}

// SeedItemsResponse carries default-list items used to seed a new list.
// Empty when no default list exists — never an error.
type SeedItemsResponse struct {
	Items []PriceListItemResponse `json:"items"`
}
