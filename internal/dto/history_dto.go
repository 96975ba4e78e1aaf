package dto

import "github.com/shopspring/decimal"

// HistoryFilter mirrors the collaborator contract:
// changeType / fromDate / toDate run server-side before pagination; product
// is a name filter applied only within the returned page.
type HistoryFilter struct {
	ChangeType string `form:"changeType" validate:"omitempty,oneof=INSERT UPDATE DELETE"`
	FromDate   string `form:"fromDate"   validate:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"toDate"     validate:"omitempty,datetime=2006-01-02"`
	Product    string `form:"product"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
	Offset     int    `form:"offset,default=0" validate:"min=0"`
}

// PriceChangeItem is one history row with its display classification
// precomputed.
type PriceChangeItem struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	ProductName     string           `json:"product_name"`
	ChangeType      string           `json:"change_type"`
	Label           string           `json:"label"`
	ColorClass      string           `json:"color_class"`
	OldSellingPrice *decimal.Decimal `json:"old_selling_price"`
	NewSellingPrice *decimal.Decimal `json:"new_selling_price"`
	ChangePercent   *decimal.Decimal `json:"change_percent"`
	ChangedBy       string           `json:"changed_by"`
	ChangedAt       string           `json:"changed_at"`
}

type HistoryListResponse struct {
	History []PriceChangeItem `json:"history"`
	Total   int64             `json:"total"`
}

// ExportJobResponse acknowledges an async history export.
type ExportJobResponse struct {
	FileName string `json:"file_name"`
	Queued   bool   `json:"queued"`
}

// FXRateResponse is the cached exchange-rate lookup result.
type FXRateResponse struct {
	Base      string          `json:"base"`
	Quote     string          `json:"quote"`
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt string          `json:"fetched_at"`
}
