package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PriceList is a named, currency-scoped collection of product→price
// overrides, optionally time-bounded and optionally the company-wide default.
// At most one list per currency may be the default; the service enforces it
// transactionally. Deleting deactivates — the row and its items survive for
// the audit trail.
type PriceList struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	Description   *string
	Currency      string `gorm:"type:char(3);not null"`
	IsActive      bool   `gorm:"not null;default:true"`
	IsDefault     bool   `gorm:"not null;default:false;index"`
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []PriceListItem `gorm:"foreignKey:PriceListID"`
}

// PriceListItem is one product override inside a list. Position preserves
// insertion order; (price_list_id, product_id) is unique.
type PriceListItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PriceListID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_pricelist_product,priority:1"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_pricelist_product,priority:2"`
	ProductName  string          `gorm:"not null"` // denormalized for display
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MinQuantity  int             `gorm:"not null;default:1"`
	Position     int             `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
