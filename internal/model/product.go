package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one catalog entry. Category constrains which pricing bases are
// valid (see internal/pricing); UnitWeightKg is required when the basis
// prices per unit mass.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code         string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"index;not null"`
	Description  *string
	Category     string          `gorm:"not null"` // COIL | SHEET | PLATE | PIPE | TUBE | BAR | FLAT
	PricingBasis string          `gorm:"not null;default:'PER_MT'"`
	UnitWeightKg decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// VATTreatment is carried for the adjacent accounting module; no VAT
	// logic lives in this service.
	VATTreatment string `gorm:"not null;default:'standard'"` // standard | zero_rated | exempt | reverse_charge
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
