package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChangeRecord is one row of the append-only price-change log.
// Records are immutable — never updated or deleted after creation.
// OldSellingPrice is null on INSERT, NewSellingPrice is null on DELETE.
type PriceChangeRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PriceListID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName     string    `gorm:"not null"`
	ChangeType      string    `gorm:"not null"` // INSERT | UPDATE | DELETE
	OldSellingPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	NewSellingPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ChangedBy       string           `gorm:"not null;default:'System'"`
	ChangedAt       time.Time        `gorm:"not null;index"`
}
