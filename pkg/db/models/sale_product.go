package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleProduct snapshots the unit price of a product at the time it was sold.
type SaleProduct struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
}

func (l *SaleProduct) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
