package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService snapshots a service price. Quantity is informational; Subtotal equals UnitPrice.
type SaleService struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ServiceID uuid.UUID       `gorm:"column:service_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null;default:1"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
}

func (l *SaleService) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
