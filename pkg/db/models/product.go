package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a stocked catalog item. Quantity is only mutated through the stock ledger.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShopID    uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Quantity  int             `gorm:"column:quantity;not null;default:0;check:chk_products_quantity_non_negative,quantity >= 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
