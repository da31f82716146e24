package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a billable salon service. Services carry no stock.
type Service struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShopID    uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
