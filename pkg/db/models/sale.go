package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/pkg/enums"
)

// Sale is a checkout at a shop. TotalAmount is the gross line total minus DiscountAmount,
// floored at zero.
type Sale struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ShopID         uuid.UUID        `gorm:"column:shop_id;type:uuid;not null;index"`
	CustomerName   string           `gorm:"column:customer_name;not null"`
	CustomerPhone  *string          `gorm:"column:customer_phone"`
	SaleDate       time.Time        `gorm:"column:sale_date;type:date;not null"`
	Status         enums.SaleStatus `gorm:"column:status;type:sale_status;not null;default:'completed'"`
	HairdresserID  *uuid.UUID       `gorm:"column:hairdresser_id;type:uuid"`
	PromotionID    *uuid.UUID       `gorm:"column:promotion_id;type:uuid"`
	DiscountAmount *decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2)"`
	TotalAmount    decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	Products       []SaleProduct    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Services       []SaleService    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
