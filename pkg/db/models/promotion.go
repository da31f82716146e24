package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/salonpos/salonpos-backend/pkg/db/types"
)

// Promotion describes a shop discount rule. StartsAt and EndsAt are inclusive calendar
// dates; a nil bound is open. An empty DaysOfWeek means every day. EndAnnouncedAt is
// bookkeeping for the end-of-window event and never affects evaluation.
type Promotion struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ShopID               uuid.UUID        `gorm:"column:shop_id;type:uuid;not null;index"`
	Name                 string           `gorm:"column:name;not null"`
	Percentage           decimal.Decimal  `gorm:"column:percentage;type:numeric(5,2);not null;default:0"`
	Amount               decimal.Decimal  `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	Active               bool             `gorm:"column:active;not null"`
	ApplicableToProducts bool             `gorm:"column:applicable_to_products;not null"`
	ApplicableToServices bool             `gorm:"column:applicable_to_services;not null"`
	StartsAt             *time.Time       `gorm:"column:starts_at;type:date"`
	EndsAt               *time.Time       `gorm:"column:ends_at;type:date"`
	DaysOfWeek           dbtypes.Weekdays `gorm:"column:days_of_week;type:jsonb"`
	EndAnnouncedAt       *time.Time       `gorm:"column:end_announced_at"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Promotion) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
