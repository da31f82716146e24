package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Hairdresser struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ShopID    uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (h *Hairdresser) BeforeCreate(*gorm.DB) error {
	assignID(&h.ID)
	return nil
}
