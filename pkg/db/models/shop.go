package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is the tenant boundary every catalog row and sale belongs to.
type Shop struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Timezone  string    `gorm:"column:timezone;not null;default:'UTC'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shop) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
