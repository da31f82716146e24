package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
)

// Repository resolves catalog rows within a single shop.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ProductsByID returns the shop's products among ids, keyed by id. Unknown ids are skipped.
func (r *Repository) ProductsByID(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// ServicesByID returns the shop's services among ids, keyed by id. Unknown ids are skipped.
func (r *Repository) ServicesByID(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Service, error) {
	out := make(map[uuid.UUID]models.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Service
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolve services: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// FindHairdresser loads a hairdresser owned by shopID. Missing or foreign rows yield nil, nil.
func (r *Repository) FindHairdresser(ctx context.Context, shopID, id uuid.UUID) (*models.Hairdresser, error) {
	var h models.Hairdresser
	err := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find hairdresser %s: %w", id, err)
	}
	return &h, nil
}
