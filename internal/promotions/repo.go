package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
)

// Repository reads and maintains shop promotions.
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

// FindForShop loads a promotion owned by shopID. A missing or foreign promotion yields nil, nil.
func (r *Repository) FindForShop(ctx context.Context, shopID, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find promotion %s: %w", id, err)
	}
	return &promo, nil
}

// ListActiveForShop returns the shop's switched-on promotions ordered by id. Date checks
// are left to the evaluator.
func (r *Repository) ListActiveForShop(ctx context.Context, shopID uuid.UUID) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND active = ?", shopID, true).
		Order("id").
		Find(&promos).Error
	if err != nil {
		return nil, fmt.Errorf("list promotions for shop %s: %w", shopID, err)
	}
	return promos, nil
}

// ListShopsWithEnded returns the shops holding active promotions whose window closed
// before asOf and has not been announced yet.
func (r *Repository) ListShopsWithEnded(ctx context.Context, asOf time.Time) ([]uuid.UUID, error) {
	var shopIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Distinct("shop_id").
		Where("active = ? AND ends_at IS NOT NULL AND ends_at < ? AND end_announced_at IS NULL", true, startOfDay(asOf)).
		Order("shop_id").
		Pluck("shop_id", &shopIDs).Error
	if err != nil {
		return nil, fmt.Errorf("list shops with ended promotions: %w", err)
	}
	return shopIDs, nil
}

// ClaimEnded stamps end_announced_at on the shop's ended, unannounced promotions and
// returns their ids. The active flag is left alone: sale dates inside a closed window
// still evaluate against it.
func (r *Repository) ClaimEnded(ctx context.Context, shopID uuid.UUID, asOf time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("shop_id = ? AND active = ? AND ends_at IS NOT NULL AND ends_at < ? AND end_announced_at IS NULL", shopID, true, startOfDay(asOf)).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("select ended promotions for shop %s: %w", shopID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	err = r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("id IN ?", ids).
		UpdateColumn("end_announced_at", asOf.UTC()).Error
	if err != nil {
		return nil, fmt.Errorf("claim ended promotions for shop %s: %w", shopID, err)
	}
	return ids, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
