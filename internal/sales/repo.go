package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
)

var saleColumns = []string{
	"customer_name",
	"customer_phone",
	"sale_date",
	"status",
	"hairdresser_id",
	"promotion_id",
	"discount_amount",
	"total_amount",
	"updated_at",
}

// Repository persists sales and their line pivots.
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

// FindForShop loads a sale of shopID with its lines. When lock is set the sale row is
// held FOR UPDATE until the transaction ends. Missing or foreign sales yield nil, nil.
func (r *Repository) FindForShop(ctx context.Context, shopID, saleID uuid.UUID, lock bool) (*models.Sale, error) {
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sale models.Sale
	err := query.
		Where("id = ? AND shop_id = ?", saleID, shopID).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find sale %s: %w", saleID, err)
	}

	if err := r.db.WithContext(ctx).Where("sale_id = ?", sale.ID).Order("id").Find(&sale.Products).Error; err != nil {
		return nil, fmt.Errorf("load product lines: %w", err)
	}
	if err := r.db.WithContext(ctx).Where("sale_id = ?", sale.ID).Order("id").Find(&sale.Services).Error; err != nil {
		return nil, fmt.Errorf("load service lines: %w", err)
	}
	return &sale, nil
}

// Create inserts the sale row followed by its lines.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) error {
	products, services := sale.Products, sale.Services
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error; err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	if err := r.insertProductLines(ctx, sale.ID, products); err != nil {
		return err
	}
	if err := r.insertServiceLines(ctx, sale.ID, services); err != nil {
		return err
	}
	sale.Products, sale.Services = products, services
	return nil
}

// Save writes the mutable sale columns, including nil pointers.
func (r *Repository) Save(ctx context.Context, sale *models.Sale) error {
	res := r.db.WithContext(ctx).
		Model(sale).
		Select(saleColumns).
		Omit(clause.Associations).
		Updates(sale)
	if res.Error != nil {
		return fmt.Errorf("save sale %s: %w", sale.ID, res.Error)
	}
	return nil
}

// ReplaceProductLines drops every product pivot of saleID and inserts lines.
func (r *Repository) ReplaceProductLines(ctx context.Context, saleID uuid.UUID, lines []models.SaleProduct) error {
	if err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&models.SaleProduct{}).Error; err != nil {
		return fmt.Errorf("clear product lines: %w", err)
	}
	return r.insertProductLines(ctx, saleID, lines)
}

// ReplaceServiceLines drops every service pivot of saleID and inserts lines.
func (r *Repository) ReplaceServiceLines(ctx context.Context, saleID uuid.UUID, lines []models.SaleService) error {
	if err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&models.SaleService{}).Error; err != nil {
		return fmt.Errorf("clear service lines: %w", err)
	}
	return r.insertServiceLines(ctx, saleID, lines)
}

// Delete detaches all pivots and removes the sale row.
func (r *Repository) Delete(ctx context.Context, saleID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("sale_id = ?", saleID).Delete(&models.SaleProduct{}).Error; err != nil {
		return fmt.Errorf("detach product lines: %w", err)
	}
	if err := db.Where("sale_id = ?", saleID).Delete(&models.SaleService{}).Error; err != nil {
		return fmt.Errorf("detach service lines: %w", err)
	}
	res := db.Where("id = ?", saleID).Delete(&models.Sale{})
	if res.Error != nil {
		return fmt.Errorf("delete sale %s: %w", saleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete sale %s: no rows affected", saleID)
	}
	return nil
}

func (r *Repository) insertProductLines(ctx context.Context, saleID uuid.UUID, lines []models.SaleProduct) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = uuid.Nil
		lines[i].SaleID = saleID
	}
	if err := r.db.WithContext(ctx).Create(&lines).Error; err != nil {
		return fmt.Errorf("attach product lines: %w", err)
	}
	return nil
}

func (r *Repository) insertServiceLines(ctx context.Context, saleID uuid.UUID, lines []models.SaleService) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = uuid.Nil
		lines[i].SaleID = saleID
	}
	if err := r.db.WithContext(ctx).Create(&lines).Error; err != nil {
		return fmt.Errorf("attach service lines: %w", err)
	}
	return nil
}
