package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgdb "github.com/salonpos/salonpos-backend/pkg/db"
	"github.com/salonpos/salonpos-backend/pkg/db/models"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
)

// FieldProducts is the request field stock failures are reported on.
const FieldProducts = "products"

const quantityConstraint = "chk_products_quantity_non_negative"

// LockedRow is the slice of a product row read under an exclusive lock.
type LockedRow struct {
	ID       uuid.UUID
	Name     string
	Quantity int
}

// InsufficientStockError reports a requested quantity above what is available.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (available: %d)", e.ProductName, e.Available)
}

func insufficient(row LockedRow, requested int) error {
	cause := &InsufficientStockError{
		ProductID:   row.ID,
		ProductName: row.Name,
		Available:   row.Quantity,
		Requested:   requested,
	}
	return pkgerrors.WrapFieldError(FieldProducts, cause, cause.Error())
}

// Ledger owns product quantities. Every read that feeds an availability decision and
// every write happens under a row lock held until the enclosing transaction ends.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx binds the ledger to a transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	if tx == nil {
		return l
	}
	return &Ledger{db: tx}
}

// LockAndFetch locks the shop's rows for productIDs and returns them keyed by id. Ids
// are de-duplicated and locked in ascending order so concurrent callers cannot deadlock
// on each other. Ids outside the shop are absent from the result.
func (l *Ledger) LockAndFetch(ctx context.Context, shopID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]LockedRow, error) {
	ids := sortedUnique(productIDs)
	locked := make(map[uuid.UUID]LockedRow, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	var rows []LockedRow
	err := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "name", "quantity").
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	for _, row := range rows {
		locked[row.ID] = row
	}
	return locked, nil
}

// CheckAvailability compares requested quantities against locked rows and fails on the
// first product that cannot be covered. order fixes the iteration order; when empty the
// requested ids are checked in ascending order. Non-positive requests always pass.
func CheckAvailability(requested map[uuid.UUID]int, locked map[uuid.UUID]LockedRow, order []uuid.UUID) error {
	if len(order) == 0 {
		order = make([]uuid.UUID, 0, len(requested))
		for id := range requested {
			order = append(order, id)
		}
		order = sortedUnique(order)
	}

	for _, id := range order {
		qty, ok := requested[id]
		if !ok || qty <= 0 {
			continue
		}
		row, ok := locked[id]
		if !ok {
			row = LockedRow{ID: id, Name: id.String()}
		}
		if qty > row.Quantity {
			return insufficient(row, qty)
		}
	}
	return nil
}

// ApplyDelta consumes delta units of stock when positive and restores -delta units when
// negative. The row lock is re-acquired first and the decrement is guarded so the
// quantity can never drop below zero.
func (l *Ledger) ApplyDelta(ctx context.Context, shopID, productID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}

	rows, err := l.LockAndFetch(ctx, shopID, []uuid.UUID{productID})
	if err != nil {
		return err
	}
	row, ok := rows[productID]
	if !ok {
		if delta > 0 {
			return insufficient(LockedRow{ID: productID, Name: productID.String()}, delta)
		}
		return fmt.Errorf("restore stock: product %s not found in shop %s", productID, shopID)
	}

	query := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND shop_id = ?", productID, shopID)

	var res *gorm.DB
	if delta > 0 {
		res = query.Where("quantity >= ?", delta).
			Updates(map[string]any{"quantity": gorm.Expr("quantity - ?", delta)})
	} else {
		res = query.Updates(map[string]any{"quantity": gorm.Expr("quantity + ?", -delta)})
	}

	if res.Error != nil {
		if pkgdb.IsCheckViolation(res.Error, quantityConstraint) {
			return insufficient(row, delta)
		}
		return fmt.Errorf("apply stock delta %d to product %s: %w", delta, productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return insufficient(row, delta)
	}
	return nil
}

// IsInsufficientStock reports whether err carries an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
