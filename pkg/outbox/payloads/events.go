package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonpos/salonpos-backend/pkg/enums"
)

// StockMovement is the net change applied to one product. Positive quantities were
// consumed, negative ones restored.
type StockMovement struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// SaleTotals snapshots the money fields of a sale after a mutation.
type SaleTotals struct {
	GrossAmount    decimal.Decimal  `json:"gross_amount"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	PromotionID    *uuid.UUID       `json:"promotion_id,omitempty"`
}

// SaleCreatedEvent is emitted when a sale is checked out.
type SaleCreatedEvent struct {
	SaleID   uuid.UUID        `json:"sale_id"`
	ShopID   uuid.UUID        `json:"shop_id"`
	SaleDate string           `json:"sale_date"`
	Status   enums.SaleStatus `json:"status"`
	Totals   SaleTotals       `json:"totals"`
	Stock    []StockMovement  `json:"stock"`
}

// SaleUpdatedEvent is emitted when a sale is edited.
type SaleUpdatedEvent struct {
	SaleID        uuid.UUID        `json:"sale_id"`
	ShopID        uuid.UUID        `json:"shop_id"`
	SaleDate      string           `json:"sale_date"`
	Status        enums.SaleStatus `json:"status"`
	Totals        SaleTotals       `json:"totals"`
	Stock         []StockMovement  `json:"stock"`
	ChangedFields []string         `json:"changed_fields"`
}

// SaleDeletedEvent is emitted when a sale is removed and its stock returned.
type SaleDeletedEvent struct {
	SaleID    uuid.UUID       `json:"sale_id"`
	ShopID    uuid.UUID       `json:"shop_id"`
	Restored  []StockMovement `json:"restored"`
	DeletedAt time.Time       `json:"deleted_at"`
}

// PromotionsEndedEvent announces promotions whose date window has closed.
type PromotionsEndedEvent struct {
	ShopID       uuid.UUID   `json:"shop_id"`
	PromotionIDs []uuid.UUID `json:"promotion_ids"`
	AsOf         string      `json:"as_of"`
}
