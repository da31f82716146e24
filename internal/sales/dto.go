package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonpos/salonpos-backend/pkg/enums"
	"github.com/salonpos/salonpos-backend/pkg/types"
)

// ProductLineInput requests Quantity units of a product.
type ProductLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ServiceLineInput requests a service. Quantity is informational and defaults to 1.
type ServiceLineInput struct {
	ServiceID uuid.UUID
	Quantity  int
}

// CreateSaleInput is the payload for checking out a new sale.
type CreateSaleInput struct {
	CustomerName  string
	CustomerPhone *string
	SaleDate      time.Time
	Status        enums.SaleStatus
	HairdresserID *uuid.UUID
	Products      []ProductLineInput
	Services      []ServiceLineInput
	PromotionID   *uuid.UUID
	ActorUserID   *uuid.UUID
}

// UpdateSaleInput is a patch. Absent fields keep their stored value; present line
// slices replace the stored lines even when empty; a present nil promotion clears it.
type UpdateSaleInput struct {
	CustomerName  types.Optional[string]
	CustomerPhone types.Optional[*string]
	SaleDate      types.Optional[time.Time]
	Status        types.Optional[enums.SaleStatus]
	HairdresserID types.Optional[*uuid.UUID]
	Products      types.Optional[[]ProductLineInput]
	Services      types.Optional[[]ServiceLineInput]
	PromotionID   types.Optional[*uuid.UUID]
	ActorUserID   *uuid.UUID
}

// SaleResult is what a committed mutation reports back to the caller.
type SaleResult struct {
	SaleID         uuid.UUID        `json:"sale_id"`
	GrossAmount    decimal.Decimal  `json:"gross_amount"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	PromotionID    *uuid.UUID       `json:"promotion_id"`
}
