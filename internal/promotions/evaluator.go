package promotions

import (
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
)

// FieldPromotion is the request field promotion failures are reported on.
const FieldPromotion = "promotion"

var (
	ErrPromotionNotActive     = stdErrors.New("promotion not active for selected date")
	ErrPromotionNotApplicable = stdErrors.New("promotion cannot apply to this sale")
)

var hundred = decimal.NewFromInt(100)

// Origin records how a promotion reached the sale.
type Origin string

const (
	// OriginExplicit is a promotion the caller picked.
	OriginExplicit Origin = "explicit"
	// OriginAuto is the best active promotion chosen on the caller's behalf.
	OriginAuto Origin = "auto"
	// OriginRetained is the promotion already attached to a sale being edited.
	OriginRetained Origin = "retained"
)

// ApplyInput carries everything needed to resolve a promotion against a sale.
type ApplyInput struct {
	Promotion     *models.Promotion
	Origin        Origin
	Date          time.Time
	ProductsTotal decimal.Decimal
	ServicesTotal decimal.Decimal
}

// Outcome is what gets persisted on the sale. Both fields are nil when no promotion applies.
type Outcome struct {
	PromotionID    *uuid.UUID
	DiscountAmount *decimal.Decimal
}

// Discount returns the discount amount, zero when none applies.
func (o Outcome) Discount() decimal.Decimal {
	if o.DiscountAmount == nil {
		return decimal.Zero
	}
	return *o.DiscountAmount
}

// IsActiveForDate reports whether p can apply on date. Only the calendar date matters and
// both window bounds are inclusive.
func IsActiveForDate(p models.Promotion, date time.Time) bool {
	if !p.Active {
		return false
	}
	day := calendarDay(date)
	if p.StartsAt != nil && day < calendarDay(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && day > calendarDay(*p.EndsAt) {
		return false
	}
	return matchesWeekday(p, date)
}

// SelectAuto picks the active promotion with the highest percentage, lowest id on ties.
func SelectAuto(candidates []models.Promotion, date time.Time) *models.Promotion {
	var best *models.Promotion
	for i := range candidates {
		p := candidates[i]
		if !IsActiveForDate(p, date) {
			continue
		}
		if best == nil {
			best = &p
			continue
		}
		switch cmp := p.Percentage.Cmp(best.Percentage); {
		case cmp > 0, cmp == 0 && p.ID.String() < best.ID.String():
			best = &p
		}
	}
	return best
}

// EligibleBase sums the subtotals p is allowed to discount.
func EligibleBase(p models.Promotion, productsTotal, servicesTotal decimal.Decimal) decimal.Decimal {
	base := decimal.Zero
	if p.ApplicableToProducts {
		base = base.Add(productsTotal)
	}
	if p.ApplicableToServices {
		base = base.Add(servicesTotal)
	}
	return base
}

// ComputeDiscount applies p to base. A percentage wins over a fixed amount, and a fixed
// amount is capped at the base.
func ComputeDiscount(p models.Promotion, base decimal.Decimal) decimal.Decimal {
	switch {
	case p.Percentage.IsPositive():
		return base.Mul(p.Percentage).Div(hundred).Round(2)
	case p.Amount.IsPositive():
		return decimal.Min(p.Amount, base).Round(2)
	default:
		return decimal.Zero
	}
}

// Apply resolves a promotion for a sale. An explicit pick that is not active fails; an
// auto or retained pick that is outside its window or switched off is dropped silently,
// but a weekday mismatch fails for every origin. A promotion with nothing to discount
// fails regardless of origin.
func Apply(in ApplyInput) (Outcome, error) {
	if in.Promotion == nil {
		return Outcome{}, nil
	}
	p := *in.Promotion

	if !IsActiveForDate(p, in.Date) {
		if in.Origin == OriginExplicit || !matchesWeekday(p, in.Date) {
			return Outcome{}, pkgerrors.WrapFieldError(FieldPromotion, ErrPromotionNotActive, ErrPromotionNotActive.Error())
		}
		return Outcome{}, nil
	}

	base := EligibleBase(p, in.ProductsTotal, in.ServicesTotal)
	if !base.IsPositive() {
		return Outcome{}, pkgerrors.WrapFieldError(FieldPromotion, ErrPromotionNotApplicable, ErrPromotionNotApplicable.Error())
	}

	discount := ComputeDiscount(p, base)
	if discount.IsPositive() || in.Origin != OriginAuto {
		id := p.ID
		return Outcome{PromotionID: &id, DiscountAmount: &discount}, nil
	}
	return Outcome{}, nil
}

func matchesWeekday(p models.Promotion, date time.Time) bool {
	if !p.DaysOfWeek.IsRestricted() {
		return true
	}
	return p.DaysOfWeek.Contains(date.Weekday())
}

func calendarDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
