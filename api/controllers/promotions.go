package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonpos/salonpos-backend/api/controllers/shopcontext"
	"github.com/salonpos/salonpos-backend/api/responses"
	"github.com/salonpos/salonpos-backend/api/validators"
	promotionsvc "github.com/salonpos/salonpos-backend/internal/promotions"
	"github.com/salonpos/salonpos-backend/pkg/db/models"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
	"github.com/salonpos/salonpos-backend/pkg/logger"
)

// PromotionsActive previews the promotions usable on ?date= (default today) and the
// one auto-selection would attach.
func PromotionsActive(svc promotionsvc.Service, logg *logger.Logger, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion service unavailable"))
			return
		}

		shopID, err := shopcontext.ResolveShopID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := validators.ParseQueryDate(r, "date", now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.ActiveForDate(r.Context(), shopID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := activePromotionsView{
			Date:       listing.Date.Format(validators.DateLayout),
			Promotions: make([]promotionView, 0, len(listing.Promotions)),
		}
		for _, p := range listing.Promotions {
			view.Promotions = append(view.Promotions, newPromotionView(p))
		}
		if listing.AutoPick != nil {
			id := listing.AutoPick.ID
			view.AutoPromotionID = &id
		}
		responses.WriteSuccess(w, view)
	}
}

type activePromotionsView struct {
	Date            string          `json:"date"`
	Promotions      []promotionView `json:"promotions"`
	AutoPromotionID *uuid.UUID      `json:"auto_promotion_id"`
}

type promotionView struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Percentage           decimal.Decimal `json:"percentage"`
	Amount               decimal.Decimal `json:"amount"`
	ApplicableToProducts bool            `json:"applicable_to_products"`
	ApplicableToServices bool            `json:"applicable_to_services"`
	StartsAt             *string         `json:"starts_at"`
	EndsAt               *string         `json:"ends_at"`
	DaysOfWeek           []int           `json:"days_of_week"`
}

func newPromotionView(p models.Promotion) promotionView {
	days := []int(p.DaysOfWeek.Normalize())
	if days == nil {
		days = []int{}
	}
	return promotionView{
		ID:                   p.ID,
		Name:                 p.Name,
		Percentage:           p.Percentage,
		Amount:               p.Amount,
		ApplicableToProducts: p.ApplicableToProducts,
		ApplicableToServices: p.ApplicableToServices,
		StartsAt:             formatDate(p.StartsAt),
		EndsAt:               formatDate(p.EndsAt),
		DaysOfWeek:           days,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(validators.DateLayout)
	return &s
}
