package promotions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
)

type promotionLister interface {
	ListActiveForShop(ctx context.Context, shopID uuid.UUID) ([]models.Promotion, error)
}

// ActiveListing is the set of promotions usable on a date plus the one auto-selection would pick.
type ActiveListing struct {
	Date       time.Time
	Promotions []models.Promotion
	AutoPick   *models.Promotion
}

// Service exposes promotion reads for the API.
type Service interface {
	ActiveForDate(ctx context.Context, shopID uuid.UUID, date time.Time) (*ActiveListing, error)
}

type service struct {
	repo promotionLister
}

func NewService(repo promotionLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotion repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ActiveForDate(ctx context.Context, shopID uuid.UUID, date time.Time) (*ActiveListing, error) {
	candidates, err := s.repo.ListActiveForShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	listing := &ActiveListing{Date: date, Promotions: make([]models.Promotion, 0, len(candidates))}
	for _, p := range candidates {
		if IsActiveForDate(p, date) {
			listing.Promotions = append(listing.Promotions, p)
		}
	}
	listing.AutoPick = SelectAuto(listing.Promotions, date)
	return listing, nil
}
