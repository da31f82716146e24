package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/internal/promotions"
	"github.com/salonpos/salonpos-backend/pkg/enums"
	"github.com/salonpos/salonpos-backend/pkg/logger"
	"github.com/salonpos/salonpos-backend/pkg/outbox"
	"github.com/salonpos/salonpos-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type endedPromotionRepo interface {
	ListShopsWithEnded(ctx context.Context, asOf time.Time) ([]uuid.UUID, error)
	ClaimEnded(ctx context.Context, shopID uuid.UUID, asOf time.Time) ([]uuid.UUID, error)
}

// PromotionEndJobParams configures the promotion sweep.
type PromotionEndJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository *promotions.Repository
	Outbox     outboxEmitter
}

// NewPromotionEndJob announces promotions whose window has closed, once each, one
// transaction per shop. It never touches the active flag.
func NewPromotionEndJob(params PromotionEndJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	repo := params.Repository
	return &promotionEndJob{
		logg:   params.Logger,
		db:     params.DB,
		repo:   repo,
		bind:   func(tx *gorm.DB) endedPromotionRepo { return repo.WithTx(tx) },
		outbox: params.Outbox,
		now:    time.Now,
	}, nil
}

type promotionEndJob struct {
	logg   *logger.Logger
	db     txRunner
	repo   endedPromotionRepo
	bind   func(tx *gorm.DB) endedPromotionRepo
	outbox outboxEmitter
	now    func() time.Time
}

func (j *promotionEndJob) Name() string { return "promotion-end" }

func (j *promotionEndJob) Run(ctx context.Context) error {
	asOf := j.now().UTC()
	shops, err := j.repo.ListShopsWithEnded(ctx, asOf)
	if err != nil {
		return err
	}

	var errs error
	announced := 0
	for _, shopID := range shops {
		count, err := j.announceShop(ctx, shopID, asOf)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shop %s: %w", shopID, err))
			continue
		}
		announced += count
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":     asOf.Format("2006-01-02"),
		"shops":     len(shops),
		"announced": announced,
	})
	j.logg.Info(logCtx, "promotion end sweep complete")
	return errs
}

func (j *promotionEndJob) announceShop(ctx context.Context, shopID uuid.UUID, asOf time.Time) (int, error) {
	var ids []uuid.UUID
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		ids, err = j.bind(tx).ClaimEnded(ctx, shopID, asOf)
		if err != nil || len(ids) == 0 {
			return err
		}
		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPromotionsEnded,
			AggregateType: enums.AggregatePromotion,
			AggregateID:   shopID,
			Actor:         &outbox.ActorRef{ShopID: shopID, Role: "system"},
			Data: payloads.PromotionsEndedEvent{
				ShopID:       shopID,
				PromotionIDs: ids,
				AsOf:         asOf.Format("2006-01-02"),
			},
		})
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
