package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/internal/catalog"
	"github.com/salonpos/salonpos-backend/internal/promotions"
	"github.com/salonpos/salonpos-backend/internal/stock"
	"github.com/salonpos/salonpos-backend/pkg/db/models"
	"github.com/salonpos/salonpos-backend/pkg/enums"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
	"github.com/salonpos/salonpos-backend/pkg/logger"
	"github.com/salonpos/salonpos-backend/pkg/metrics"
	"github.com/salonpos/salonpos-backend/pkg/outbox"
	"github.com/salonpos/salonpos-backend/pkg/outbox/payloads"
	"github.com/salonpos/salonpos-backend/pkg/types"
)

const (
	FieldCustomerName  = "customer_name"
	FieldSaleDate      = "sale_date"
	FieldStatus        = "status"
	FieldHairdresserID = "hairdresser_id"

	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	saleDateLayout = "2006-01-02"
)

var errSaleNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service runs sale mutations. Each call is one transaction: stock, lines, promotion,
// totals and the outbox event commit together or not at all.
type Service interface {
	Create(ctx context.Context, shopID uuid.UUID, input CreateSaleInput) (*SaleResult, error)
	Update(ctx context.Context, shopID, saleID uuid.UUID, input UpdateSaleInput) (*SaleResult, error)
	Delete(ctx context.Context, shopID, saleID uuid.UUID) error
	Get(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error)
}

// ServiceParams wires the coordinator.
type ServiceParams struct {
	DB            txRunner
	Sales         *Repository
	Catalog       *catalog.Repository
	Ledger        *stock.Ledger
	Promotions    *promotions.Repository
	Outbox        outboxPublisher
	Metrics       *metrics.SalesMetrics
	Logger        *logger.Logger
	AutoPromotion bool
	Now           func() time.Time
}

type service struct {
	tx            txRunner
	sales         *Repository
	catalog       *catalog.Repository
	ledger        *stock.Ledger
	promotions    *promotions.Repository
	outbox        outboxPublisher
	metrics       *metrics.SalesMetrics
	logg          *logger.Logger
	autoPromotion bool
	now           func() time.Time
}

// NewService builds the sale coordinator.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if params.Promotions == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		tx:            params.DB,
		sales:         params.Sales,
		catalog:       params.Catalog,
		ledger:        params.Ledger,
		promotions:    params.Promotions,
		outbox:        params.Outbox,
		metrics:       params.Metrics,
		logg:          params.Logger,
		autoPromotion: params.AutoPromotion,
		now:           params.Now,
	}, nil
}

// txScope bundles the repositories bound to one transaction.
type txScope struct {
	tx         *gorm.DB
	sales      *Repository
	catalog    *catalog.Repository
	ledger     *stock.Ledger
	promotions *promotions.Repository
}

func (s *service) scope(tx *gorm.DB) txScope {
	return txScope{
		tx:         tx,
		sales:      s.sales.WithTx(tx),
		catalog:    s.catalog.WithTx(tx),
		ledger:     s.ledger.WithTx(tx),
		promotions: s.promotions.WithTx(tx),
	}
}

func (s *service) Create(ctx context.Context, shopID uuid.UUID, input CreateSaleInput) (result *SaleResult, err error) {
	started := s.now()
	defer func() { s.observe(ctx, opCreate, started, err) }()

	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	status, err := validateCreate(input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sc := s.scope(tx)

		if err := s.checkHairdresser(ctx, sc, shopID, input.HairdresserID); err != nil {
			return err
		}

		productLines, productsTotal, err := s.resolveProducts(ctx, sc, shopID, input.Products)
		if err != nil {
			return err
		}
		serviceLines, servicesTotal, err := s.resolveServices(ctx, sc, shopID, input.Services)
		if err != nil {
			return err
		}

		requested, order := quantitiesByProduct(productLines)
		locked, err := sc.ledger.LockAndFetch(ctx, shopID, order)
		if err != nil {
			return err
		}
		if err := stock.CheckAvailability(requested, locked, order); err != nil {
			s.metrics.IncStockRejection()
			return err
		}

		promo, origin, err := s.pickForCreate(ctx, sc, shopID, input.PromotionID, input.SaleDate)
		if err != nil {
			return err
		}
		outcome, err := promotions.Apply(promotions.ApplyInput{
			Promotion:     promo,
			Origin:        origin,
			Date:          input.SaleDate,
			ProductsTotal: productsTotal,
			ServicesTotal: servicesTotal,
		})
		if err != nil {
			return err
		}

		gross := productsTotal.Add(servicesTotal)
		sale := &models.Sale{
			ShopID:         shopID,
			CustomerName:   strings.TrimSpace(input.CustomerName),
			CustomerPhone:  input.CustomerPhone,
			SaleDate:       input.SaleDate,
			Status:         status,
			HairdresserID:  input.HairdresserID,
			PromotionID:    outcome.PromotionID,
			DiscountAmount: outcome.DiscountAmount,
			TotalAmount:    saleTotal(gross, outcome.Discount()),
			Products:       productLines,
			Services:       serviceLines,
		}
		if err := sc.sales.Create(ctx, sale); err != nil {
			return err
		}

		for _, id := range order {
			if err := sc.ledger.ApplyDelta(ctx, shopID, id, requested[id]); err != nil {
				if stock.IsInsufficientStock(err) {
					s.metrics.IncStockRejection()
				}
				return err
			}
		}

		totals := saleTotals(sale, gross)
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleCreated,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, ShopID: shopID},
			Data: payloads.SaleCreatedEvent{
				SaleID:   sale.ID,
				ShopID:   shopID,
				SaleDate: sale.SaleDate.Format(saleDateLayout),
				Status:   sale.Status,
				Totals:   totals,
				Stock:    movements(requested),
			},
		}); err != nil {
			return err
		}

		result = newResult(sale, gross)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logMutation(ctx, "sale.created", shopID, result)
	return result, nil
}

func (s *service) Update(ctx context.Context, shopID, saleID uuid.UUID, input UpdateSaleInput) (result *SaleResult, err error) {
	started := s.now()
	defer func() { s.observe(ctx, opUpdate, started, err) }()

	if shopID == uuid.Nil || saleID == uuid.Nil {
		return nil, errSaleNotFound
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sc := s.scope(tx)

		sale, err := sc.sales.FindForShop(ctx, shopID, saleID, true)
		if err != nil {
			return err
		}
		if sale == nil {
			return errSaleNotFound
		}

		changed := applyBasicFields(sale, input)
		if input.HairdresserID.Present {
			if err := s.checkHairdresser(ctx, sc, shopID, input.HairdresserID.Value); err != nil {
				return err
			}
			sale.HairdresserID = input.HairdresserID.Value
			changed = append(changed, FieldHairdresserID)
		}

		productsTotal := sumProductLines(sale.Products)
		var newProducts []models.SaleProduct
		var deltas map[uuid.UUID]int
		if input.Products.Present {
			newProducts, productsTotal, err = s.resolveProducts(ctx, sc, shopID, input.Products.Value)
			if err != nil {
				return err
			}

			prevQty, prevOrder := quantitiesByProduct(sale.Products)
			nextQty, nextOrder := quantitiesByProduct(newProducts)
			var union []uuid.UUID
			deltas, union = stockDeltas(prevQty, nextQty, nextOrder, prevOrder)

			locked, err := sc.ledger.LockAndFetch(ctx, shopID, union)
			if err != nil {
				return err
			}
			if err := stock.CheckAvailability(positive(deltas), locked, union); err != nil {
				s.metrics.IncStockRejection()
				return err
			}
			changed = append(changed, stock.FieldProducts)
		}

		servicesTotal := sumServiceLines(sale.Services)
		var newServices []models.SaleService
		if input.Services.Present {
			newServices, servicesTotal, err = s.resolveServices(ctx, sc, shopID, input.Services.Value)
			if err != nil {
				return err
			}
			changed = append(changed, "services")
		}

		promo, origin, err := s.pickForUpdate(ctx, sc, shopID, sale, input.PromotionID)
		if err != nil {
			return err
		}
		outcome, err := promotions.Apply(promotions.ApplyInput{
			Promotion:     promo,
			Origin:        origin,
			Date:          sale.SaleDate,
			ProductsTotal: productsTotal,
			ServicesTotal: servicesTotal,
		})
		if err != nil {
			return err
		}
		if input.PromotionID.Present {
			changed = append(changed, promotions.FieldPromotion)
		}

		gross := productsTotal.Add(servicesTotal)
		sale.PromotionID = outcome.PromotionID
		sale.DiscountAmount = outcome.DiscountAmount
		sale.TotalAmount = saleTotal(gross, outcome.Discount())

		if err := sc.sales.Save(ctx, sale); err != nil {
			return err
		}
		if input.Products.Present {
			if err := sc.sales.ReplaceProductLines(ctx, sale.ID, newProducts); err != nil {
				return err
			}
			for _, id := range applyOrder(deltas) {
				if err := sc.ledger.ApplyDelta(ctx, shopID, id, deltas[id]); err != nil {
					if stock.IsInsufficientStock(err) {
						s.metrics.IncStockRejection()
					}
					return err
				}
			}
			sale.Products = newProducts
		}
		if input.Services.Present {
			if err := sc.sales.ReplaceServiceLines(ctx, sale.ID, newServices); err != nil {
				return err
			}
			sale.Services = newServices
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleUpdated,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, ShopID: shopID},
			Data: payloads.SaleUpdatedEvent{
				SaleID:        sale.ID,
				ShopID:        shopID,
				SaleDate:      sale.SaleDate.Format(saleDateLayout),
				Status:        sale.Status,
				Totals:        saleTotals(sale, gross),
				Stock:         movements(deltas),
				ChangedFields: changed,
			},
		}); err != nil {
			return err
		}

		result = newResult(sale, gross)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logMutation(ctx, "sale.updated", shopID, result)
	return result, nil
}

func (s *service) Delete(ctx context.Context, shopID, saleID uuid.UUID) (err error) {
	started := s.now()
	defer func() { s.observe(ctx, opDelete, started, err) }()

	if shopID == uuid.Nil || saleID == uuid.Nil {
		return errSaleNotFound
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sc := s.scope(tx)

		sale, err := sc.sales.FindForShop(ctx, shopID, saleID, true)
		if err != nil {
			return err
		}
		if sale == nil {
			return errSaleNotFound
		}

		held, _ := quantitiesByProduct(sale.Products)
		restore := make(map[uuid.UUID]int, len(held))
		for id, qty := range held {
			restore[id] = -qty
		}
		ids := applyOrder(restore)
		if _, err := sc.ledger.LockAndFetch(ctx, shopID, ids); err != nil {
			return err
		}
		for _, id := range ids {
			if err := sc.ledger.ApplyDelta(ctx, shopID, id, restore[id]); err != nil {
				return err
			}
		}

		if err := sc.sales.Delete(ctx, sale.ID); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleDeleted,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Actor:         &outbox.ActorRef{ShopID: shopID},
			Data: payloads.SaleDeletedEvent{
				SaleID:    sale.ID,
				ShopID:    shopID,
				Restored:  movements(held),
				DeletedAt: s.now().UTC(),
			},
		})
	})
	if err != nil {
		return err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"shop_id": shopID.String(),
		"sale_id": saleID.String(),
	})
	s.logg.Info(logCtx, "sale.deleted")
	return nil
}

func (s *service) Get(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error) {
	sale, err := s.sales.FindForShop(ctx, shopID, saleID, false)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, errSaleNotFound
	}
	return sale, nil
}

func (s *service) resolveProducts(ctx context.Context, sc txScope, shopID uuid.UUID, inputs []ProductLineInput) ([]models.SaleProduct, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, nil
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}
	catalogRows, err := sc.catalog.ProductsByID(ctx, shopID, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	lines, total := resolveProductLines(inputs, catalogRows)
	return lines, total, nil
}

func (s *service) resolveServices(ctx context.Context, sc txScope, shopID uuid.UUID, inputs []ServiceLineInput) ([]models.SaleService, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, nil
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ServiceID)
	}
	catalogRows, err := sc.catalog.ServicesByID(ctx, shopID, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	lines, total := resolveServiceLines(inputs, catalogRows)
	return lines, total, nil
}

func (s *service) checkHairdresser(ctx context.Context, sc txScope, shopID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	hairdresser, err := sc.catalog.FindHairdresser(ctx, shopID, *id)
	if err != nil {
		return err
	}
	if hairdresser == nil {
		return pkgerrors.NewFieldError(FieldHairdresserID, "hairdresser not found for this shop")
	}
	return nil
}

// pickForCreate loads the caller's promotion, or the auto pick when enabled. A promotion
// id that is missing or belongs to another shop means no promotion.
func (s *service) pickForCreate(ctx context.Context, sc txScope, shopID uuid.UUID, promotionID *uuid.UUID, date time.Time) (*models.Promotion, promotions.Origin, error) {
	if promotionID != nil {
		promo, err := sc.promotions.FindForShop(ctx, shopID, *promotionID)
		return promo, promotions.OriginExplicit, err
	}
	return s.pickAuto(ctx, sc, shopID, date)
}

// pickForUpdate resolves the promotion for an edit. An absent field keeps evaluating the
// attached promotion; a present null clears it.
func (s *service) pickForUpdate(ctx context.Context, sc txScope, shopID uuid.UUID, sale *models.Sale, field types.Optional[*uuid.UUID]) (*models.Promotion, promotions.Origin, error) {
	if field.Present {
		if field.Value == nil {
			return nil, promotions.OriginExplicit, nil
		}
		promo, err := sc.promotions.FindForShop(ctx, shopID, *field.Value)
		return promo, promotions.OriginExplicit, err
	}
	if sale.PromotionID != nil {
		promo, err := sc.promotions.FindForShop(ctx, shopID, *sale.PromotionID)
		return promo, promotions.OriginRetained, err
	}
	return s.pickAuto(ctx, sc, shopID, sale.SaleDate)
}

func (s *service) pickAuto(ctx context.Context, sc txScope, shopID uuid.UUID, date time.Time) (*models.Promotion, promotions.Origin, error) {
	if !s.autoPromotion {
		return nil, promotions.OriginAuto, nil
	}
	candidates, err := sc.promotions.ListActiveForShop(ctx, shopID)
	if err != nil {
		return nil, promotions.OriginAuto, err
	}
	return promotions.SelectAuto(candidates, date), promotions.OriginAuto, nil
}

func (s *service) observe(ctx context.Context, op string, started time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case pkgerrors.IsValidation(err), isNotFound(err):
		result = metrics.ResultRejected
	default:
		result = metrics.ResultError
		s.logg.Error(s.logg.WithField(ctx, "op", op), "sale mutation failed", err)
	}
	s.metrics.ObserveMutation(op, result, s.now().Sub(started))
}

func (s *service) logMutation(ctx context.Context, event string, shopID uuid.UUID, result *SaleResult) {
	fields := map[string]any{
		"shop_id":      shopID.String(),
		"sale_id":      result.SaleID.String(),
		"total_amount": result.TotalAmount.StringFixed(2),
	}
	if result.DiscountAmount != nil {
		fields["discount_amount"] = result.DiscountAmount.StringFixed(2)
	}
	if result.PromotionID != nil {
		fields["promotion_id"] = result.PromotionID.String()
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), event)
}

func validateCreate(input CreateSaleInput) (enums.SaleStatus, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return "", pkgerrors.NewFieldError(FieldCustomerName, "customer name is required")
	}
	if input.SaleDate.IsZero() {
		return "", pkgerrors.NewFieldError(FieldSaleDate, "sale date is required")
	}
	status, err := enums.ParseSaleStatus(string(input.Status))
	if err != nil {
		return "", pkgerrors.WrapFieldError(FieldStatus, err, "invalid sale status")
	}
	if err := validateLines(input.Products); err != nil {
		return "", err
	}
	return status, nil
}

func validateUpdate(input UpdateSaleInput) error {
	if input.CustomerName.Present && strings.TrimSpace(input.CustomerName.Value) == "" {
		return pkgerrors.NewFieldError(FieldCustomerName, "customer name is required")
	}
	if input.SaleDate.Present && input.SaleDate.Value.IsZero() {
		return pkgerrors.NewFieldError(FieldSaleDate, "sale date is required")
	}
	if input.Status.Present && !input.Status.Value.IsValid() {
		return pkgerrors.NewFieldError(FieldStatus, "invalid sale status")
	}
	if input.Products.Present {
		return validateLines(input.Products.Value)
	}
	return nil
}

func validateLines(lines []ProductLineInput) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.NewFieldError(stock.FieldProducts, "product quantity must be at least 1")
		}
	}
	return nil
}

func applyBasicFields(sale *models.Sale, input UpdateSaleInput) []string {
	changed := []string{}
	if input.CustomerName.Present {
		sale.CustomerName = strings.TrimSpace(input.CustomerName.Value)
		changed = append(changed, FieldCustomerName)
	}
	if input.CustomerPhone.Present {
		sale.CustomerPhone = input.CustomerPhone.Value
		changed = append(changed, "customer_phone")
	}
	if input.SaleDate.Present {
		sale.SaleDate = input.SaleDate.Value
		changed = append(changed, FieldSaleDate)
	}
	if input.Status.Present {
		sale.Status = input.Status.Value
		changed = append(changed, FieldStatus)
	}
	return changed
}

func saleTotals(sale *models.Sale, gross decimal.Decimal) payloads.SaleTotals {
	return payloads.SaleTotals{
		GrossAmount:    gross.Round(2),
		DiscountAmount: sale.DiscountAmount,
		TotalAmount:    sale.TotalAmount,
		PromotionID:    sale.PromotionID,
	}
}

func newResult(sale *models.Sale, gross decimal.Decimal) *SaleResult {
	return &SaleResult{
		SaleID:         sale.ID,
		GrossAmount:    gross.Round(2),
		DiscountAmount: sale.DiscountAmount,
		TotalAmount:    sale.TotalAmount,
		PromotionID:    sale.PromotionID,
	}
}

func isNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}

// IsNotFound reports whether err means the sale does not exist for the shop.
func IsNotFound(err error) bool {
	return errors.Is(err, errSaleNotFound) || isNotFound(err)
}
