package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonpos/salonpos-backend/api/controllers/shopcontext"
	"github.com/salonpos/salonpos-backend/api/responses"
	"github.com/salonpos/salonpos-backend/api/validators"
	salessvc "github.com/salonpos/salonpos-backend/internal/sales"
	"github.com/salonpos/salonpos-backend/pkg/db/models"
	"github.com/salonpos/salonpos-backend/pkg/enums"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
	"github.com/salonpos/salonpos-backend/pkg/logger"
	"github.com/salonpos/salonpos-backend/pkg/types"
)

const (
	maxCustomerNameLen  = 120
	maxCustomerPhoneLen = 32
)

// SaleCreate records a sale for the caller's shop.
func SaleCreate(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		shopID, err := shopcontext.ResolveShopID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ActorUserID = shopcontext.ResolveActorID(r)

		result, err := svc.Create(r.Context(), shopID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// SaleGet returns a sale with its line snapshots.
func SaleGet(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		shopID, saleID, err := resolveSaleRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), shopID, saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSaleView(sale))
	}
}

// SaleUpdate applies a partial edit. Absent fields keep their stored value.
func SaleUpdate(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		shopID, saleID, err := resolveSaleRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ActorUserID = shopcontext.ResolveActorID(r)

		result, err := svc.Update(r.Context(), shopID, saleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SaleDelete removes a sale and restores the stock it consumed.
func SaleDelete(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		shopID, saleID, err := resolveSaleRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), shopID, saleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

func resolveSaleRoute(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	shopID, err := shopcontext.ResolveShopID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	saleID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "saleId")))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.WrapFieldError("sale_id", err, "invalid sale id")
	}
	return shopID, saleID, nil
}

type productLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type serviceLineRequest struct {
	ServiceID string `json:"service_id" validate:"required,uuid"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

type createSaleRequest struct {
	CustomerName  string               `json:"customer_name" validate:"required,max=120"`
	CustomerPhone *string              `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
	SaleDate      string               `json:"sale_date" validate:"required"`
	Status        string               `json:"status,omitempty" validate:"omitempty,oneof=completed pending canceled"`
	HairdresserID *string              `json:"hairdresser_id,omitempty" validate:"omitempty,uuid"`
	Products      []productLineRequest `json:"products,omitempty" validate:"omitempty,dive"`
	Services      []serviceLineRequest `json:"services,omitempty" validate:"omitempty,dive"`
	PromotionID   *string              `json:"promotion_id,omitempty" validate:"omitempty,uuid"`
}

func (r createSaleRequest) toInput() (salessvc.CreateSaleInput, error) {
	saleDate, err := validators.ParseDate(salessvc.FieldSaleDate, r.SaleDate)
	if err != nil {
		return salessvc.CreateSaleInput{}, err
	}
	status, err := enums.ParseSaleStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return salessvc.CreateSaleInput{}, pkgerrors.WrapFieldError(salessvc.FieldStatus, err, "invalid sale status")
	}
	hairdresserID, err := parseOptionalID(salessvc.FieldHairdresserID, r.HairdresserID)
	if err != nil {
		return salessvc.CreateSaleInput{}, err
	}
	promotionID, err := parseOptionalID("promotion_id", r.PromotionID)
	if err != nil {
		return salessvc.CreateSaleInput{}, err
	}
	products, err := toProductInputs(r.Products)
	if err != nil {
		return salessvc.CreateSaleInput{}, err
	}
	services, err := toServiceInputs(r.Services)
	if err != nil {
		return salessvc.CreateSaleInput{}, err
	}

	return salessvc.CreateSaleInput{
		CustomerName:  validators.SanitizeString(r.CustomerName, maxCustomerNameLen),
		CustomerPhone: sanitizePhone(r.CustomerPhone),
		SaleDate:      saleDate,
		Status:        status,
		HairdresserID: hairdresserID,
		Products:      products,
		Services:      services,
		PromotionID:   promotionID,
	}, nil
}

// updateSaleRequest tells absent keys apart from explicit nulls; promotion_id: null
// detaches the promotion while an absent key keeps and re-checks it.
type updateSaleRequest struct {
	CustomerName  types.Optional[string]               `json:"customer_name"`
	CustomerPhone types.Optional[*string]              `json:"customer_phone"`
	SaleDate      types.Optional[string]               `json:"sale_date"`
	Status        types.Optional[string]               `json:"status"`
	HairdresserID types.Optional[*string]              `json:"hairdresser_id"`
	Products      types.Optional[[]productLineRequest] `json:"products"`
	Services      types.Optional[[]serviceLineRequest] `json:"services"`
	PromotionID   types.Optional[*string]              `json:"promotion_id"`
}

type lineSet struct {
	Products []productLineRequest `json:"products" validate:"omitempty,dive"`
	Services []serviceLineRequest `json:"services" validate:"omitempty,dive"`
}

func (r updateSaleRequest) toInput() (salessvc.UpdateSaleInput, error) {
	var input salessvc.UpdateSaleInput

	if err := validators.ValidateStruct(lineSet{Products: r.Products.Value, Services: r.Services.Value}); err != nil {
		return input, err
	}

	if r.CustomerName.Present {
		name := validators.SanitizeString(r.CustomerName.Value, maxCustomerNameLen)
		if name == "" {
			return input, pkgerrors.NewFieldError(salessvc.FieldCustomerName, "customer name is required")
		}
		input.CustomerName = types.Some(name)
	}
	if r.CustomerPhone.Present {
		input.CustomerPhone = types.Some(sanitizePhone(r.CustomerPhone.Value))
	}
	if r.SaleDate.Present {
		saleDate, err := validators.ParseDate(salessvc.FieldSaleDate, r.SaleDate.Value)
		if err != nil {
			return input, err
		}
		input.SaleDate = types.Some(saleDate)
	}
	if r.Status.Present {
		raw := strings.TrimSpace(r.Status.Value)
		if raw == "" {
			return input, pkgerrors.NewFieldError(salessvc.FieldStatus, "invalid sale status")
		}
		status, err := enums.ParseSaleStatus(raw)
		if err != nil {
			return input, pkgerrors.WrapFieldError(salessvc.FieldStatus, err, "invalid sale status")
		}
		input.Status = types.Some(status)
	}
	if r.HairdresserID.Present {
		id, err := parseOptionalID(salessvc.FieldHairdresserID, r.HairdresserID.Value)
		if err != nil {
			return input, err
		}
		input.HairdresserID = types.Some(id)
	}
	if r.Products.Present {
		products, err := toProductInputs(r.Products.Value)
		if err != nil {
			return input, err
		}
		input.Products = types.Some(products)
	}
	if r.Services.Present {
		services, err := toServiceInputs(r.Services.Value)
		if err != nil {
			return input, err
		}
		input.Services = types.Some(services)
	}
	if r.PromotionID.Present {
		id, err := parseOptionalID("promotion_id", r.PromotionID.Value)
		if err != nil {
			return input, err
		}
		input.PromotionID = types.Some(id)
	}
	return input, nil
}

func toProductInputs(lines []productLineRequest) ([]salessvc.ProductLineInput, error) {
	out := make([]salessvc.ProductLineInput, 0, len(lines))
	for _, line := range lines {
		id, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, pkgerrors.WrapFieldError("products", err, "invalid product id")
		}
		out = append(out, salessvc.ProductLineInput{ProductID: id, Quantity: line.Quantity})
	}
	return out, nil
}

func toServiceInputs(lines []serviceLineRequest) ([]salessvc.ServiceLineInput, error) {
	out := make([]salessvc.ServiceLineInput, 0, len(lines))
	for _, line := range lines {
		id, err := uuid.Parse(line.ServiceID)
		if err != nil {
			return nil, pkgerrors.WrapFieldError("services", err, "invalid service id")
		}
		qty := 1
		if line.Quantity != nil {
			qty = *line.Quantity
		}
		out = append(out, salessvc.ServiceLineInput{ServiceID: id, Quantity: qty})
	}
	return out, nil
}

func parseOptionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.WrapFieldError(field, err, "invalid id")
	}
	return &id, nil
}

func sanitizePhone(raw *string) *string {
	if raw == nil {
		return nil
	}
	phone := validators.SanitizeString(*raw, maxCustomerPhoneLen)
	if phone == "" {
		return nil
	}
	return &phone
}

type saleLineView struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type saleView struct {
	ID             uuid.UUID        `json:"id"`
	ShopID         uuid.UUID        `json:"shop_id"`
	CustomerName   string           `json:"customer_name"`
	CustomerPhone  *string          `json:"customer_phone,omitempty"`
	SaleDate       string           `json:"sale_date"`
	Status         enums.SaleStatus `json:"status"`
	HairdresserID  *uuid.UUID       `json:"hairdresser_id,omitempty"`
	PromotionID    *uuid.UUID       `json:"promotion_id"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Products       []saleLineView   `json:"products"`
	Services       []saleLineView   `json:"services"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func newSaleView(sale *models.Sale) saleView {
	view := saleView{
		ID:             sale.ID,
		ShopID:         sale.ShopID,
		CustomerName:   sale.CustomerName,
		CustomerPhone:  sale.CustomerPhone,
		SaleDate:       sale.SaleDate.UTC().Format(validators.DateLayout),
		Status:         sale.Status,
		HairdresserID:  sale.HairdresserID,
		PromotionID:    sale.PromotionID,
		DiscountAmount: sale.DiscountAmount,
		TotalAmount:    sale.TotalAmount,
		Products:       make([]saleLineView, 0, len(sale.Products)),
		Services:       make([]saleLineView, 0, len(sale.Services)),
		CreatedAt:      sale.CreatedAt,
		UpdatedAt:      sale.UpdatedAt,
	}
	for _, line := range sale.Products {
		view.Products = append(view.Products, saleLineView{
			ID: line.ID, ItemID: line.ProductID, Quantity: line.Quantity,
			UnitPrice: line.UnitPrice, Subtotal: line.Subtotal,
		})
	}
	for _, line := range sale.Services {
		view.Services = append(view.Services, saleLineView{
			ID: line.ID, ItemID: line.ServiceID, Quantity: line.Quantity,
			UnitPrice: line.UnitPrice, Subtotal: line.Subtotal,
		})
	}
	return view
}
