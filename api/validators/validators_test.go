package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
)

type lineBody struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type saleBody struct {
	CustomerName string     `json:"customer_name" validate:"required,max=10"`
	Status       string     `json:"status" validate:"omitempty,oneof=completed pending"`
	Products     []lineBody `json:"products" validate:"dive"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_name":"Ana","products":[{"product_id":"5f0c6f5e-8d1c-4b1e-9b5a-2d6f0f4d9c11","quantity":2}]}`))
	var body saleBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "Ana", body.CustomerName)
	require.Len(t, body.Products, 1)
	assert.Equal(t, 2, body.Products[0].Quantity)
}

func TestDecodeJSONBodyNestedErrorsUseCollectionField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_name":"Ana","products":[{"product_id":"5f0c6f5e-8d1c-4b1e-9b5a-2d6f0f4d9c11","quantity":0}]}`))
	var body saleBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "quantity must be greater than 0", details["products"])
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndBadEnums(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_name":"Ana","tip":5}`))
	var body saleBody
	assert.True(t, pkgerrors.IsValidation(DecodeJSONBody(req, &body)))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_name":"Ana","status":"refunded"}`))
	err := DecodeJSONBody(req, &body)
	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Equal(t, "must be one of: completed pending", details["status"])
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("sale_date", "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("sale_date", "14/03/2026")
	require.Error(t, err)
	assert.Equal(t, "sale_date", pkgerrors.As(err).Field())

	_, err = ParseDate("sale_date", " ")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestParseQueryDateDefaultsToToday(t *testing.T) {
	now := time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/promotions/active", nil)
	got, err := ParseQueryDate(req, "date", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), got)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/promotions/active?date=2026-01-01", nil)
	got, err = ParseQueryDate(req, "date", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Ana", SanitizeString("  Ana  ", 0))
	assert.Equal(t, "Ana M", SanitizeString(" Ana Maria ", 5))
	assert.Equal(t, "Ana", SanitizeString("Ana Maria", 4))
}

func TestSanitizeStringKeepsMultibyteRunesWhole(t *testing.T) {
	name := strings.Repeat("é", 119) + "ñú"
	got := SanitizeString(name, 120)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 120, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("é", 119)+"ñ", got)

	assert.Equal(t, "José", SanitizeString("José", 4))
	assert.Equal(t, "Zoë", SanitizeString(" Zoë\xff ", 10), "invalid bytes are dropped")
	assert.Equal(t, "日本", SanitizeString("日本語", 2))
}
