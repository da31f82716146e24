package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonpos/salonpos-backend/internal/promotions"
	"github.com/salonpos/salonpos-backend/internal/sales"
	pkgAuth "github.com/salonpos/salonpos-backend/pkg/auth"
	"github.com/salonpos/salonpos-backend/pkg/config"
	"github.com/salonpos/salonpos-backend/pkg/db/models"
	"github.com/salonpos/salonpos-backend/pkg/enums"
	"github.com/salonpos/salonpos-backend/pkg/logger"
	"github.com/salonpos/salonpos-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type memoryIdempotencyStore struct {
	data map[string]string
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type countingSalesService struct {
	creates int
}

func (s *countingSalesService) Create(context.Context, uuid.UUID, sales.CreateSaleInput) (*sales.SaleResult, error) {
	s.creates++
	return &sales.SaleResult{SaleID: uuid.New(), TotalAmount: decimal.RequireFromString("40")}, nil
}

func (s *countingSalesService) Update(context.Context, uuid.UUID, uuid.UUID, sales.UpdateSaleInput) (*sales.SaleResult, error) {
	return &sales.SaleResult{}, nil
}

func (s *countingSalesService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (s *countingSalesService) Get(_ context.Context, shopID, saleID uuid.UUID) (*models.Sale, error) {
	return &models.Sale{ID: saleID, ShopID: shopID, Status: enums.SaleStatusCompleted}, nil
}

type emptyPromotionService struct{}

func (emptyPromotionService) ActiveForDate(_ context.Context, _ uuid.UUID, date time.Time) (*promotions.ActiveListing, error) {
	return &promotions.ActiveListing{Date: date}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *countingSalesService, config.JWTConfig) {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "salonpos", ExpirationMinutes: 30},
	}
	reg := prometheus.NewRegistry()
	metrics.NewSalesMetrics(reg).ObserveMutation("create", "success", time.Millisecond)

	svc := &countingSalesService{}
	handler := NewRouter(Params{
		Config:           cfg,
		Logger:           logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:               stubPinger{},
		Redis:            stubPinger{},
		Idempotency:      &memoryIdempotencyStore{data: map[string]string{}},
		Metrics:          reg,
		SalesService:     svc,
		PromotionService: emptyPromotionService{},
	})
	return handler, svc, cfg.JWT
}

func bearer(t *testing.T, cfg config.JWTConfig) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		ShopID: uuid.New(),
		Role:   enums.StaffRoleReceptionist,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales_mutations_total")
}

func TestRouterRequiresAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/promotions/active", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterSaleCreateIsIdempotent(t *testing.T) {
	router, svc, jwtCfg := newTestRouter(t)
	auth := bearer(t, jwtCfg)
	body := `{"customer_name":"Ana","sale_date":"2026-03-14"}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
	req.Header.Set("Authorization", auth)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "Idempotency-Key is required on sale mutations")

	for i := 0; i < 2; i++ {
		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
		req.Header.Set("Authorization", auth)
		req.Header.Set("Idempotency-Key", "k-1")
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	assert.Equal(t, 1, svc.creates)
}

func TestRouterReadRoutes(t *testing.T) {
	router, _, jwtCfg := newTestRouter(t)
	auth := bearer(t, jwtCfg)

	for _, path := range []string{"/api/v1/sales/" + uuid.NewString(), "/api/v1/promotions/active?date=2026-03-14"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
