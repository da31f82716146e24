package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/salonpos/salonpos-backend/api/controllers"
	"github.com/salonpos/salonpos-backend/api/middleware"
	"github.com/salonpos/salonpos-backend/internal/promotions"
	"github.com/salonpos/salonpos-backend/internal/sales"
	"github.com/salonpos/salonpos-backend/pkg/config"
	"github.com/salonpos/salonpos-backend/pkg/logger"
	"github.com/salonpos/salonpos-backend/pkg/redis"
)

// Params carries everything the HTTP surface needs from cmd/api.
type Params struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               controllers.Pinger
	Redis            controllers.Pinger
	Idempotency      redis.IdempotencyStore
	Metrics          prometheus.Gatherer
	SalesService     sales.Service
	PromotionService promotions.Service
	Now              func() time.Time
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.ShopContext(logg))
		r.Use(middleware.Idempotency(p.Idempotency, logg))

		r.Post("/sales", controllers.SaleCreate(p.SalesService, logg))
		r.Get("/sales/{saleId}", controllers.SaleGet(p.SalesService, logg))
		r.Patch("/sales/{saleId}", controllers.SaleUpdate(p.SalesService, logg))
		r.Delete("/sales/{saleId}", controllers.SaleDelete(p.SalesService, logg))

		r.Get("/promotions/active", controllers.PromotionsActive(p.PromotionService, logg, p.Now))
	})

	return r
}
