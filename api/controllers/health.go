package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/salonpos/salonpos-backend/api/responses"
	"github.com/salonpos/salonpos-backend/pkg/config"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
	"github.com/salonpos/salonpos-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SalonPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports 503 when any of them fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, redis Pinger) http.HandlerFunc {
	checks := map[string]Pinger{"database": db, "redis": redis}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SalonPOS-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		failed := false
		for name, dep := range checks {
			if dep == nil {
				status[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed = true
				status[name] = "down"
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "dependency", name), "health.dependency_down")
				}
				continue
			}
			status[name] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}
