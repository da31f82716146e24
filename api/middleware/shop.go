package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/salonpos/salonpos-backend/api/responses"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
	"github.com/salonpos/salonpos-backend/pkg/logger"
)

// ShopContext rejects requests whose token does not scope them to a shop.
func ShopContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ShopIDFromContext(r.Context())
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing"))
				return
			}
			if id, err := uuid.Parse(raw); err != nil || id == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop context invalid"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
