package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/salonpos/salonpos-backend/api/responses"
	pkgAuth "github.com/salonpos/salonpos-backend/pkg/auth"
	"github.com/salonpos/salonpos-backend/pkg/config"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
	"github.com/salonpos/salonpos-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxShopID, claims.ShopID.String())

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": string(claims.Role),
					"shop_id":    claims.ShopID.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

const bearerScheme = "bearer "

// bearerToken returns the credentials after a case-insensitive "Bearer " scheme, or ""
// when the scheme is missing or nothing follows it.
func bearerToken(header string) string {
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerScheme):])
}
