package shopcontext

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/salonpos/salonpos-backend/api/middleware"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
)

// ResolveShopID extracts the shop the caller's token is scoped to.
func ResolveShopID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ShopIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop context required")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop context invalid")
	}
	return id, nil
}

// ResolveActorID returns the authenticated user, or nil when the request carries none.
func ResolveActorID(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
