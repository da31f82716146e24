package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/salonpos/salonpos-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	ShopID uuid.UUID
	Role   enums.StaffRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by POS clients.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	ShopID uuid.UUID       `json:"shop_id"`
	Role   enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
