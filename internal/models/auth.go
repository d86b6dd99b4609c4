package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the caller category carried in access tokens.
type UserRole string

const (
	RoleStaff  UserRole = "OCMS_STAFF"
	RolePlus   UserRole = "PLUS"
	RoleSystem UserRole = "SYSTEM"
	RoleAdmin  UserRole = "ADMIN"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// TokenRequest asks for a short-lived service token (non-production only).
type TokenRequest struct {
	UserID string   `json:"user_id" validate:"required"`
	Role   UserRole `json:"role" validate:"required,oneof=OCMS_STAFF PLUS SYSTEM ADMIN"`
}

// TokenResponse returns an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
