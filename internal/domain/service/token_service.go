package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims for access tokens.
type Claims struct {
	AccountID uuid.UUID `json:"aid"`
	Type      string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access tokens for authenticated accounts.
type TokenService interface {
	// GenerateAccessToken signs a token for the account and returns its expiry.
	GenerateAccessToken(accountID uuid.UUID) (token string, expiresAt time.Time, err error)

	// ValidateToken parses a token and returns its claims when valid.
	ValidateToken(tokenString string) (*Claims, error)
}
