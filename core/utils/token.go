package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"schedulr-api/core/config"
)

// TokenClaims is the JWT payload the API trusts. Tokens are issued by the
// identity service; this API only validates them.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  *string   `json:"email,omitempty"`
	Name   *string   `json:"name,omitempty"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given user. Used by tests and by
// short-lived action links (booking approval), not by a login flow.
func GenerateToken(userID uuid.UUID, email *string, name *string, scope string, ttl ...time.Duration) (string, error) {
	cfg, ok := config.GetSafe()
	if !ok || cfg.JWT.Secret == "" {
		return "", fmt.Errorf("jwt secret not configured")
	}

	expiry := time.Duration(cfg.JWT.AccessTTLHours) * time.Hour
	if len(ttl) > 0 && ttl[0] > 0 {
		expiry = ttl[0]
	}

	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ValidateAndParseToken verifies signature and expiry and returns the claims.
func ValidateAndParseToken(tokenString string) (*TokenClaims, error) {
	cfg, ok := config.GetSafe()
	if !ok || cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
