package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mbazira/agrostock/internal/domain/models"
)

// Claims carries the actor descriptor inside a signed token.
type Claims struct {
	Name   string           `json:"name"`
	Role   models.StaffRole `json:"role"`
	Branch string           `json:"branch"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token embedding the actor descriptor.
func GenerateToken(secret string, ttl time.Duration, actor models.Actor) (string, error) {
	claims := &Claims{
		Name:   actor.Name,
		Role:   actor.Role,
		Branch: actor.Branch,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token and extracts the actor descriptor.
func ParseToken(secret, tokenStr string) (models.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return models.Actor{}, errors.New("malformed token claims")
	}

	return models.Actor{Name: claims.Name, Role: claims.Role, Branch: claims.Branch}, nil
}
