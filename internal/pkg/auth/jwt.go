// Package auth verifies the JSON Web Tokens issued by the identity service and carries the
// authenticated actor through the request context. Token issuance belongs to the identity
// service; GenerateToken exists for tools and tests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"swap_store/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of tokens produced by GenerateToken.
const TokenTTL = 3 * time.Hour

// ErrInvalidClaims is returned for a correctly signed token that carries no user id.
var ErrInvalidClaims = errors.New("auth: token carries no user id")

// Claims are the custom JWT claims: the user id and role, plus the standard claims.
type Claims struct {
	UserID uuid.UUID   `json:"userId"`
	Role   models.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the authenticated caller described by the claims.
func (c *Claims) Actor() models.Actor {
	role := c.Role
	if role == "" {
		role = models.RoleUser
	}
	return models.Actor{ID: c.UserID, Role: role}
}

// GenerateToken signs an HS256 token for userID with the given role.
func GenerateToken(secret []byte, userID uuid.UUID, role models.Role) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates tokenStr against secret and returns its claims.
// Only HMAC-signed tokens are accepted.
func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
