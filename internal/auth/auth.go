// Package auth resolves the acting identity from a bearer token. The
// pipeline treats it as an external collaborator: no identity means the
// publish aborts before any write.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pulsenews/authoring-api/internal/models"
)

// ErrNoIdentity is returned when no valid identity can be resolved
var ErrNoIdentity = errors.New("no active identity")

// Service resolves the current user for a request
type Service interface {
	CurrentUser(ctx context.Context, token string) (*models.Identity, error)
}

// Claims are the token claims this service understands
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTService verifies HMAC-signed bearer tokens
type JWTService struct {
	secret []byte
}

// NewJWTService creates a JWT verifier with the given shared secret
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// CurrentUser parses and verifies the token, returning the identity or
// ErrNoIdentity for missing/invalid/expired tokens.
func (s *JWTService) CurrentUser(ctx context.Context, token string) (*models.Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrNoIdentity
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrNoIdentity
	}
	if claims.Subject == "" {
		return nil, ErrNoIdentity
	}

	return &models.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}
