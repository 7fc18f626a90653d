// Package auth resolves the current actor from a bearer token and guards admin access.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/thatlq1812/sitetools/internal/domain"
)

// Actor is the identity attached to a request. The zero value is anonymous.
type Actor struct {
	ID            string
	Role          string
	Authenticated bool
}

// Anonymous is the actor for requests without credentials
var Anonymous = Actor{}

// IDPtr returns the actor id for storage, nil when anonymous
func (a Actor) IDPtr() *string {
	if !a.Authenticated {
		return nil
	}
	id := a.ID
	return &id
}

// Authenticator verifies HS256 access tokens issued by the user service
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// Authenticate inspects the Authorization header.
// No header yields Anonymous with a nil error; a malformed or invalid token yields ErrUnauthorized.
func (a *Authenticator) Authenticate(r *http.Request) (Actor, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Anonymous, nil
	}

	// Format: "Bearer <token>"
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return Anonymous, fmt.Errorf("invalid authorization header format: %w", domain.ErrUnauthorized)
	}

	return a.ParseToken(parts[1])
}

// ParseToken validates a signed token and extracts the actor
func (a *Authenticator) ParseToken(tokenString string) (Actor, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return Anonymous, fmt.Errorf("invalid token: %w", errors.Join(domain.ErrUnauthorized, err))
	}

	// Refresh tokens are opaque; only access tokens carry a "type" claim here
	if typ, ok := claims["type"].(string); ok && typ != "access" {
		return Anonymous, fmt.Errorf("token type %q not accepted: %w", typ, domain.ErrUnauthorized)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Anonymous, fmt.Errorf("token has no user_id: %w", domain.ErrUnauthorized)
	}
	role, _ := claims["platform_role"].(string)

	return Actor{ID: userID, Role: role, Authenticated: true}, nil
}

// IssueToken signs an access token for userID (see the issue-token command)
func (a *Authenticator) IssueToken(userID, role string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"user_id":       userID,
		"platform_role": role,
		"type":          "access",
		"exp":           now.Add(ttl).Unix(),
		"iat":           now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// AdminKey checks the X-Admin-Key header against a bcrypt hash
type AdminKey struct {
	hash []byte
}

func NewAdminKey(hash string) *AdminKey {
	return &AdminKey{hash: []byte(hash)}
}

// Enabled reports whether an admin key hash is configured
func (k *AdminKey) Enabled() bool {
	return k != nil && len(k.hash) > 0
}

// Verify compares a presented key with the configured hash
func (k *AdminKey) Verify(key string) error {
	if !k.Enabled() {
		return fmt.Errorf("admin api disabled: %w", domain.ErrUnauthorized)
	}
	if key == "" {
		return fmt.Errorf("missing admin key: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(k.hash, []byte(key)); err != nil {
		return fmt.Errorf("invalid admin key: %w", domain.ErrUnauthorized)
	}
	return nil
}

// HashAdminKey produces a bcrypt hash suitable for ADMIN_API_KEY_HASH (see the hash-admin-key command)
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
