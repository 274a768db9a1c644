// Package auth verifies bearer credentials issued by the external identity
// provider and resolves them to a stable subject identifier. Nothing here is
// persisted; an identity lives for the duration of one verified request.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sketchmotion/sketchmotion/internal/common"
)

// Identity is the verified subject of a request.
type Identity struct {
	UID   string
	Name  string
	Email string
}

// Verifier validates an opaque bearer credential. Implementations make a
// single synchronous check; failures surface immediately, no retries.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims mirrors the identity provider's token payload. The uid claim wins;
// the registered subject is the fallback for older tokens.
type Claims struct {
	jwt.RegisteredClaims
	UID   string `json:"uid,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// JWTVerifier checks HS256 tokens against the provider-shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret []byte) (*JWTVerifier, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("identity secret missing: %w", common.ErrMisconfigured)
	}
	return &JWTVerifier{secret: secret}, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrInvalidToken)
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: token carries no subject", common.ErrUnauthenticated)
	}

	return &Identity{UID: uid, Name: claims.Name, Email: claims.Email}, nil
}

// BearerToken extracts the credential from an Authorization header value.
// A missing or malformed header fails Unauthenticated before any other
// validation runs.
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) || len(header) == len(prefix) {
		return "", fmt.Errorf("%w: missing token", common.ErrUnauthenticated)
	}
	return header[len(prefix):], nil
}
