// Package jwt verifies HMAC-signed session tokens locally.
package jwt

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opulent-living/property-service/internal/listing/domain"
)

// Claims expected in a session token.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifySession returns nil, nil when the token belongs to another session.
func (v *Verifier) VerifySession(_ context.Context, sessionID, token string) (*domain.Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("session token rejected: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("session token is not valid")
	}
	if claims.SessionID != sessionID {
		return nil, nil
	}
	return &domain.Session{ID: claims.SessionID, UserID: claims.Subject, Status: domain.SessionStatusActive}, nil
}

// Sign issues a session token; used by tooling and tests.
func (v *Verifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
